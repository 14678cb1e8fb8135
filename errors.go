package promptmeta

import (
	"github.com/simonhull/promptmeta/internal/types"
)

// UnsupportedFormatError is an alias to types.UnsupportedFormatError.
// Re-exporting from internal/types to maintain public API.
type UnsupportedFormatError = types.UnsupportedFormatError

// CorruptedFileError is an alias to types.CorruptedFileError.
// Re-exporting from internal/types to maintain public API.
type CorruptedFileError = types.CorruptedFileError

// Warning is an alias to types.Warning.
// Re-exporting from internal/types to maintain public API.
type Warning = types.Warning

// Stages reported in Warning.Stage.
const (
	StageChunks   = types.StageChunks
	StageSegments = types.StageSegments
	StageHeader   = types.StageHeader
	StageText     = types.StageText
	StageEXIF     = types.StageEXIF
	StageStealth  = types.StageStealth
)
