package promptmeta

import "github.com/simonhull/promptmeta/internal/types"

// ParseResult is an alias to types.ParseResult.
// Re-exporting from internal/types to maintain public API.
type ParseResult = types.ParseResult

// SettingEntry is an alias to types.SettingEntry.
type SettingEntry = types.SettingEntry

// RawPart is an alias to types.RawPart.
type RawPart = types.RawPart

// Tool is an alias to types.Tool.
type Tool = types.Tool

// Re-export all tool names.
const (
	ToolUnknown       = types.ToolUnknown
	ToolA1111         = types.ToolA1111
	ToolComfyUI       = types.ToolComfyUI
	ToolComfyUIA1111  = types.ToolComfyUIA1111
	ToolStableSwarmUI = types.ToolStableSwarmUI
	ToolNovelAI       = types.ToolNovelAI
	ToolFooocus       = types.ToolFooocus
)

// Blobs is an alias to types.Blobs.
type Blobs = types.Blobs

// Well-known blob names.
const (
	KeyParameters       = types.KeyParameters
	KeyPrompt           = types.KeyPrompt
	KeyWorkflow         = types.KeyWorkflow
	KeyComment          = types.KeyComment
	KeySoftware         = types.KeySoftware
	KeyDescription      = types.KeyDescription
	KeyUserComment      = types.KeyUserComment
	KeyImageDescription = types.KeyImageDescription
)

// Limits is an alias to types.Limits.
type Limits = types.Limits

// DefaultLimits returns the recursion caps used when none are configured.
func DefaultLimits() Limits {
	return types.DefaultLimits()
}

// BuildCombinedRaw joins titled raw parts into one sectioned string. With
// no parts raw is returned unchanged.
func BuildCombinedRaw(raw string, parts []RawPart) string {
	return types.BuildCombinedRaw(raw, parts)
}

// MergeEntries appends the entries of secondary whose key is not already
// present in primary.
func MergeEntries(primary, secondary []SettingEntry) []SettingEntry {
	return types.MergeEntries(primary, secondary)
}
