// Package a1111 parses the flat-text parameters written by the A1111 webUI
// and the many tools that copy its format:
//
//	<positive prompt>
//	Negative prompt: <negative prompt>
//	Steps: 20, Sampler: Euler a, CFG scale: 7, Seed: 1, Size: 512x512, ...
package a1111

import (
	"strings"

	"github.com/simonhull/promptmeta/internal/parsing"
	"github.com/simonhull/promptmeta/internal/registry"
	"github.com/simonhull/promptmeta/internal/types"
)

const (
	negativeMarker = "Negative prompt:"
	settingsMarker = "Steps:"
)

func init() {
	registry.Register(registry.PriorityA1111, &classifier{})
}

// Regions locates the three sections of a parameters blob. Each field is
// the trimmed substring of the original text; absent sections are empty.
type Regions struct {
	Positive string
	Negative string
	Setting  string
}

// Split cuts raw into its positive, negative and settings regions.
//
// The negative section starts at a line beginning with "Negative prompt:"
// and the settings section at a line beginning with "Steps:". Without a
// settings marker everything outside the negative section is positive.
func Split(raw string) Regions {
	var r Regions

	stepsIdx, stepsLen := findMarker(raw, settingsMarker)
	negIdx, negLen := findMarker(raw, negativeMarker)
	if negIdx >= 0 && stepsIdx >= 0 && negIdx > stepsIdx {
		// A marker inside the settings line is not a section start.
		negIdx = -1
	}

	end := len(raw)
	if stepsIdx >= 0 {
		end = stepsIdx
		r.Setting = strings.TrimSpace(raw[stepsIdx+stepsLen-len(settingsMarker):])
	}

	if negIdx >= 0 {
		r.Positive = strings.TrimSpace(raw[:negIdx])
		r.Negative = strings.TrimSpace(raw[negIdx+negLen : end])
	} else {
		r.Positive = strings.TrimSpace(raw[:end])
	}
	return r
}

// findMarker returns the index of marker at the start of the text or the
// start of a line, and the length to skip to reach the text after it.
func findMarker(raw, marker string) (idx, skip int) {
	if strings.HasPrefix(raw, marker) {
		return 0, len(marker)
	}
	if i := strings.Index(raw, "\n"+marker); i >= 0 {
		return i, len(marker) + 1
	}
	return -1, 0
}

// Parse parses a parameters blob.
func Parse(raw string) types.ParseResult {
	if strings.TrimSpace(raw) == "" {
		return types.ParseResult{Tool: types.ToolA1111}
	}

	regions := Split(raw)
	return types.ParseResult{
		Tool:           types.ToolA1111,
		Positive:       regions.Positive,
		Negative:       regions.Negative,
		Setting:        regions.Setting,
		SettingDetail:  regions.Setting,
		SettingEntries: parsing.SplitSettings(regions.Setting),
		Raw:            strings.TrimSpace(raw),
	}
}

// classifier recognizes a flat parameters blob, from a PNG "parameters"
// chunk or an EXIF UserComment.
type classifier struct{}

func (c *classifier) Name() string { return "a1111" }

func (c *classifier) Classify(in *registry.Input) (types.ParseResult, bool) {
	key, raw, ok := in.Blobs.First(types.KeyParameters, types.KeyUserComment)
	if !ok {
		return types.ParseResult{}, false
	}

	r := Parse(raw)
	r.Evidence = append(r.Evidence, "flat text parameters in "+key)
	if in.Blobs.Has(types.KeyPrompt) {
		r.Tool = types.ToolComfyUIA1111
		r.Evidence = append(r.Evidence, "graph blob "+types.KeyPrompt+" present alongside parameters")
	}
	return r, true
}
