// Package fooocus recognizes Fooocus metadata, a JSON object stored in the
// PNG "Comment" chunk or the EXIF UserComment.
package fooocus

import (
	"strings"

	"github.com/simonhull/promptmeta/internal/ordered"
	"github.com/simonhull/promptmeta/internal/registry"
	"github.com/simonhull/promptmeta/internal/structured"
	"github.com/simonhull/promptmeta/internal/types"
)

// Schema maps Fooocus parameter names to display settings.
var Schema = &structured.Schema{
	Tool:         types.ToolFooocus,
	PositiveKeys: []string{"prompt"},
	NegativeKeys: []string{"negative_prompt"},
	Fields: []structured.Field{
		{Label: "Model", Keys: []string{"base_model", "base_model_name"}},
		{Label: "Steps", Keys: []string{"steps"}},
		{Label: "Sampler", Keys: []string{"sampler"}},
		{Label: "CFG scale", Keys: []string{"guidance_scale"}},
		{Label: "Seed", Keys: []string{"seed"}},
		{Label: "Scheduler", Keys: []string{"scheduler"}},
		{Label: "Performance", Keys: []string{"performance"}},
	},
	WidthKeys:      []string{"width"},
	HeightKeys:     []string{"height"},
	ResolutionKeys: []string{"resolution"},
}

func init() {
	registry.Register(registry.PriorityFooocus, &classifier{})
}

// Match reports whether comment is a Fooocus parameters object: JSON with a
// "negative_prompt" key and at least one of "prompt", "styles" or
// "performance". Other tools also write JSON comments, so the key check is
// required.
func Match(comment string) (*ordered.Object, bool) {
	trimmed := strings.TrimSpace(comment)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	obj, err := ordered.DecodeObject(trimmed)
	if err != nil {
		return nil, false
	}
	if !obj.Has("negative_prompt") {
		return nil, false
	}
	if !obj.Has("prompt") && !obj.Has("styles") && !obj.Has("performance") {
		return nil, false
	}
	return obj, true
}

// Parse parses a Fooocus parameters object.
func Parse(params *ordered.Object) types.ParseResult {
	return Schema.Parse(params)
}

type classifier struct{}

func (c *classifier) Name() string { return "fooocus" }

func (c *classifier) Classify(in *registry.Input) (types.ParseResult, bool) {
	// A JPEG COM note and an EXIF UserComment can sit side by side, so a
	// miss on one alias moves on to the next.
	for key, comment := range in.Blobs.NonBlank(types.KeyComment, types.KeyUserComment) {
		params, ok := Match(comment)
		if !ok {
			continue
		}
		r := Parse(params)
		r.Evidence = append(r.Evidence, key+" is JSON with negative_prompt")
		return r, true
	}
	return types.ParseResult{}, false
}
