// Package swarm recognizes StableSwarmUI metadata: a JSON document whose
// "sui_image_params" object holds the generation parameters.
package swarm

import (
	"strings"

	"go.uber.org/zap"

	"github.com/simonhull/promptmeta/internal/ordered"
	"github.com/simonhull/promptmeta/internal/registry"
	"github.com/simonhull/promptmeta/internal/structured"
	"github.com/simonhull/promptmeta/internal/types"
)

// Marker is the key that identifies a StableSwarmUI document.
const Marker = "sui_image_params"

// Schema maps StableSwarmUI parameter names to display settings.
var Schema = &structured.Schema{
	Tool:         types.ToolStableSwarmUI,
	PositiveKeys: []string{"prompt"},
	NegativeKeys: []string{"negativeprompt"},
	Fields: []structured.Field{
		{Label: "Model", Keys: []string{"model", "model_name", "checkpoint", "ckpt_name", "modelname"}},
		{Label: "Steps", Keys: []string{"steps", "stepcount"}},
		{Label: "Sampler", Keys: []string{"sampler", "sampler_name", "samplername"}},
		{Label: "CFG scale", Keys: []string{"cfgscale", "cfg", "cfg_scale"}},
		{Label: "Seed", Keys: []string{"seed", "noise_seed"}},
	},
	WidthKeys:  []string{"width", "W"},
	HeightKeys: []string{"height", "H"},
}

func init() {
	registry.Register(registry.PrioritySwarm, &classifier{})
}

// Parse parses a StableSwarmUI document. A document without a parameters
// object parses as empty parameters.
func Parse(doc string) (types.ParseResult, error) {
	root, err := ordered.DecodeObject(doc)
	if err != nil {
		return types.ParseResult{}, err
	}
	params, _ := root.Object(Marker)
	return Schema.Parse(params), nil
}

type classifier struct{}

func (c *classifier) Name() string { return "swarm" }

func (c *classifier) Classify(in *registry.Input) (types.ParseResult, bool) {
	for key, doc := range in.Blobs.NonBlank(types.KeyParameters, types.KeyUserComment) {
		if !strings.Contains(doc, Marker) {
			continue
		}
		r, err := Parse(doc)
		if err != nil {
			in.Logger.Debug("swarm marker present but document is not JSON",
				zap.String("blob", key), zap.Error(err))
			continue
		}
		r.Evidence = append(r.Evidence, key+" contains "+Marker)
		return r, true
	}
	return types.ParseResult{}, false
}
