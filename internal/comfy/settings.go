package comfy

import (
	"strings"

	"github.com/simonhull/promptmeta/internal/ordered"
	"github.com/simonhull/promptmeta/internal/parsing"
	"github.com/simonhull/promptmeta/internal/types"
)

// summaryFields map flow keys to display keys. Each field lists its flow
// keys in order of preference.
var summaryFields = []struct {
	label string
	keys  []string
	entry bool // also listed in the settings entries
}{
	{"Steps", []string{"steps"}, true},
	{"Sampler", []string{"sampler_name"}, true},
	{"Scheduler", []string{"scheduler"}, false},
	{"CFG scale", []string{"cfg"}, true},
	{"Seed", []string{"seed", "noise_seed"}, true},
	{"Denoise", []string{"denoise"}, false},
}

// summarized are the flow keys already shown at the top level of the
// detail object.
var summarized = map[string]bool{
	"steps": true, "sampler_name": true, "scheduler": true, "cfg": true,
	"seed": true, "noise_seed": true, "denoise": true, "ckpt_name": true,
	"positive": true, "negative": true,
}

// summary is the display form of a resolution.
type summary struct {
	model  string
	size   string
	fields []types.SettingEntry // in summaryFields order
	flow   *ordered.Object
}

func summarize(res Resolution, model, size string) summary {
	s := summary{model: model, size: size, flow: ordered.NewObject()}
	for _, f := range summaryFields {
		for _, k := range f.keys {
			v, ok := res.Flow.Get(k)
			if !ok {
				continue
			}
			if text, ok := parsing.Scalar(v); ok {
				s.fields = append(s.fields, types.SettingEntry{Key: f.label, Value: text})
				break
			}
		}
	}
	for _, k := range res.Flow.Keys() {
		if summarized[k] {
			continue
		}
		if v, ok := res.Flow.Get(k); ok && v != nil {
			s.flow.Set(k, v)
		}
	}
	return s
}

// entries returns Model, Steps, Sampler, CFG scale, Seed and Size, each
// only when known.
func (s summary) entries() []types.SettingEntry {
	var out []types.SettingEntry
	if s.model != "" {
		out = append(out, types.SettingEntry{Key: "Model", Value: s.model})
	}
	for _, e := range s.fields {
		if isEntryField(e.Key) {
			out = append(out, e)
		}
	}
	if s.size != "" {
		out = append(out, types.SettingEntry{Key: "Size", Value: s.size})
	}
	return out
}

func isEntryField(label string) bool {
	for _, f := range summaryFields {
		if f.label == label {
			return f.entry
		}
	}
	return false
}

// detail renders the summary as an indented JSON object with the
// remaining flow values nested under "flow".
func (s summary) detail() string {
	obj := ordered.NewObject()
	if s.model != "" {
		obj.Set("Model", s.model)
	}
	for _, e := range s.fields {
		obj.Set(e.Key, e.Value)
	}
	if s.size != "" {
		obj.Set("Size", s.size)
	}
	if s.flow.Len() > 0 {
		obj.Set("flow", s.flow)
	}
	return ordered.Indent(obj)
}

// latentSize looks for the width and height of an empty latent image among
// the visited nodes.
func latentSize(g Graph, visited []string) (string, bool) {
	for _, id := range visited {
		typ, _ := g.Type(id)
		if !strings.Contains(strings.ToLower(typ), "latent") {
			continue
		}
		wIn, wok := lookup(g, id, "width")
		hIn, hok := lookup(g, id, "height")
		if !wok || !hok || wIn.Linked() || hIn.Linked() {
			continue
		}
		w, wok := parsing.Int(wIn.Value)
		h, hok := parsing.Int(hIn.Value)
		if wok && hok {
			return parsing.FormatSize(w, h), true
		}
	}
	return "", false
}
