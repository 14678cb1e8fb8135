// Package novelai recognizes NovelAI metadata in both of its forms: the
// legacy text chunks (Software, Description and a JSON Comment) and the
// "stealth" JSON document hidden in the alpha channel.
package novelai

import (
	"strings"

	"go.uber.org/zap"

	"github.com/simonhull/promptmeta/internal/ordered"
	"github.com/simonhull/promptmeta/internal/registry"
	"github.com/simonhull/promptmeta/internal/structured"
	"github.com/simonhull/promptmeta/internal/types"
)

// Software is the Software tag value NovelAI writes.
const Software = "NovelAI"

// Schema maps the NovelAI comment object to display settings.
var Schema = &structured.Schema{
	Tool:         types.ToolNovelAI,
	PositiveKeys: []string{"prompt"},
	NegativeKeys: []string{"uc"},
	Fields: []structured.Field{
		{Label: "Steps", Keys: []string{"steps"}},
		{Label: "Sampler", Keys: []string{"sampler"}},
		{Label: "CFG scale", Keys: []string{"scale"}},
		{Label: "Seed", Keys: []string{"seed"}},
		{Label: "Strength", Keys: []string{"strength"}},
		{Label: "Noise", Keys: []string{"noise"}},
	},
	WidthKeys:  []string{"width"},
	HeightKeys: []string{"height"},
}

func init() {
	registry.Register(registry.PriorityNovelAILegacy, &legacyClassifier{})
	registry.Register(registry.PriorityNovelAIStealth, &stealthClassifier{})
}

// ParseLegacy parses the legacy chunk pair. The description is the positive
// prompt; the comment prompt is used only when the description is blank.
func ParseLegacy(description, comment string) (types.ParseResult, error) {
	params, err := ordered.DecodeObject(comment)
	if err != nil {
		return types.ParseResult{}, err
	}

	r := Schema.Parse(params)
	if d := strings.TrimSpace(description); d != "" {
		r.Positive = d
	}
	r.Raw = types.JoinNonBlank("\n", description, comment)
	return r, nil
}

// ParseStealth parses a decoded stealth document. Its "Comment" member is
// either an object or a string holding JSON; the positive prompt comes from
// Comment.prompt, then from Description.
func ParseStealth(doc string) (types.ParseResult, error) {
	root, err := ordered.DecodeObject(doc)
	if err != nil {
		return types.ParseResult{}, err
	}

	params, ok := root.Object(types.KeyComment)
	if !ok {
		if s, isString := root.String(types.KeyComment); isString {
			params, err = ordered.DecodeObject(s)
			if err != nil {
				return types.ParseResult{}, err
			}
		}
	}

	r := Schema.Parse(params)
	if r.Positive == "" {
		if d, ok := root.String(types.KeyDescription); ok {
			r.Positive = strings.TrimSpace(d)
		}
	}
	r.Raw = ordered.Indent(root)
	return r, nil
}

type legacyClassifier struct{}

func (c *legacyClassifier) Name() string { return "novelai-legacy" }

func (c *legacyClassifier) Classify(in *registry.Input) (types.ParseResult, bool) {
	software, _ := in.Blobs.Get(types.KeySoftware)
	if strings.TrimSpace(software) != Software {
		return types.ParseResult{}, false
	}
	descKey, description, ok := in.Blobs.First(types.KeyDescription, types.KeyImageDescription)
	if !ok {
		return types.ParseResult{}, false
	}
	for commentKey, comment := range in.Blobs.NonBlank(types.KeyComment, types.KeyUserComment) {
		r, err := ParseLegacy(description, comment)
		if err != nil {
			in.Logger.Debug("novelai comment is not a JSON object",
				zap.String("blob", commentKey), zap.Error(err))
			continue
		}
		r.Evidence = append(r.Evidence,
			types.KeySoftware+" is "+Software,
			"companion blobs "+descKey+" and "+commentKey+" present")
		return r, true
	}
	return types.ParseResult{}, false
}

type stealthClassifier struct{}

func (c *stealthClassifier) Name() string { return "novelai-stealth" }

func (c *stealthClassifier) Classify(in *registry.Input) (types.ParseResult, bool) {
	if in.Stealth == nil {
		return types.ParseResult{}, false
	}
	doc, ok := in.Stealth()
	if !ok || strings.TrimSpace(doc) == "" {
		return types.ParseResult{}, false
	}

	r, err := ParseStealth(doc)
	if err != nil {
		in.Logger.Debug("stealth payload is not a NovelAI document", zap.Error(err))
		return types.ParseResult{}, false
	}
	r.Evidence = append(r.Evidence, "stealth payload decoded from pixel data")
	return r, true
}
