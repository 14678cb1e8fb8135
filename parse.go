package promptmeta

import (
	"strings"

	"go.uber.org/zap"

	// Tool classifiers register themselves with the cascade.
	_ "github.com/simonhull/promptmeta/internal/a1111"
	_ "github.com/simonhull/promptmeta/internal/comfy"
	_ "github.com/simonhull/promptmeta/internal/fooocus"
	_ "github.com/simonhull/promptmeta/internal/novelai"
	_ "github.com/simonhull/promptmeta/internal/swarm"

	"github.com/simonhull/promptmeta/internal/registry"
	"github.com/simonhull/promptmeta/internal/types"
)

// unknownStep ends the detection path when no classifier matched.
const unknownStep = "unknown"

// Parse classifies the authoring tool of a set of metadata blobs and
// decodes them into a normalized result.
//
// Classifiers run in a fixed order and the first that recognizes its
// encoding wins. Blobs that match nothing yield a result whose Tool is
// ToolUnknown, with the blob text kept in Raw and RawParts for inspection.
//
// Parse never fails: malformed JSON, dangling graph links and cycles are
// all absorbed into the result.
//
// Example:
//
//	res := promptmeta.Parse(promptmeta.Blobs{
//		promptmeta.KeyParameters: "a cat\nNegative prompt: dog\nSteps: 20",
//	})
//	fmt.Println(res.Tool, res.Positive)
func Parse(blobs Blobs, opts ...Option) ParseResult {
	o := newOptions(opts)
	return dispatch(blobs, o, o.payload())
}

// ParseText parses a flat parameters string, as found in the "parameters"
// text chunk or in a .txt file saved next to an image.
func ParseText(text string, opts ...Option) ParseResult {
	return Parse(Blobs{KeyParameters: text}, opts...)
}

// payload returns the static stealth payload, or nil when none is set.
func (o *options) payload() func() (string, bool) {
	if strings.TrimSpace(o.stealthPayload) == "" {
		return nil
	}
	return func() (string, bool) { return o.stealthPayload, true }
}

// dispatch runs the classifier cascade.
func dispatch(blobs types.Blobs, o *options, stealth func() (string, bool)) ParseResult {
	if blobs == nil {
		blobs = types.Blobs{}
	}
	in := &registry.Input{
		Blobs:   blobs,
		Width:   o.width,
		Height:  o.height,
		Limits:  o.limits,
		Stealth: stealth,
		Logger:  o.logger,
	}

	var path []string
	for _, c := range registry.Classifiers() {
		path = append(path, c.Name())
		r, ok := c.Classify(in)
		if !ok {
			o.logger.Debug("classifier declined", zap.String("classifier", c.Name()))
			continue
		}
		o.logger.Debug("classifier matched",
			zap.String("classifier", c.Name()),
			zap.Stringer("tool", r.Tool))
		r.DetectionPath = strings.Join(path, " > ")
		return finish(r, blobs, o)
	}

	o.logger.Debug("no classifier matched", zap.Strings("blobs", blobs.Keys()))
	r := types.ParseResult{
		Tool:          types.ToolUnknown,
		DetectionPath: strings.Join(append(path, unknownStep), " > "),
	}
	if !blobs.Empty() {
		r.Evidence = []string{"no known encoding in " + strings.Join(blobs.Keys(), ", ")}
	}
	return finish(r, blobs, o)
}

// finish attaches the raw parts and enforces the result invariants.
func finish(r types.ParseResult, blobs types.Blobs, o *options) ParseResult {
	if r.RawParts == nil {
		r.RawParts = blobs.Parts(o.container)
	}
	return types.Finalize(r, blobs)
}
