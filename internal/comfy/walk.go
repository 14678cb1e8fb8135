package comfy

import (
	"slices"
	"strings"

	"github.com/simonhull/promptmeta/internal/ordered"
	"github.com/simonhull/promptmeta/internal/parsing"
	"github.com/simonhull/promptmeta/internal/types"
)

// Node type families. Membership is exact.
var (
	saveTypes = map[string]bool{
		"SaveImage":     true,
		"Image Save":    true,
		"SDPromptSaver": true,
	}
	samplerTypes = map[string]bool{
		"KSampler":             true,
		"KSamplerAdvanced":     true,
		"KSampler (Efficient)": true,
	}
	textEncoderTypes = map[string]bool{
		"CLIPTextEncode":            true,
		"CLIPTextEncodeSDXL":        true,
		"CLIPTextEncodeSDXLRefiner": true,
	}
)

// textFields are the input names of a text encoder joined into its prompt.
var textFields = []string{"text", "text_g", "text_l"}

// textCandidates are input names likely to hold literal prompt text on
// nodes of unknown type.
var textCandidates = []string{"text", "text_g", "text_l", "positive", "prompt", "string"}

// modelChainInputs are followed, in order, from a sampler towards its loader.
var modelChainInputs = []string{"model", "checkpoint", "base_model"}

// walker holds the state of one traversal from one root. It is never
// shared between traversals.
type walker struct {
	g      Graph
	limits types.Limits

	visited map[string]bool
	order   []string
	flow    *ordered.Object

	// resolving holds the nodes on the current text-resolution path.
	resolving map[string]bool

	positive string
	negative string
}

func newWalker(g Graph, limits types.Limits) *walker {
	return &walker{
		g:         g,
		limits:    limits.OrDefault(),
		visited:   make(map[string]bool),
		flow:      ordered.NewObject(),
		resolving: make(map[string]bool),
	}
}

// positional reports whether literal values are positional, in which case
// node inputs carry little naming and looser heuristics apply.
func (w *walker) positional() bool {
	return w.g.Encoding() == EncodingEditor
}

// isSampler reports whether id is treated as a sampler. Editor graphs also
// accept any node exposing both a positive and a negative input.
func (w *walker) isSampler(id, typ string) bool {
	if samplerTypes[typ] {
		return true
	}
	if !w.positional() {
		return false
	}
	_, pos := lookup(w.g, id, "positive")
	_, neg := lookup(w.g, id, "negative")
	return pos && neg
}

// traverse visits id and everything it depends on. Membership in the
// visited set is checked before any recursion, so each node is visited at
// most once and cycles terminate. Unknown ids are dead ends.
func (w *walker) traverse(id string) {
	if w.visited[id] {
		return
	}
	typ, ok := w.g.Type(id)
	if !ok {
		return
	}
	w.visited[id] = true
	w.order = append(w.order, id)

	if in, ok := lookup(w.g, id, "ckpt_name"); ok {
		if s, ok := in.Text(); ok {
			w.flow.Set("ckpt_name", strings.TrimSpace(s))
		}
	}

	switch {
	case saveTypes[typ]:
		if in, ok := lookup(w.g, id, "images"); ok && in.Linked() {
			w.traverse(in.Link)
		}

	case w.isSampler(id, typ):
		w.traverseSampler(id)

	default:
		if in, ok := firstLinked(w.g, id); ok {
			w.traverse(in.Link)
		}
	}
}

func (w *walker) traverseSampler(id string) {
	for _, in := range w.g.Inputs(id) {
		switch in.Name {
		case "positive", "negative":
			if !in.Linked() {
				continue
			}
			text, ok := w.resolveText(in.Link, 0)
			if !ok {
				continue
			}
			if in.Name == "positive" {
				w.positive = text
			} else {
				w.negative = text
			}
		default:
			if in.Linked() {
				w.traverse(in.Link)
			} else if in.Value != nil {
				w.flow.Set(in.Name, in.Value)
			}
		}
	}

	if in, ok := lookup(w.g, id, "model"); ok && in.Linked() {
		if ckpt, ok := w.modelChain(in.Link, 0); ok {
			w.flow.Set("ckpt_name", ckpt)
		}
	}
}

// resolveText finds the prompt text feeding a conditioning input. It
// follows links without consulting the visited set, so recursion is capped
// at Limits.TextDepth hops. A node already on the current path is a dead
// end.
func (w *walker) resolveText(id string, depth int) (string, bool) {
	if depth > w.limits.TextDepth || w.resolving[id] {
		return "", false
	}
	w.resolving[id] = true
	defer delete(w.resolving, id)

	w.traverse(id)

	typ, ok := w.g.Type(id)
	if !ok {
		return "", false
	}

	if textEncoderTypes[typ] {
		var parts []string
		for _, name := range textFields {
			in, ok := lookup(w.g, id, name)
			if !ok {
				continue
			}
			var text string
			if in.Linked() {
				text, _ = w.resolveText(in.Link, depth+1)
			} else {
				text, _ = in.Text()
			}
			text = strings.TrimSpace(text)
			if text != "" && !slices.Contains(parts, text) {
				parts = append(parts, text)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "\n"), true
		}
		return "", false
	}

	for _, name := range textCandidates {
		if in, ok := lookup(w.g, id, name); ok {
			if s, ok := in.Text(); ok {
				return s, true
			}
		}
	}

	if w.positional() {
		if s, ok := longestText(w.g.Inputs(id)); ok {
			return s, true
		}
	}

	for _, in := range w.g.Inputs(id) {
		if !in.Linked() {
			continue
		}
		if s, ok := w.resolveText(in.Link, depth+1); ok {
			return s, true
		}
	}
	return "", false
}

// longestText returns the longest non-blank literal string, ignoring
// model filenames.
func longestText(inputs []Input) (string, bool) {
	var best string
	for _, in := range inputs {
		s, ok := in.Text()
		if !ok || parsing.IsCheckpointFile(s) {
			continue
		}
		if len(strings.TrimSpace(s)) > len(strings.TrimSpace(best)) {
			best = s
		}
	}
	return best, best != ""
}

// modelChain follows model links upstream to a loader's ckpt_name, capped
// at Limits.ChainDepth hops.
func (w *walker) modelChain(id string, depth int) (string, bool) {
	if depth > w.limits.ChainDepth {
		return "", false
	}
	if _, ok := w.g.Type(id); !ok {
		return "", false
	}
	if in, ok := lookup(w.g, id, "ckpt_name"); ok {
		if s, ok := in.Text(); ok {
			return strings.TrimSpace(s), true
		}
	}
	for _, name := range modelChainInputs {
		if in, ok := lookup(w.g, id, name); ok && in.Linked() {
			return w.modelChain(in.Link, depth+1)
		}
	}
	return "", false
}
