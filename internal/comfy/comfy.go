package comfy

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/simonhull/promptmeta/internal/ordered"
	"github.com/simonhull/promptmeta/internal/parsing"
	"github.com/simonhull/promptmeta/internal/registry"
	"github.com/simonhull/promptmeta/internal/types"
)

func init() {
	registry.Register(registry.PriorityComfyAPI, &promptClassifier{})
	registry.Register(registry.PriorityComfyWorkflow, &workflowClassifier{})
}

// Options configures a parse.
type Options struct {
	Limits types.Limits

	// Width and Height are the image dimensions, 0 when unknown. They take
	// precedence over the latent size found in the graph.
	Width  int
	Height int

	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) size() (string, bool) {
	if o.Width > 0 && o.Height > 0 {
		return parsing.FormatSize(o.Width, o.Height), true
	}
	return "", false
}

// ParsePrompt parses an API-encoded graph. When workflow holds the editor
// encoding of the same pipeline it backfills missing fields and serves as
// the last-resort source of the model name. A workflow that fails to
// decode is ignored.
func ParsePrompt(prompt, workflow string, opts Options) (types.ParseResult, error) {
	g, err := Decode(prompt)
	if err != nil {
		return types.ParseResult{}, fmt.Errorf("decode prompt graph: %w", err)
	}

	var sibling any
	var secondary *types.ParseResult
	if strings.TrimSpace(workflow) != "" {
		sibling, _ = ordered.DecodeString(parsing.TrimJSONPrefix(workflow))
		if wg, err := Decode(workflow); err == nil && wg.Encoding() == EncodingEditor {
			r := parseGraph(wg, nil, opts)
			secondary = &r
		}
	}

	r := parseGraph(g, sibling, opts)
	if secondary != nil {
		r = Merge(r, *secondary)
		r.Evidence = append(r.Evidence, "backfilled from editor workflow")
	}
	r.Raw = types.JoinNonBlank("\n", r.Positive, r.Negative, prompt, workflow)
	return r, nil
}

// ParseWorkflow parses an editor-encoded graph on its own.
func ParseWorkflow(workflow string, opts Options) (types.ParseResult, error) {
	g, err := Decode(workflow)
	if err != nil {
		return types.ParseResult{}, fmt.Errorf("decode workflow graph: %w", err)
	}
	r := parseGraph(g, nil, opts)
	r.Raw = types.JoinNonBlank("\n", r.Positive, r.Negative, workflow)
	return r, nil
}

// parseGraph resolves g into a result. Editor graphs holding an aggregator
// node are read from that node alone.
func parseGraph(g Graph, sibling any, opts Options) types.ParseResult {
	log := opts.logger()

	if eg, ok := g.(*EditorGraph); ok {
		if r, ok := Aggregate(eg); ok {
			log.Debug("aggregator node short-circuits the walk", zap.String("type", AggregatorType))
			r.Evidence = append(r.Evidence, AggregatorType+" node holds prompts and settings")
			return r
		}
	}

	res := Resolve(g, opts.Limits)
	log.Debug("graph resolved",
		zap.Stringer("encoding", g.Encoding()),
		zap.Int("roots", res.Roots),
		zap.String("root", res.Root),
		zap.String("root_type", res.RootType),
		zap.Int("visited", len(res.Visited)),
	)

	var evidence []string
	if res.Root != "" {
		evidence = append(evidence, fmt.Sprintf("%s graph: root %s (%s) reached %d of %d nodes",
			g.Encoding(), res.Root, res.RootType, len(res.Visited), len(g.NodeIDs())))
	} else {
		evidence = append(evidence, fmt.Sprintf("%s graph: no save or sampler node", g.Encoding()))
	}

	model, source, ok := ModelName(g, res, sibling)
	if ok {
		evidence = append(evidence, "model from "+string(source))
	}

	size, ok := opts.size()
	if !ok {
		size, _ = latentSize(g, res.Visited)
	}

	s := summarize(res, model, size)
	entries := s.entries()
	return types.ParseResult{
		Tool:           types.ToolComfyUI,
		Positive:       res.Positive,
		Negative:       res.Negative,
		Setting:        types.JoinSetting(entries),
		SettingDetail:  s.detail(),
		SettingEntries: entries,
		Evidence:       evidence,
	}
}

func optionsFrom(in *registry.Input) Options {
	return Options{
		Limits: in.Limits,
		Width:  in.Width,
		Height: in.Height,
		Logger: in.Logger,
	}
}

// promptClassifier handles images carrying an API graph.
type promptClassifier struct{}

func (c *promptClassifier) Name() string { return "comfyui-prompt" }

func (c *promptClassifier) Classify(in *registry.Input) (types.ParseResult, bool) {
	_, prompt, ok := in.Blobs.First(types.KeyPrompt)
	if !ok {
		return types.ParseResult{}, false
	}
	workflow, _ := in.Blobs.Get(types.KeyWorkflow)

	r, err := ParsePrompt(prompt, workflow, optionsFrom(in))
	if err != nil {
		in.Logger.Debug("prompt blob is not a graph", zap.Error(err))
		return types.ParseResult{}, false
	}
	r.Evidence = append([]string{types.KeyPrompt + " blob decodes as a node graph"}, r.Evidence...)
	return r, true
}

// workflowClassifier handles images carrying only the editor graph.
type workflowClassifier struct{}

func (c *workflowClassifier) Name() string { return "comfyui-workflow" }

func (c *workflowClassifier) Classify(in *registry.Input) (types.ParseResult, bool) {
	_, workflow, ok := in.Blobs.First(types.KeyWorkflow)
	if !ok {
		return types.ParseResult{}, false
	}

	r, err := ParseWorkflow(workflow, optionsFrom(in))
	if err != nil {
		in.Logger.Debug("workflow blob is not a graph", zap.Error(err))
		return types.ParseResult{}, false
	}
	r.Evidence = append([]string{types.KeyWorkflow + " blob decodes as a node graph"}, r.Evidence...)
	return r, true
}
