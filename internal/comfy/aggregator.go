package comfy

import (
	"strings"

	"github.com/simonhull/promptmeta/internal/ordered"
	"github.com/simonhull/promptmeta/internal/parsing"
	"github.com/simonhull/promptmeta/internal/types"
)

// AggregatorType is the node type that carries the finished positive
// prompt, negative prompt and settings string as its last three string
// widget values.
const AggregatorType = "SDPromptReader"

// Aggregate reads the first aggregator node of an editor graph. ok is false
// when the graph has none, or when its widgets hold fewer than three
// strings.
func Aggregate(g *EditorGraph) (types.ParseResult, bool) {
	for _, id := range g.NodeIDs() {
		typ, _ := g.Type(id)
		if typ != AggregatorType {
			continue
		}

		var texts []string
		for _, v := range g.Widgets(id) {
			if s, ok := v.(string); ok {
				texts = append(texts, s)
			}
		}
		if len(texts) < 3 {
			continue
		}
		texts = texts[len(texts)-3:]
		positive := strings.TrimSpace(texts[0])
		negative := strings.TrimSpace(texts[1])
		setting := strings.TrimSpace(texts[2])
		entries := parsing.SplitSettings(setting)

		detail := ordered.NewObject()
		for _, e := range entries {
			detail.Set(e.Key, e.Value)
		}
		meta := ordered.NewObject()
		meta.Set("node_id", id)
		meta.Set("type", typ)
		meta.Set("settings", setting)
		detail.Set("workflow_meta", meta)

		return types.ParseResult{
			Tool:           types.ToolComfyUI,
			Positive:       positive,
			Negative:       negative,
			Setting:        setting,
			SettingDetail:  ordered.Indent(detail),
			SettingEntries: entries,
		}, true
	}
	return types.ParseResult{}, false
}
