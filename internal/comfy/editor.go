package comfy

import (
	"strconv"

	"github.com/simonhull/promptmeta/internal/ordered"
)

// EditorGraph adapts the editor encoding:
//
//	{"nodes": [{"id": 3, "type": "KSampler",
//	            "inputs": [{"name": "model", "link": 1}],
//	            "widgets_values": [42, "randomize", 20, 7, "euler", "normal", 1]}],
//	 "links": [[1, 4, 0, 3, 0, "MODEL"]]}
//
// Links live in a separate table of (id, origin node, origin slot, target
// node, target slot, type) and literal values are positional. Positional
// values are named from the widget tables; unknown node types expose them
// as "widget_<i>".
type EditorGraph struct {
	ids     []string
	nodes   map[string]*ordered.Object
	sources map[string]string // link id → origin node id
}

func newEditorGraph(doc *ordered.Object) *EditorGraph {
	g := &EditorGraph{
		nodes:   make(map[string]*ordered.Object),
		sources: make(map[string]string),
	}

	nodes, _ := doc.Array("nodes")
	for _, v := range nodes {
		node, ok := v.(*ordered.Object)
		if !ok || node == nil {
			continue
		}
		raw, _ := node.Get("id")
		id, ok := nodeID(raw)
		if !ok {
			continue
		}
		if _, dup := g.nodes[id]; dup {
			continue
		}
		g.ids = append(g.ids, id)
		g.nodes[id] = node
	}

	links, _ := doc.Array("links")
	for _, v := range links {
		if linkID, origin, ok := editorLink(v); ok {
			g.sources[linkID] = origin
		}
	}
	return g
}

// editorLink reads one links-table row in either its array form or the
// object form used by newer workflow schemas.
func editorLink(v any) (linkID, origin string, ok bool) {
	switch t := v.(type) {
	case []any:
		if len(t) < 2 {
			return "", "", false
		}
		linkID, ok1 := nodeID(t[0])
		origin, ok2 := nodeID(t[1])
		return linkID, origin, ok1 && ok2
	case *ordered.Object:
		rawID, _ := t.Get("id")
		rawOrigin, _ := t.Get("origin_id")
		linkID, ok1 := nodeID(rawID)
		origin, ok2 := nodeID(rawOrigin)
		return linkID, origin, ok1 && ok2
	}
	return "", "", false
}

func (g *EditorGraph) Encoding() Encoding { return EncodingEditor }

func (g *EditorGraph) NodeIDs() []string {
	return append([]string(nil), g.ids...)
}

func (g *EditorGraph) Type(id string) (string, bool) {
	node, ok := g.nodes[id]
	if !ok {
		return "", false
	}
	typ, _ := node.String("type")
	return typ, true
}

// Inputs returns the connected inputs followed by the named widget values.
// Unconnected input slots and links missing from the links table are
// omitted.
func (g *EditorGraph) Inputs(id string) []Input {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}

	var out []Input
	slots, _ := node.Array("inputs")
	for _, v := range slots {
		slot, ok := v.(*ordered.Object)
		if !ok || slot == nil {
			continue
		}
		name, _ := slot.String("name")
		rawLink, _ := slot.Get("link")
		linkID, ok := nodeID(rawLink)
		if name == "" || !ok {
			continue
		}
		if origin, ok := g.sources[linkID]; ok {
			out = append(out, Input{Name: name, Link: origin})
		}
	}

	typ, _ := g.Type(id)
	return append(out, widgetInputs(typ, node)...)
}

// Widgets returns the node's raw positional widget values.
func (g *EditorGraph) Widgets(id string) []any {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}
	values, _ := node.Array("widgets_values")
	return values
}

func widgetInputs(typ string, node *ordered.Object) []Input {
	// Some custom nodes serialize their widgets as an object keyed by name.
	if named, ok := node.Object("widgets_values"); ok {
		out := make([]Input, 0, named.Len())
		for _, name := range named.Keys() {
			v, _ := named.Get(name)
			out = append(out, Input{Name: name, Value: v})
		}
		return out
	}

	values, ok := node.Array("widgets_values")
	if !ok {
		return nil
	}
	names := widgetNames[typ]
	out := make([]Input, 0, len(values))
	for i, v := range values {
		name := "widget_" + strconv.Itoa(i)
		if i < len(names) {
			name = names[i]
		}
		out = append(out, Input{Name: name, Value: v})
	}
	return out
}
