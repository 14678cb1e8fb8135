package comfy

import (
	"encoding/json"

	"github.com/simonhull/promptmeta/internal/ordered"
)

// APIGraph adapts the API encoding:
//
//	{"3": {"class_type": "KSampler", "inputs": {"seed": 1, "model": ["4", 0]}}}
//
// A two-element array whose second element is a number is a link to the
// output of the node named by the first element.
type APIGraph struct {
	ids   []string
	nodes map[string]*ordered.Object
}

func newAPIGraph(obj *ordered.Object) *APIGraph {
	g := &APIGraph{nodes: make(map[string]*ordered.Object)}
	for _, id := range obj.Keys() {
		node, ok := obj.Object(id)
		if !ok || !node.Has("class_type") {
			continue
		}
		g.ids = append(g.ids, id)
		g.nodes[id] = node
	}
	return g
}

func (g *APIGraph) Encoding() Encoding { return EncodingAPI }

func (g *APIGraph) NodeIDs() []string {
	return append([]string(nil), g.ids...)
}

func (g *APIGraph) Type(id string) (string, bool) {
	node, ok := g.nodes[id]
	if !ok {
		return "", false
	}
	typ, _ := node.String("class_type")
	return typ, true
}

func (g *APIGraph) Inputs(id string) []Input {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}
	inputs, ok := node.Object("inputs")
	if !ok {
		return nil
	}

	out := make([]Input, 0, inputs.Len())
	for _, name := range inputs.Keys() {
		v, _ := inputs.Get(name)
		if link, ok := apiLink(v); ok {
			out = append(out, Input{Name: name, Link: link})
			continue
		}
		out = append(out, Input{Name: name, Value: v})
	}
	return out
}

// apiLink recognizes a ["<node id>", <output index>] reference.
func apiLink(v any) (string, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		return "", false
	}
	if _, ok := arr[1].(json.Number); !ok {
		return "", false
	}
	return nodeID(arr[0])
}
