package comfy

import (
	"strings"

	"github.com/simonhull/promptmeta/internal/ordered"
	"github.com/simonhull/promptmeta/internal/parsing"
	"github.com/simonhull/promptmeta/internal/types"
)

// Resolution is the outcome of resolving one graph.
type Resolution struct {
	// Root is the id of the root whose traversal was selected, empty when
	// the graph has no roots.
	Root     string
	RootType string

	// Roots is the number of candidate roots that were traversed.
	Roots int

	// Visited lists the nodes reached from Root in visit order.
	Visited []string

	// Flow holds the literal sampler inputs and the checkpoint name found
	// along the model chain.
	Flow *ordered.Object

	Positive string
	Negative string
}

// Roots returns the ids of the nodes a traversal may start from: image
// save nodes and samplers. Editor graphs also accept any node exposing
// both a positive and a negative input.
func Roots(g Graph) []string {
	w := newWalker(g, types.Limits{})
	var roots []string
	for _, id := range g.NodeIDs() {
		typ, _ := g.Type(id)
		if saveTypes[typ] || w.isSampler(id, typ) {
			roots = append(roots, id)
		}
	}
	return roots
}

// Resolve traverses from every root and keeps the traversal that visited
// the most nodes. Ties go to the root that appears first in the document.
// A graph without roots resolves to an empty Resolution.
func Resolve(g Graph, limits types.Limits) Resolution {
	res := Resolution{Flow: ordered.NewObject()}

	var best *walker
	roots := Roots(g)
	for _, id := range roots {
		w := newWalker(g, limits)
		w.traverse(id)
		if best == nil || len(w.order) > len(best.order) {
			best = w
			res.Root = id
		}
	}
	res.Roots = len(roots)
	if best == nil {
		return res
	}

	res.RootType, _ = g.Type(res.Root)
	res.Visited = best.order
	res.Flow = best.flow
	res.Positive = strings.TrimSpace(best.positive)
	res.Negative = strings.TrimSpace(best.negative)
	return res
}

// checkpointInputs name literal inputs that hold a model.
var checkpointInputs = []string{"ckpt_name", "checkpoint_name", "checkpoint", "model_name"}

// ModelSource records which stage of ModelName produced the name.
type ModelSource string

const (
	ModelFromCheckpointNode ModelSource = "visited checkpoint loader"
	ModelFromVisitedNode    ModelSource = "visited node"
	ModelFromGraph          ModelSource = "graph scan"
	ModelFromSibling        ModelSource = "workflow filename scan"
	ModelFromChain          ModelSource = "model chain"
)

// ModelName resolves the checkpoint name. Stages are tried in order and
// the first match wins:
//
//  1. visited nodes whose type contains "checkpoint"
//  2. any visited node
//  3. every node of the graph
//  4. any checkpoint-shaped string inside sibling, a decoded editor document
//  5. the ckpt_name found along the sampler's model chain
func ModelName(g Graph, res Resolution, sibling any) (string, ModelSource, bool) {
	for _, id := range res.Visited {
		typ, _ := g.Type(id)
		if !strings.Contains(strings.ToLower(typ), "checkpoint") {
			continue
		}
		if name, ok := nodeModel(g, id); ok {
			return name, ModelFromCheckpointNode, true
		}
	}
	for _, id := range res.Visited {
		if name, ok := nodeModel(g, id); ok {
			return name, ModelFromVisitedNode, true
		}
	}
	for _, id := range g.NodeIDs() {
		if name, ok := nodeModel(g, id); ok {
			return name, ModelFromGraph, true
		}
	}
	if name, ok := findCheckpointFile(sibling); ok {
		return name, ModelFromSibling, true
	}
	if v, ok := res.Flow.Get("ckpt_name"); ok {
		if name, ok := parsing.Scalar(v); ok {
			return name, ModelFromChain, true
		}
	}
	return "", "", false
}

func nodeModel(g Graph, id string) (string, bool) {
	for _, name := range checkpointInputs {
		if in, ok := lookup(g, id, name); ok {
			if s, ok := in.Scalar(); ok {
				return s, true
			}
		}
	}
	return "", false
}

// findCheckpointFile searches v depth-first for a string shaped like a
// model weights filename.
func findCheckpointFile(v any) (string, bool) {
	switch t := v.(type) {
	case *ordered.Object:
		for _, k := range t.Keys() {
			child, _ := t.Get(k)
			if s, ok := findCheckpointFile(child); ok {
				return s, true
			}
		}
	case []any:
		for _, child := range t {
			if s, ok := findCheckpointFile(child); ok {
				return s, true
			}
		}
	case string:
		if parsing.IsCheckpointFile(t) {
			return strings.TrimSpace(t), true
		}
	}
	return "", false
}
