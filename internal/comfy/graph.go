// Package comfy resolves ComfyUI node graphs into prompts and generation
// settings.
//
// ComfyUI stores the same pipeline in two shapes: the API encoding written
// to the "prompt" chunk and the editor encoding written to the "workflow"
// chunk. Both are exposed through the Graph interface so that a single
// traversal serves both.
package comfy

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/simonhull/promptmeta/internal/ordered"
	"github.com/simonhull/promptmeta/internal/parsing"
)

// Encoding identifies the serialized shape a Graph was decoded from.
type Encoding int

const (
	// EncodingAPI is the id → {class_type, inputs} map of the "prompt" chunk.
	EncodingAPI Encoding = iota
	// EncodingEditor is the nodes + links document of the "workflow" chunk.
	EncodingEditor
)

// String returns a short name for the encoding.
func (e Encoding) String() string {
	switch e {
	case EncodingAPI:
		return "api"
	case EncodingEditor:
		return "editor"
	default:
		return "unknown"
	}
}

// Input is one named input of a node. Exactly one of Value and Link is
// meaningful: Link holds the upstream node id when the input is connected,
// and Value holds the literal otherwise.
type Input struct {
	Name  string
	Value any
	Link  string
}

// Linked reports whether the input is fed by another node.
func (in Input) Linked() bool {
	return in.Link != ""
}

// Text returns the literal value when it is a non-blank string.
func (in Input) Text() (string, bool) {
	if in.Linked() {
		return "", false
	}
	s, ok := in.Value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// Scalar returns the literal value rendered as display text.
func (in Input) Scalar() (string, bool) {
	if in.Linked() {
		return "", false
	}
	return parsing.Scalar(in.Value)
}

// Graph is a read-only view of a node graph.
//
// Node storage is keyed by id, never by reference, so cyclic graphs are
// representable and traversals guard against revisits explicitly.
type Graph interface {
	// Encoding reports which serialized shape backs the graph.
	Encoding() Encoding

	// NodeIDs returns every node id in document order.
	NodeIDs() []string

	// Type returns the node's type tag. ok is false for unknown ids.
	Type(id string) (typ string, ok bool)

	// Inputs returns the node's inputs in declaration order.
	Inputs(id string) []Input
}

// ErrNotGraph is returned by Decode when the JSON is neither encoding.
var ErrNotGraph = errors.New("comfy: JSON is not a node graph")

// Decode parses text as either graph encoding. Anything before the first
// '{' or '[' is ignored.
func Decode(text string) (Graph, error) {
	v, err := ordered.DecodeString(parsing.TrimJSONPrefix(text))
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*ordered.Object)
	if !ok || obj == nil {
		return nil, ErrNotGraph
	}
	if isEditorDocument(obj) {
		return newEditorGraph(obj), nil
	}
	return newAPIGraph(obj), nil
}

func isEditorDocument(obj *ordered.Object) bool {
	_, ok := obj.Array("nodes")
	return ok
}

// lookup returns the first input of id named name.
func lookup(g Graph, id, name string) (Input, bool) {
	for _, in := range g.Inputs(id) {
		if in.Name == name {
			return in, true
		}
	}
	return Input{}, false
}

// firstLinked returns the first connected input of id.
func firstLinked(g Graph, id string) (Input, bool) {
	for _, in := range g.Inputs(id) {
		if in.Linked() {
			return in, true
		}
	}
	return Input{}, false
}

// nodeID renders a decoded JSON id (string or number) as a node id.
func nodeID(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		t = strings.TrimSpace(t)
		return t, t != ""
	case json.Number:
		return t.String(), true
	}
	return "", false
}
