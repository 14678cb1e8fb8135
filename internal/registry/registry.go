// Package registry manages the ordered cascade of tool classifiers.
//
// Each tool package registers a Classifier during initialization. The
// dispatcher asks every classifier in priority order whether it recognizes
// the input and commits to the first that does.
package registry

import (
	"cmp"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/simonhull/promptmeta/internal/types"
)

// Cascade priorities. Lower runs first.
const (
	PrioritySwarm          = 10
	PriorityNovelAILegacy  = 20
	PriorityFooocus        = 30
	PriorityComfyAPI       = 40
	PriorityA1111          = 50
	PriorityComfyWorkflow  = 55
	PriorityNovelAIStealth = 60
)

// Input is everything a classifier may inspect for one image.
type Input struct {
	// Blobs holds the named text pulled out of the image container.
	Blobs types.Blobs

	// Width and Height are the image dimensions, 0 when unknown.
	Width  int
	Height int

	// Limits bounds recursive graph heuristics.
	Limits types.Limits

	// Stealth returns a payload recovered from pixel data. It is called
	// only by the stealth classifier and may be nil.
	Stealth func() (string, bool)

	// Logger receives debug traces. Never nil once prepared by the dispatcher.
	Logger *zap.Logger
}

// HasDimensions reports whether both dimensions are known.
func (in *Input) HasDimensions() bool {
	return in.Width > 0 && in.Height > 0
}

// Classifier recognizes one tool's encoding and parses it.
type Classifier interface {
	// Name identifies the classifier in detection traces.
	Name() string

	// Classify returns the parsed result and true when the input carries
	// this classifier's encoding. Malformed input is reported as no match,
	// never as an error, so the cascade can fall through.
	Classify(in *Input) (types.ParseResult, bool)
}

type entry struct {
	priority   int
	classifier Classifier
}

var (
	mu      sync.RWMutex
	entries []entry
)

// Register adds a classifier at the given priority.
// This is called by tool packages during initialization (init functions).
//
// Registering a second classifier under an existing name replaces it.
func Register(priority int, c Classifier) {
	mu.Lock()
	defer mu.Unlock()

	entries = slices.DeleteFunc(entries, func(e entry) bool {
		return e.classifier.Name() == c.Name()
	})
	entries = append(entries, entry{priority: priority, classifier: c})
	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp.Compare(a.priority, b.priority)
	})
}

// Classifiers returns the registered classifiers in cascade order.
func Classifiers() []Classifier {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]Classifier, len(entries))
	for i, e := range entries {
		out[i] = e.classifier
	}
	return out
}

// Get returns the classifier registered under name, or nil.
func Get(name string) Classifier {
	mu.RLock()
	defer mu.RUnlock()

	for _, e := range entries {
		if e.classifier.Name() == name {
			return e.classifier
		}
	}
	return nil
}
