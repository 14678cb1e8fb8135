package types

// Extraction is what a container reader recovers from one image file:
// the named text blobs, the pixel dimensions and any non-fatal problems
// met along the way.
type Extraction struct {
	Blobs    Blobs
	Warnings []Warning
	Width    int
	Height   int
}

// NewExtraction returns an Extraction with an empty blob map.
func NewExtraction() *Extraction {
	return &Extraction{Blobs: Blobs{}}
}

// Warn records a non-fatal problem.
func (e *Extraction) Warn(stage, message string, offset int64) {
	e.Warnings = append(e.Warnings, Warning{Stage: stage, Message: message, Offset: offset})
}

// SetBlob stores a blob unless a non-blank one is already stored under key.
func (e *Extraction) SetBlob(key, value string) {
	if _, _, ok := e.Blobs.First(key); ok {
		return
	}
	e.Blobs[key] = value
}
