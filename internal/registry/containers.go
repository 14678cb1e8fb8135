package registry

import (
	"io"
	"sync"

	"github.com/simonhull/promptmeta/internal/types"
)

// ContainerReader pulls named text blobs and dimensions out of an image
// container.
type ContainerReader interface {
	// Read extracts text blobs from the file. Damage that still leaves
	// something readable is reported as warnings on the Extraction; an
	// error means nothing could be read.
	Read(r io.ReaderAt, size int64, path string) (*types.Extraction, error)
}

var (
	containerMu sync.RWMutex
	containers  = make(map[types.Format]ContainerReader)
)

// RegisterContainer registers a reader for a format.
// This is called by container packages during initialization (init functions).
func RegisterContainer(format types.Format, reader ContainerReader) {
	containerMu.Lock()
	defer containerMu.Unlock()
	containers[format] = reader
}

// Container returns the reader for a given format.
// Returns nil if no reader is registered for the format.
func Container(format types.Format) ContainerReader {
	containerMu.RLock()
	defer containerMu.RUnlock()
	return containers[format]
}
