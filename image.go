package promptmeta

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	// Container readers register themselves per format.
	_ "github.com/simonhull/promptmeta/internal/exif"
	_ "github.com/simonhull/promptmeta/internal/png"

	"github.com/simonhull/promptmeta/internal/binary"
	"github.com/simonhull/promptmeta/internal/parsing"
	"github.com/simonhull/promptmeta/internal/registry"
	"github.com/simonhull/promptmeta/internal/types"
)

// Image represents an opened image with its parsed generation metadata.
//
// Open reads the container, extracts every named text blob, probes the
// dimensions and runs Parse, all before it returns. The file handle is not
// kept, so an Image needs no Close.
//
//	img, err := promptmeta.Open("00042.png")
//	if err != nil {
//		return err
//	}
//	fmt.Println(img.Result.Tool, img.Result.Positive)
type Image struct {
	// Path to the image file
	Path string

	// Detected container format (PNG, JPEG, WebP, TXT)
	Format Format

	// File size in bytes
	Size int64

	// Pixel dimensions, 0 when the container did not record them
	Width  int
	Height int

	// Blobs holds the named text pulled out of the container
	Blobs Blobs

	// Result is the parsed metadata
	Result ParseResult

	// Warnings encountered while reading the container (non-fatal issues)
	Warnings []Warning
}

// Open opens an image file and parses its generation metadata.
//
// Supported formats: PNG, JPEG, WebP, and plain .txt parameter files.
//
// If the container is damaged, Open returns what it could read with
// warnings instead of an error. Check Image.Warnings for details.
//
// Options can be provided to customize parsing behavior:
//
//	img, err := promptmeta.Open("00042.png",
//	    promptmeta.WithStrictParsing(),
//	    promptmeta.WithLimits(promptmeta.Limits{TextDepth: 20}),
//	)
func Open(path string, opts ...Option) (*Image, error) {
	return openFile(context.Background(), path, newOptions(opts))
}

// OpenContext opens a file with context support for cancellation.
//
// The context is checked before the file is read and again before the
// metadata is parsed.
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//
//	img, err := promptmeta.OpenContext(ctx, "00042.png")
func OpenContext(ctx context.Context, path string, opts ...Option) (*Image, error) {
	return openFile(ctx, path, newOptions(opts))
}

func openFile(ctx context.Context, path string, o *options) (*Image, error) {
	// Check context before starting
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	return openReader(ctx, f, stat.Size(), path, o)
}

// openReader reads and parses from an io.ReaderAt (internal, for testing)
func openReader(ctx context.Context, r io.ReaderAt, size int64, path string, o *options) (*Image, error) {
	format, err := types.DetectFormat(r, size, path)
	if err != nil {
		return nil, err
	}

	reader := registry.Container(format)
	if reader == nil {
		return nil, &UnsupportedFormatError{
			Path:   path,
			Reason: fmt.Sprintf("no reader available for format %s", format),
		}
	}

	ext, err := reader.Read(r, size, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", format, err)
	}

	if o.strictParsing && len(ext.Warnings) > 0 {
		return nil, fmt.Errorf("strict parsing failed: %s", ext.Warnings[0])
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := &Image{
		Path:     path,
		Format:   format,
		Size:     size,
		Width:    ext.Width,
		Height:   ext.Height,
		Blobs:    ext.Blobs,
		Warnings: ext.Warnings,
	}

	po := *o
	if po.width <= 0 || po.height <= 0 {
		po.width, po.height = img.Width, img.Height
	}
	if po.container == "" {
		po.container = format.Container()
	}

	stealth := po.payload()
	if stealth == nil && po.stealthDecoder != nil {
		stealth = func() (string, bool) {
			text, err := po.stealthDecoder(r, size)
			if err != nil {
				po.logger.Debug("stealth decode failed", zap.String("path", path), zap.Error(err))
				img.Warnings = append(img.Warnings, Warning{
					Stage:   types.StageStealth,
					Message: err.Error(),
				})
				return "", false
			}
			return text, text != ""
		}
	}

	if po.cache != nil && po.stealthDecoder == nil {
		img.Result = po.cache.parse(img.Blobs, &po)
	} else {
		img.Result = dispatch(img.Blobs, &po, stealth)
	}

	// Apply option: ignore warnings
	if o.ignoreWarnings {
		img.Warnings = nil
	}

	return img, nil
}

// OpenMany opens multiple image files concurrently.
//
// Files are read in parallel using up to runtime.NumCPU() goroutines,
// or the limit set with WithConcurrency. Results are returned in the same
// order as the input paths.
//
// If any file fails to open, no images are returned.
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//
//	images, err := promptmeta.OpenMany(ctx, paths)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, img := range images {
//		fmt.Printf("%s: %s\n", img.Path, img.Result.Tool)
//	}
func OpenMany(ctx context.Context, paths []string, opts ...Option) ([]*Image, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	o := newOptions(opts)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	results := make([]*Image, len(paths))

	for i, path := range paths {
		g.Go(func() error {
			img, err := openFile(ctx, path, o)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			results[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// maxTextFile caps the size of a parameters text file.
const maxTextFile = 16 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func init() {
	registry.RegisterContainer(types.FormatText, &textReader{})
}

// textReader implements registry.ContainerReader for .txt files saved next
// to an image, whose whole content is a flat parameters blob.
type textReader struct{}

func (t *textReader) Read(r io.ReaderAt, size int64, path string) (*types.Extraction, error) {
	if size > maxTextFile {
		return nil, &UnsupportedFormatError{
			Path:   path,
			Reason: fmt.Sprintf("text file of %d bytes exceeds %d", size, maxTextFile),
		}
	}

	ext := types.NewExtraction()
	if size == 0 {
		return ext, nil
	}

	data, err := binary.NewSafeReader(r, size, path).ReadBytes(0, int(size), "text file")
	if err != nil {
		return nil, err
	}
	ext.SetBlob(types.KeyParameters, parsing.DecodeLatin1(bytes.TrimPrefix(data, utf8BOM)))
	return ext, nil
}
