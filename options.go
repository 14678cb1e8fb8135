package promptmeta

import (
	"io"
	"runtime"

	"go.uber.org/zap"
)

// Option configures parsing and opening.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	img, err := promptmeta.Open("00042.png",
//	    promptmeta.WithLogger(logger),
//	    promptmeta.WithStrictParsing(),
//	)
type Option func(*options)

// StealthDecoder recovers text hidden in the pixel data of an image, such
// as the payload NovelAI writes into alpha channel low bits. It is called
// at most once per image, and only when no in-band metadata matched.
//
// The decoder returns an empty string when the image carries no payload.
type StealthDecoder func(r io.ReaderAt, size int64) (string, error)

// options holds configuration for one parse.
type options struct {
	logger         *zap.Logger
	width          int
	height         int
	stealthPayload string
	stealthDecoder StealthDecoder
	container      string
	limits         Limits
	concurrency    int
	cache          *Cache
	strictParsing  bool // Fail on any container warning
	ignoreWarnings bool // Suppress all warnings
}

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		logger:      zap.NewNop(),
		limits:      DefaultLimits(),
		concurrency: runtime.NumCPU(),
	}
}

func newOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	o.limits = o.limits.OrDefault()
	if o.concurrency <= 0 {
		o.concurrency = runtime.NumCPU()
	}
	return o
}

// WithLogger routes debug traces of the classifier cascade and the graph
// resolver to logger. Nothing is logged above Debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDimensions supplies the image size when the blobs were extracted by
// the caller. Known dimensions take precedence over sizes recorded in the
// metadata itself.
func WithDimensions(width, height int) Option {
	return func(o *options) {
		o.width = width
		o.height = height
	}
}

// WithStealthPayload supplies text already recovered from pixel data. It is
// consulted only when no in-band metadata matched.
func WithStealthPayload(payload string) Option {
	return func(o *options) {
		o.stealthPayload = payload
	}
}

// WithStealthDecoder installs a decoder that Open runs against the image
// file when no in-band metadata matched. Parse ignores it since it has no
// image to decode.
func WithStealthDecoder(decoder StealthDecoder) Option {
	return func(o *options) {
		o.stealthDecoder = decoder
	}
}

// WithContainer sets the label used to title raw parts, such as
// "PNG tEXt" or "EXIF". Open sets it from the detected format.
//
// Default is "metadata".
func WithContainer(label string) Option {
	return func(o *options) {
		o.container = label
	}
}

// WithLimits bounds the recursion of the node-graph heuristics. Zero fields
// keep their defaults.
func WithLimits(limits Limits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithConcurrency caps the number of files OpenMany reads at once.
//
// Default is runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithCache makes Open and OpenMany look results up in cache before
// parsing. Files read with a stealth decoder bypass the cache, since the
// decoded payload cannot be keyed before it is decoded. Options given to
// NewCache do not apply on this path; the options of the Open call do.
func WithCache(cache *Cache) Option {
	return func(o *options) {
		o.cache = cache
	}
}

// WithStrictParsing treats any container warning as a fatal error.
//
// By default, Open continues when it meets issues like a corrupt compressed
// text chunk, returning warnings alongside the parsed data.
//
// Example:
//
//	img, err := promptmeta.Open("00042.png", promptmeta.WithStrictParsing())
//	// err != nil if ANY issue is encountered
func WithStrictParsing() Option {
	return func(o *options) {
		o.strictParsing = true
	}
}

// WithIgnoreWarnings suppresses all warnings.
//
// By default, warnings about non-fatal container issues are collected in
// Image.Warnings. This option discards them.
func WithIgnoreWarnings() Option {
	return func(o *options) {
		o.ignoreWarnings = true
	}
}
