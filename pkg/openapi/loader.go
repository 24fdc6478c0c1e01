package openapi

import (
	"context"
	"io/fs"
	"net/http"
	"time"
)

// DefaultMaxDocumentBytes caps remote documents unless overridden with
// WithMaxDocumentBytes.
const DefaultMaxDocumentBytes int64 = 16 << 20

// Loader returns the raw bytes of the OpenAPI document behind src. The
// Importer parses them; loaders never interpret the payload.
type Loader interface {
	Load(ctx context.Context, src Source) ([]byte, error)
}

// LoaderOptions selects which source kinds a Loader accepts and how remote
// fetches behave. The zero value reads files only.
type LoaderOptions struct {
	// FileSystem resolves SourceFromFS names. Without it fs sources fail.
	FileSystem fs.FS

	// HTTPClient fetches SourceFromURL locations.
	HTTPClient *http.Client

	// AllowHTTPFallback turns on URL sources with a plain client when no
	// HTTPClient is given.
	AllowHTTPFallback bool

	// RequestTimeout bounds each remote fetch. Zero leaves it to the client.
	RequestTimeout time.Duration

	// MaxDocumentBytes rejects larger remote documents. Zero or negative
	// means DefaultMaxDocumentBytes.
	MaxDocumentBytes int64
}

// LoaderOption tweaks LoaderOptions.
type LoaderOption func(*LoaderOptions)

// WithFileSystem reads SourceFromFS names from files, e.g. an embed.FS.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient enables URL sources through client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables URL sources with a plain client bounded by
// timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// WithMaxDocumentBytes sets the remote document size limit.
func WithMaxDocumentBytes(limit int64) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.MaxDocumentBytes = limit
	}
}

// NewLoaderOptions folds options into a LoaderOptions value.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	return cfg
}
