// Package loader reads OpenAPI documents for the importer from disk, from an
// fs.FS or over HTTP.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	pkgopenapi "github.com/goliatone/go-formfilter/pkg/openapi"
)

// ErrHTTPDisabled is returned for URL sources when no client was configured.
var ErrHTTPDisabled = errors.New("openapi loader: http support disabled")

// Loader dispatches on the source kind. HTTP stays off unless the options
// carry a client or enable the fallback.
type Loader struct {
	files    fs.FS
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

var _ pkgopenapi.Loader = (*Loader)(nil)

// New builds a Loader from resolved options.
func New(options pkgopenapi.LoaderOptions) *Loader {
	l := &Loader{
		files:    options.FileSystem,
		timeout:  options.RequestTimeout,
		maxBytes: options.MaxDocumentBytes,
	}
	if l.maxBytes <= 0 {
		l.maxBytes = pkgopenapi.DefaultMaxDocumentBytes
	}

	if options.HTTPClient != nil {
		client := *options.HTTPClient
		if client.Timeout == 0 {
			client.Timeout = l.timeout
		}
		l.client = &client
	} else if options.AllowHTTPFallback {
		l.client = &http.Client{Timeout: l.timeout}
	}
	return l
}

// Load reads the document behind src.
func (l *Loader) Load(ctx context.Context, src pkgopenapi.Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("openapi loader: source is nil")
	}

	switch kind := src.Kind(); kind {
	case pkgopenapi.SourceKindFile:
		return loadFile(ctx, src.Location())
	case pkgopenapi.SourceKindFS:
		return loadFromFS(ctx, l.files, src.Location())
	case pkgopenapi.SourceKindURL:
		if l.client == nil {
			return nil, ErrHTTPDisabled
		}
		return loadHTTP(ctx, l.client, src.Location(), l.timeout, l.maxBytes)
	default:
		return nil, fmt.Errorf("openapi loader: unsupported source kind %q", kind)
	}
}
