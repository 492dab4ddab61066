// Package fetcher resolves letter locations to in-memory documents. A
// location is a local path or glob, "-" for stdin, an http(s) URL, or an
// ftp URL; the text of every resolved document is normalized to NFC at
// ingestion. Input is plain text only.
package fetcher

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/medhold/dispute-cli/internal/model"
	"github.com/medhold/dispute-cli/pkg/nortext"
)

// maxDocumentBytes caps one letter. Institutional responses run a few pages;
// anything beyond this is a mis-pointed location, not a letter.
const maxDocumentBytes = 10 << 20

// Source expands one location into the documents it contains.
type Source interface {
	Resolve(ctx context.Context, location string) ([]model.Document, error)
}

// Options configures the remote sources. Zero values pick the defaults.
type Options struct {
	// Timeout bounds each remote request. Default 30s.
	Timeout time.Duration

	// MaxRetries counts the first attempt too. Default 3.
	MaxRetries int

	// PerSecond and Burst set the per-host request rate for http(s)
	// locations. Defaults 5 and 5.
	PerSecond float64
	Burst     int

	// UserAgent for http(s) requests. Default "dispute-cli/1.0".
	UserAgent string
}

// Resolver routes a location to the source for its scheme: http(s), ftp, or
// the local filesystem.
type Resolver struct {
	local *LocalSource
	http  *HTTPSource
	ftp   *FTPSource
}

// NewResolver creates a resolver with all three sources configured from opts.
func NewResolver(opts Options) *Resolver {
	return &Resolver{
		local: NewLocalSource(),
		http:  NewHTTPSource(opts),
		ftp:   NewFTPSource(opts),
	}
}

// Resolve dispatches on the location's scheme.
func (r *Resolver) Resolve(ctx context.Context, location string) ([]model.Document, error) {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return r.http.Resolve(ctx, location)
	case strings.HasPrefix(location, "ftp://"):
		return r.ftp.Resolve(ctx, location)
	default:
		return r.local.Resolve(ctx, location)
	}
}

// newDocument builds a document from raw letter bytes: UTF-8 BOM stripped,
// text normalized to NFC so an å written as a plus combining ring still
// matches the pattern cues.
func newDocument(id, name string, raw []byte) model.Document {
	text := nortext.Normalize(strings.TrimPrefix(string(raw), "\ufeff"))
	return model.Document{ID: id, Name: name, Text: text}
}

// readAllLimited reads r fully, rejecting anything over maxDocumentBytes.
func readAllLimited(r io.Reader, location string) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxDocumentBytes+1))
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read %s", location)
	}
	if len(raw) > maxDocumentBytes {
		return nil, eris.Errorf("fetcher: %s exceeds the %d MiB document limit", location, maxDocumentBytes>>20)
	}
	return raw, nil
}
