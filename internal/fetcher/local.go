package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/medhold/dispute-cli/internal/model"
)

// LocalSource reads letters from the filesystem. A location may be a single
// file, a directory (every .txt file in it), a glob pattern, or "-" for
// stdin. Documents keep the path as their ID and the base name as their
// display name.
type LocalSource struct{}

// NewLocalSource creates a filesystem source.
func NewLocalSource() *LocalSource {
	return &LocalSource{}
}

// Resolve expands the location and reads every matched file.
func (s *LocalSource) Resolve(ctx context.Context, location string) ([]model.Document, error) {
	if location == "-" {
		raw, err := readAllLimited(os.Stdin, "stdin")
		if err != nil {
			return nil, err
		}
		return []model.Document{newDocument("stdin", "stdin", raw)}, nil
	}

	paths, err := expandLocal(location)
	if err != nil {
		return nil, err
	}

	docs := make([]model.Document, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "fetcher: resolve canceled")
		}
		f, err := os.Open(p)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: open %s", p)
		}
		raw, err := readAllLimited(f, p)
		f.Close()
		if err != nil {
			return nil, err
		}
		docs = append(docs, newDocument(p, filepath.Base(p), raw))
	}
	return docs, nil
}

// expandLocal turns a location into a sorted list of file paths. Globs and
// directory listings come back sorted already; matching nothing is an error
// so a typo does not look like an empty batch.
func expandLocal(location string) ([]string, error) {
	if strings.ContainsAny(location, "*?[") {
		paths, err := filepath.Glob(location)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: bad glob %q", location)
		}
		if len(paths) == 0 {
			return nil, eris.Errorf("fetcher: no files match %q", location)
		}
		return paths, nil
	}

	info, err := os.Stat(location)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: stat %s", location)
	}
	if !info.IsDir() {
		return []string{location}, nil
	}

	entries, err := os.ReadDir(location)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read dir %s", location)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		paths = append(paths, filepath.Join(location, e.Name()))
	}
	if len(paths) == 0 {
		return nil, eris.Errorf("fetcher: no .txt files in %s", location)
	}
	return paths, nil
}
