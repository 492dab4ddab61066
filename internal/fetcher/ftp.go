package fetcher

import (
	"context"
	"net"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/medhold/dispute-cli/internal/model"
)

// FTPSource retrieves letters from an FTP server, the drop format some case
// archives still use. A location ending in "/" is a directory: every regular
// file in the listing becomes one document, in name order.
type FTPSource struct {
	timeout time.Duration
}

// NewFTPSource creates an FTP source from opts.
func NewFTPSource(opts Options) *FTPSource {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &FTPSource{timeout: opts.Timeout}
}

// ftpTarget is a parsed ftp URL. Credentials default to anonymous.
type ftpTarget struct {
	host string
	path string
	user string
	pass string
}

func parseFTPURL(rawURL string) (ftpTarget, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ftpTarget{}, eris.Wrap(err, "fetcher: parse ftp url")
	}
	if u.Scheme != "ftp" {
		return ftpTarget{}, eris.Errorf("fetcher: expected ftp scheme, got %q", u.Scheme)
	}

	host := u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}
	if u.Path == "" {
		return ftpTarget{}, eris.New("fetcher: empty path in ftp url")
	}

	t := ftpTarget{host: host, path: u.Path, user: "anonymous", pass: "anonymous@"}
	if u.User != nil {
		t.user = u.User.Username()
		t.pass, _ = u.User.Password()
	}
	return t, nil
}

// Resolve connects, retrieves the file or directory listing, and returns the
// documents fully read into memory.
func (s *FTPSource) Resolve(ctx context.Context, rawURL string) ([]model.Document, error) {
	target, err := parseFTPURL(rawURL)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("ftp: connecting",
		zap.String("host", target.host),
		zap.String("path", target.path),
	)

	conn, err := ftp.Dial(target.host, ftp.DialWithTimeout(s.timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: ftp dial")
	}
	defer conn.Quit()

	if err := conn.Login(target.user, target.pass); err != nil {
		return nil, eris.Wrap(err, "fetcher: ftp login")
	}

	if !strings.HasSuffix(target.path, "/") {
		raw, err := retrieveFTP(conn, target.path)
		if err != nil {
			return nil, err
		}
		return []model.Document{newDocument(rawURL, path.Base(target.path), raw)}, nil
	}

	entries, err := conn.List(target.path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: ftp list %s", target.path)
	}
	var names []string
	for _, e := range entries {
		if e.Type == ftp.EntryTypeFile {
			names = append(names, e.Name)
		}
	}
	if len(names) == 0 {
		return nil, eris.Errorf("fetcher: no files at %s", rawURL)
	}
	slices.Sort(names)

	docs := make([]model.Document, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "fetcher: resolve canceled")
		}
		raw, err := retrieveFTP(conn, path.Join(target.path, name))
		if err != nil {
			return nil, err
		}
		id := strings.TrimSuffix(rawURL, "/") + "/" + name
		docs = append(docs, newDocument(id, name, raw))
	}
	return docs, nil
}

func retrieveFTP(conn *ftp.ServerConn, p string) ([]byte, error) {
	resp, err := conn.Retr(p)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: ftp retrieve %s", p)
	}
	raw, readErr := readAllLimited(resp, p)
	closeErr := resp.Close()
	if readErr != nil {
		return nil, readErr
	}
	if closeErr != nil {
		return nil, eris.Wrap(closeErr, "fetcher: close ftp response")
	}
	return raw, nil
}
