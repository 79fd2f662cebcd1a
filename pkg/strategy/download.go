package strategy

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hwobserve/hwobserve/pkg/logging"
)

// Download fetches a release tarball from the internet and extracts one
// binary from it.
//
// Deprecated: direct downloads bypass the operator's artifact review; prefer
// the snap or an attached resource when one is registered for the same tool.
type Download struct {
	ToolName string
	URL      string
	// Dir receives the extracted binary, named BinName.
	Dir     string
	BinName string

	Client *http.Client
	Log    *slog.Logger
}

func (s *Download) Tool() string { return s.ToolName }
func (s *Download) Kind() Kind   { return KindDownload }

func (s *Download) Install(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return installErr(s.ToolName, CommandFailed, "build request: %w", err)
	}
	resp, err := s.client().Do(req)
	if err != nil {
		return installErr(s.ToolName, CommandFailed, "download %s: %w", s.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return installErr(s.ToolName, CommandFailed, "download %s: %s", s.URL, resp.Status)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return installErr(s.ToolName, CommandFailed, "create %s: %w", s.Dir, err)
	}
	if err := s.extract(resp.Body); err != nil {
		return installErr(s.ToolName, CommandFailed, "extract %s: %w", s.BinName, err)
	}
	s.logger().Info("installed downloaded binary", "tool", s.ToolName, "url", s.URL)
	return nil
}

func (s *Download) extract(body io.Reader) error {
	gz, err := gzip.NewReader(body)
	if err != nil {
		return err
	}
	defer gz.Close()

	dest := filepath.Join(s.Dir, s.BinName)
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if header.Typeflag != tar.TypeReg || !strings.HasSuffix(header.Name, s.BinName) {
			continue
		}
		out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
		if err != nil {
			return err
		}
		_, copyErr := io.Copy(out, tr)
		closeErr := out.Close()
		if copyErr != nil {
			return copyErr
		}
		return closeErr
	}
	return os.ErrNotExist
}

func (s *Download) Remove(ctx context.Context) error {
	return os.RemoveAll(s.Dir)
}

func (s *Download) Check(ctx context.Context) bool {
	info, err := os.Stat(filepath.Join(s.Dir, s.BinName))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0o111 != 0
}

func (s *Download) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

func (s *Download) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logging.Discard()
}
