package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileDownloader writes artifacts into Dir, replacing files of the same
// name.
type FileDownloader struct {
	Dir    string
	Logger zerolog.Logger
}

// Download implements Downloader. The file is written next to its final
// path and renamed into place so readers never see a partial file.
func (d FileDownloader) Download(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(a.Name))
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(a.Name)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", path, err)
	}
	d.Logger.Info().Str("path", path).Str("mime", a.MIME).Int("bytes", len(a.Data)).Msg("artifact saved")
	return nil
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

// Alert implements Notifier.
func (f NotifierFunc) Alert(msg string) { f(msg) }

// LogNotifier reports alerts as warnings, for headless runs.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Alert implements Notifier.
func (n LogNotifier) Alert(msg string) {
	n.Logger.Warn().Msg(msg)
}
