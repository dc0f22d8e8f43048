// Package artifacts re-downloads the icon and screenshot files referenced by
// the catalog into a local artifacts directory.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"charm.land/log/v2"
	"github.com/schollz/progressbar/v3"

	"github.com/stillhq/sadb-tools/internal/catalog"
	"github.com/stillhq/sadb-tools/internal/history"
	"github.com/stillhq/sadb-tools/internal/logging"
)

const (
	IconsDir       = "icons"
	ScreenshotsDir = "screenshots"
)

// Downloader streams a URL into w. *fetch.Fetcher satisfies it.
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// Recorder receives one entry per written file. *history.Store satisfies it.
type Recorder interface {
	RecordDownload(d *history.Download) error
}

// Report summarizes a re-download run.
type Report struct {
	Records     int
	Icons       int
	Screenshots int
	Bytes       int64
	Files       []string
}

// Manager owns an artifacts directory.
type Manager struct {
	dir      string
	dl       Downloader
	logger   *log.Logger
	recorder Recorder
	progress io.Writer
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for per-file messages.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithRecorder records every downloaded file.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithProgress renders a progress bar to w. Without it no bar is drawn.
func WithProgress(w io.Writer) Option {
	return func(m *Manager) { m.progress = w }
}

// New returns a Manager for dir.
func New(dir string, dl Downloader, opts ...Option) *Manager {
	m := &Manager{dir: dir, dl: dl, logger: logging.Discard()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the artifacts directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Reset empties the icons and screenshots directories. A directory that
// already exists is removed with its contents first; both exist afterwards.
func (m *Manager) Reset() error {
	for _, sub := range []string{IconsDir, ScreenshotsDir} {
		p := filepath.Join(m.dir, sub)
		if _, err := os.Stat(p); err == nil {
			if err := os.RemoveAll(p); err != nil {
				return fmt.Errorf("removing %s: %w", p, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", p, err)
		}
		if err := os.MkdirAll(p, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", p, err)
		}
	}
	return nil
}

type job struct {
	recordID string
	url      string
	rel      string
	icon     bool
}

// Redownload resets the artifact directories and fetches every icon and
// screenshot in cat, in record ID order. The first failure stops the run.
// Record IDs become file names, so a catalog with an ID that is not a plain
// file name stem is rejected before anything is removed.
func (m *Manager) Redownload(ctx context.Context, cat *catalog.Catalog) (*Report, error) {
	ids := cat.IDs()
	for _, id := range ids {
		if err := catalog.ValidateID(id); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}
	if err := m.Reset(); err != nil {
		return nil, err
	}

	var jobs []job
	for _, id := range ids {
		rec, _ := cat.Get(id)
		if rec.IconURL != "" {
			jobs = append(jobs, job{recordID: id, url: rec.IconURL, rel: IconPath(id, rec.IconURL), icon: true})
		}
		for i, u := range rec.ScreenshotURLs {
			jobs = append(jobs, job{recordID: id, url: u, rel: ScreenshotPath(id, i, u)})
		}
	}

	bar := m.newBar(len(jobs))
	report := &Report{Records: len(ids)}
	for _, j := range jobs {
		bar.Describe(j.recordID)
		n, err := m.download(ctx, j)
		if err != nil {
			return report, err
		}
		report.Bytes += n
		report.Files = append(report.Files, j.rel)
		if j.icon {
			report.Icons++
		} else {
			report.Screenshots++
		}
		bar.Add(1)
	}
	bar.Finish()

	m.logger.Info("redownload complete", "records", report.Records, "icons", report.Icons, "screenshots", report.Screenshots, "bytes", report.Bytes)
	return report, nil
}

func (m *Manager) download(ctx context.Context, j job) (int64, error) {
	dest, err := m.resolve(j.rel)
	if err != nil {
		return 0, err
	}
	f, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", dest, err)
	}
	n, err := m.dl.Download(ctx, j.url, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return 0, fmt.Errorf("downloading %s for %s: %w", j.url, j.recordID, err)
	}
	m.logger.Debug("downloaded", "record", j.recordID, "url", j.url, "path", j.rel, "bytes", n)

	if m.recorder != nil {
		if err := m.recorder.RecordDownload(&history.Download{
			RecordID: j.recordID,
			URL:      j.url,
			Path:     j.rel,
			Bytes:    n,
		}); err != nil {
			return n, fmt.Errorf("recording download: %w", err)
		}
	}
	return n, nil
}

// resolve joins a slash-separated artifact path onto the directory and
// refuses results that land outside it.
func (m *Manager) resolve(rel string) (string, error) {
	dest := filepath.Join(m.dir, filepath.FromSlash(rel))
	within, err := filepath.Rel(m.dir, dest)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("artifact path %q escapes %s", rel, m.dir)
	}
	return dest, nil
}

func (m *Manager) newBar(total int) *progressbar.ProgressBar {
	w := m.progress
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetVisibility(m.progress != nil),
		progressbar.OptionClearOnFinish(),
	)
}

// FileName returns the artifact file name for a record's URL. Index -1 names
// the icon ({id}{ext}); index i >= 0 names screenshot i ({id}-{i}{ext}). The
// extension comes from the URL path and may be empty.
func FileName(id string, index int, rawURL string) string {
	ext := ""
	if u, err := url.Parse(rawURL); err == nil {
		ext = path.Ext(u.Path)
	}
	if index < 0 {
		return id + ext
	}
	return fmt.Sprintf("%s-%d%s", id, index, ext)
}

// IconPath is the slash-separated path of a record's icon below the
// artifacts directory.
func IconPath(id, rawURL string) string {
	return path.Join(IconsDir, FileName(id, -1, rawURL))
}

// ScreenshotPath is the slash-separated path of screenshot i.
func ScreenshotPath(id string, i int, rawURL string) string {
	return path.Join(ScreenshotsDir, FileName(id, i, rawURL))
}
