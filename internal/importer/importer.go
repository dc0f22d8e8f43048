// Package importer turns AppStream metadata for a Flatpak application into
// a catalog record.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/log/v2"
	"golang.org/x/sync/errgroup"

	"github.com/stillhq/sadb-tools/internal/appstream"
	"github.com/stillhq/sadb-tools/internal/catalog"
	"github.com/stillhq/sadb-tools/internal/logging"
	"github.com/stillhq/sadb-tools/internal/textconv"
)

// ErrComponentNotFound is returned when the metadata source has no
// component for the requested Flatpak ID.
var ErrComponentNotFound = errors.New("appstream component not found")

// ComponentSource looks up AppStream components. *appstream.Pool satisfies it.
type ComponentSource interface {
	Find(id, origin string) (*appstream.Component, bool)
}

// ImagePicker chooses one URL among renditions of a screenshot.
// *imagepick.Picker satisfies it.
type ImagePicker interface {
	PickBest(ctx context.Context, urls []string) (string, error)
}

// Result is an imported record and the catalog ID it should be stored under.
type Result struct {
	ID        string
	FlatpakID string
	Record    *catalog.Record
}

// Importer maps components to records.
type Importer struct {
	source       ComponentSource
	picker       ImagePicker
	logger       *log.Logger
	origin       string
	primarySrc   string
	arch         string
	branch       string
	iconTemplate string
	concurrency  int
}

// Option configures an Importer.
type Option func(*Importer)

func WithOrigin(origin string) Option { return func(i *Importer) { i.origin = origin } }
func WithPrimarySrc(src string) Option { return func(i *Importer) { i.primarySrc = src } }
func WithArch(arch string) Option { return func(i *Importer) { i.arch = arch } }
func WithBranch(branch string) Option { return func(i *Importer) { i.branch = branch } }
func WithIconURLTemplate(tmpl string) Option { return func(i *Importer) { i.iconTemplate = tmpl } }
func WithLogger(logger *log.Logger) Option { return func(i *Importer) { i.logger = logger } }

// WithConcurrency bounds how many screenshots are picked at once. Each
// individual pick still fetches its candidates one after another.
func WithConcurrency(n int) Option {
	return func(i *Importer) {
		if n < 1 {
			n = 1
		}
		i.concurrency = n
	}
}

// New returns an Importer reading from source and picking screenshots with picker.
func New(source ComponentSource, picker ImagePicker, opts ...Option) *Importer {
	imp := &Importer{
		source:       source,
		picker:       picker,
		logger:       logging.Discard(),
		primarySrc:   "flathub",
		arch:         "x86_64",
		branch:       "stable",
		iconTemplate: "https://flathub.org/repo/appstream/{arch}/icons/128x128/{id}.png",
		concurrency:  4,
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// DeriveID computes the catalog ID for a Flatpak ID: the third dot-separated
// segment when there is one (org.gnome.Calculator -> Calculator), otherwise
// the whole ID with dots replaced by dashes.
func DeriveID(flatpakID string) string {
	parts := strings.Split(flatpakID, ".")
	if len(parts) >= 3 {
		return parts[2]
	}
	return strings.ReplaceAll(flatpakID, ".", "-")
}

// Import looks up flatpakID and builds its record. Screenshot selection
// downloads every candidate image; any failure aborts the import.
func (imp *Importer) Import(ctx context.Context, flatpakID string) (*Result, error) {
	comp, ok := imp.source.Find(flatpakID, imp.origin)
	if !ok {
		return nil, fmt.Errorf("%s: %w", flatpakID, ErrComponentNotFound)
	}

	rec := imp.Record(comp)
	shots, err := imp.pickScreenshots(ctx, comp.Screenshots)
	if err != nil {
		return nil, fmt.Errorf("picking screenshots for %s: %w", flatpakID, err)
	}
	rec.ScreenshotURLs = shots

	id := DeriveID(flatpakID)
	imp.logger.Info("imported component", "flatpak", flatpakID, "id", id, "screenshots", len(shots))
	return &Result{ID: id, FlatpakID: flatpakID, Record: rec}, nil
}

// Record maps the component's fields onto a new record, leaving screenshots
// empty. Dropdown fields get the form defaults.
func (imp *Importer) Record(comp *appstream.Component) *catalog.Record {
	return &catalog.Record{
		Name:        comp.Name,
		Author:      comp.DeveloperName,
		Summary:     comp.Summary,
		PrimarySrc:  imp.primarySrc,
		SrcPkgName:  fmt.Sprintf("app/%s/%s/%s", comp.ID, imp.arch, imp.branch),
		Categories:  cloneStrings(comp.Categories),
		Keywords:    cloneStrings(comp.Keywords),
		MimeTypes:   cloneStrings(comp.MediaTypes),
		Pricing:     catalog.Int(catalog.DefaultPricing),
		StillRating: catalog.Int(catalog.DefaultStillRating),
		Mobile:      catalog.Int(catalog.DefaultMobile),
		IconURL:     imp.iconURL(comp.ID),
		License:     comp.ProjectLicense,
		Homepage:    comp.URL(appstream.URLHomepage),
		DonateURL:   comp.URL(appstream.URLDonation),
		Description: textconv.ToPlainText(comp.Description),
	}
}

func (imp *Importer) iconURL(flatpakID string) string {
	r := strings.NewReplacer("{id}", flatpakID, "{arch}", imp.arch)
	return r.Replace(imp.iconTemplate)
}

// pickScreenshots runs one pick task per screenshot and returns the chosen
// URLs in screenshot order. Screenshots without images are skipped.
func (imp *Importer) pickScreenshots(ctx context.Context, shots []appstream.Screenshot) ([]string, error) {
	picked := make([]string, len(shots))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(imp.concurrency)
	for i, shot := range shots {
		urls := shot.URLs()
		if len(urls) == 0 {
			continue
		}
		g.Go(func() error {
			best, err := imp.picker.PickBest(ctx, urls)
			if err != nil {
				return fmt.Errorf("screenshot %d: %w", i, err)
			}
			imp.logger.Debug("picked screenshot", "index", i, "url", best, "candidates", len(urls))
			picked[i] = best
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []string
	for _, u := range picked {
		if u != "" {
			out = append(out, u)
		}
	}
	return out, nil
}

// Task is an import running in the background.
type Task struct {
	done   chan struct{}
	result *Result
	err    error
}

// Start runs Import in a new goroutine and returns immediately.
func (imp *Importer) Start(ctx context.Context, flatpakID string) *Task {
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.result, t.err = imp.Import(ctx, flatpakID)
	}()
	return t
}

// Done is closed when the import has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the import finishes and returns its outcome.
func (t *Task) Wait() (*Result, error) {
	<-t.done
	return t.result, t.err
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
