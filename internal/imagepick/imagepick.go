// Package imagepick chooses the highest-resolution image among candidate
// URLs that show the same screenshot.
package imagepick

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder for image.DecodeConfig
	_ "image/jpeg" // register JPEG decoder for image.DecodeConfig
	_ "image/png"  // register PNG decoder for image.DecodeConfig

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Getter fetches a resource fully. *fetch.Fetcher satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Candidate is one measured image.
type Candidate struct {
	URL    string
	Width  int
	Height int
}

// Area returns the pixel area of the candidate.
func (c Candidate) Area() int {
	return c.Width * c.Height
}

// Picker measures candidate images over the network. No results are cached
// between calls.
type Picker struct {
	getter Getter
}

// New returns a Picker that downloads through g.
func New(g Getter) *Picker {
	return &Picker{getter: g}
}

// Measure downloads url and decodes its dimensions.
func (p *Picker) Measure(ctx context.Context, url string) (Candidate, error) {
	data, err := p.getter.Get(ctx, url)
	if err != nil {
		return Candidate{}, fmt.Errorf("fetching %s: %w", url, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Candidate{}, fmt.Errorf("decoding %s: %w", url, err)
	}
	return Candidate{URL: url, Width: cfg.Width, Height: cfg.Height}, nil
}

// PickBest fetches every URL in order and returns the one with the largest
// pixel area. Ties keep the first URL seen. It returns "" for an empty list.
// A fetch or decode failure on any candidate aborts the whole selection.
func (p *Picker) PickBest(ctx context.Context, urls []string) (string, error) {
	best, err := p.Best(ctx, urls)
	if err != nil {
		return "", err
	}
	return best.URL, nil
}

// Best is PickBest returning the measured winner. The zero Candidate means
// there was nothing to choose from.
func (p *Picker) Best(ctx context.Context, urls []string) (Candidate, error) {
	var best Candidate
	bestArea := 0
	for _, u := range urls {
		c, err := p.Measure(ctx, u)
		if err != nil {
			return Candidate{}, err
		}
		if area := c.Area(); area > bestArea {
			bestArea = area
			best = c
		}
	}
	return best, nil
}
