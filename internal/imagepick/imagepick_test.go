package imagepick

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stillhq/sadb-tools/internal/fetch"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

// newImageServer serves the given path -> body map; unknown paths 404.
func newImageServer(t *testing.T, files map[string][]byte) (*httptest.Server, *[]string) {
	t.Helper()
	var hits []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestPicker() *Picker {
	return New(fetch.New(fetch.WithRetries(0)))
}

func TestPickBestByArea(t *testing.T) {
	srv, _ := newImageServer(t, map[string][]byte{
		"/a.png": pngBytes(t, 100, 100),
		"/b.png": pngBytes(t, 50, 400),
		"/c.jpg": jpegBytes(t, 300, 10),
	})
	urls := []string{srv.URL + "/a.png", srv.URL + "/b.png", srv.URL + "/c.jpg"}

	got, err := newTestPicker().PickBest(context.Background(), urls)
	if err != nil {
		t.Fatalf("PickBest: %v", err)
	}
	if want := srv.URL + "/b.png"; got != want {
		t.Errorf("PickBest = %q, want %q", got, want)
	}
}

func TestPickBestEmpty(t *testing.T) {
	got, err := newTestPicker().PickBest(context.Background(), nil)
	if err != nil {
		t.Fatalf("PickBest: %v", err)
	}
	if got != "" {
		t.Errorf("PickBest(nil) = %q, want empty", got)
	}
}

func TestPickBestSingle(t *testing.T) {
	srv, _ := newImageServer(t, map[string][]byte{"/only.png": pngBytes(t, 8, 8)})
	got, err := newTestPicker().PickBest(context.Background(), []string{srv.URL + "/only.png"})
	if err != nil {
		t.Fatalf("PickBest: %v", err)
	}
	if got != srv.URL+"/only.png" {
		t.Errorf("PickBest = %q", got)
	}
}

func TestPickBestTieKeepsFirst(t *testing.T) {
	srv, _ := newImageServer(t, map[string][]byte{
		"/small.png":  pngBytes(t, 10, 10),
		"/first.png":  pngBytes(t, 20, 40),
		"/second.png": pngBytes(t, 40, 20),
	})
	urls := []string{srv.URL + "/small.png", srv.URL + "/first.png", srv.URL + "/second.png"}
	got, err := newTestPicker().PickBest(context.Background(), urls)
	if err != nil {
		t.Fatalf("PickBest: %v", err)
	}
	if got != srv.URL+"/first.png" {
		t.Errorf("PickBest = %q, want first of the tied candidates", got)
	}
}

func TestPickBestFetchFailureAborts(t *testing.T) {
	srv, hits := newImageServer(t, map[string][]byte{
		"/a.png": pngBytes(t, 100, 100),
		"/c.png": pngBytes(t, 500, 500),
	})
	urls := []string{srv.URL + "/a.png", srv.URL + "/missing.png", srv.URL + "/c.png"}

	got, err := newTestPicker().PickBest(context.Background(), urls)
	if err == nil {
		t.Fatalf("expected error, got %q", got)
	}
	var serr *fetch.StatusError
	if !errors.As(err, &serr) || serr.StatusCode != http.StatusNotFound {
		t.Errorf("expected wrapped 404 StatusError, got %v", err)
	}
	if !strings.Contains(err.Error(), "/missing.png") {
		t.Errorf("error %q does not name the failing URL", err)
	}
	for _, h := range *hits {
		if h == "/c.png" {
			t.Error("candidates after the failure should not be fetched")
		}
	}
}

func TestPickBestDecodeFailureAborts(t *testing.T) {
	srv, _ := newImageServer(t, map[string][]byte{
		"/a.png":   pngBytes(t, 100, 100),
		"/bad.png": []byte("definitely not an image"),
	})
	_, err := newTestPicker().PickBest(context.Background(), []string{srv.URL + "/a.png", srv.URL + "/bad.png"})
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !errors.Is(err, image.ErrFormat) {
		t.Errorf("expected image.ErrFormat, got %v", err)
	}
}

type fakeGetter struct {
	bodies map[string][]byte
	calls  []string
}

func (f *fakeGetter) Get(ctx context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	b, ok := f.bodies[url]
	if !ok {
		return nil, fmt.Errorf("no body for %s", url)
	}
	return b, nil
}

func TestBestMeasuresInOrder(t *testing.T) {
	g := &fakeGetter{bodies: map[string][]byte{
		"u1": pngBytes(t, 3, 3),
		"u2": pngBytes(t, 4, 4),
		"u3": pngBytes(t, 2, 2),
	}}
	best, err := New(g).Best(context.Background(), []string{"u1", "u2", "u3"})
	if err != nil {
		t.Fatalf("Best: %v", err)
	}
	if best.URL != "u2" || best.Width != 4 || best.Height != 4 || best.Area() != 16 {
		t.Errorf("Best = %+v", best)
	}
	if strings.Join(g.calls, ",") != "u1,u2,u3" {
		t.Errorf("calls = %v", g.calls)
	}
}

func TestBestFetchesEveryCall(t *testing.T) {
	g := &fakeGetter{bodies: map[string][]byte{"u": pngBytes(t, 1, 1)}}
	p := New(g)
	for i := 0; i < 2; i++ {
		if _, err := p.PickBest(context.Background(), []string{"u"}); err != nil {
			t.Fatalf("PickBest: %v", err)
		}
	}
	if len(g.calls) != 2 {
		t.Errorf("calls = %d, want 2 (no caching across calls)", len(g.calls))
	}
}
