package importer

import (
	"reflect"
	"testing"

	"github.com/stillhq/sadb-tools/internal/catalog"
)

func sampleResult() *Result {
	return &Result{
		ID:        "Calculator",
		FlatpakID: "org.gnome.Calculator",
		Record: &catalog.Record{
			Name:           "Calculator",
			PrimarySrc:     "flathub",
			SrcPkgName:     "app/org.gnome.Calculator/x86_64/stable",
			Categories:     []string{"GNOME", "Utility"},
			Pricing:        catalog.Int(1),
			StillRating:    catalog.Int(0),
			Mobile:         catalog.Int(1),
			Description:    "Line one\n\nLine two",
			ScreenshotURLs: []string{"https://img/a.png", "https://img/b.png"},
		},
	}
}

func TestAnswersRoundTrip(t *testing.T) {
	res := sampleResult()
	want := res.Record.Clone()

	if err := AnswersFrom(res).Apply(res); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !reflect.DeepEqual(res.Record, want) {
		t.Errorf("record changed:\n got %+v\nwant %+v", res.Record, want)
	}
}

func TestAnswersApplyEdits(t *testing.T) {
	res := sampleResult()
	a := AnswersFrom(res)
	a.ID = "GnomeCalculator"
	a.Keywords = " math,  , calc "
	a.StillRatingStr = "3"
	a.Screenshots = "https://img/c.png\n\n  https://img/d.png  \n"

	if err := a.Apply(res); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.ID != "GnomeCalculator" {
		t.Errorf("ID = %q", res.ID)
	}
	if !reflect.DeepEqual(res.Record.Keywords, []string{"math", "calc"}) {
		t.Errorf("keywords = %q", res.Record.Keywords)
	}
	if got := catalog.IntValue(res.Record.StillRating, -1); got != 3 {
		t.Errorf("still_rating = %d", got)
	}
	want := []string{"https://img/c.png", "https://img/d.png"}
	if !reflect.DeepEqual(res.Record.ScreenshotURLs, want) {
		t.Errorf("screenshots = %q, want %q", res.Record.ScreenshotURLs, want)
	}
}

func TestAnswersApplyRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ReviewAnswers)
	}{
		{"bad pricing", func(a *ReviewAnswers) { a.PricingStr = "free" }},
		{"negative mobile", func(a *ReviewAnswers) { a.MobileStr = "-1" }},
		{"empty name", func(a *ReviewAnswers) { a.Name = "  " }},
		{"id with slash", func(a *ReviewAnswers) { a.ID = "a/b" }},
		{"relative screenshot", func(a *ReviewAnswers) { a.Screenshots = "img/a.png" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := sampleResult()
			orig := res.Record
			a := AnswersFrom(res)
			tt.modify(a)
			if err := a.Apply(res); err == nil {
				t.Fatal("expected error")
			}
			if res.Record != orig || res.ID != "Calculator" {
				t.Error("result modified on failed apply")
			}
		})
	}
}

func TestValidateIndex(t *testing.T) {
	for _, s := range []string{"0", "1", " 2 "} {
		if err := ValidateIndex(s); err != nil {
			t.Errorf("ValidateIndex(%q) = %v", s, err)
		}
	}
	for _, s := range []string{"", "x", "-1", "1.5"} {
		if err := ValidateIndex(s); err == nil {
			t.Errorf("ValidateIndex(%q) = nil, want error", s)
		}
	}
}

func TestBuildReviewForm(t *testing.T) {
	if BuildReviewForm(AnswersFrom(sampleResult())) == nil {
		t.Fatal("BuildReviewForm returned nil")
	}
}
