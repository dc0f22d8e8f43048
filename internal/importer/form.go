package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/stillhq/sadb-tools/internal/catalog"
)

// ReviewAnswers holds the editable form values for an imported record.
// Lists are comma separated, screenshots one URL per line, and the dropdown
// indexes are strings because huh.Input binds to *string.
type ReviewAnswers struct {
	ID               string
	Name             string
	Author           string
	Summary          string
	PrimarySrc       string
	SrcPkgName       string
	Categories       string
	Keywords         string
	MimeTypes        string
	PricingStr       string
	StillRatingStr   string
	StillRatingNotes string
	MobileStr        string
	IconURL          string
	License          string
	Homepage         string
	DonateURL        string
	DemoURL          string
	Description      string
	Screenshots      string

	Confirmed bool
}

// AnswersFrom fills the form values from an import result.
func AnswersFrom(res *Result) *ReviewAnswers {
	r := res.Record
	return &ReviewAnswers{
		ID:               res.ID,
		Name:             r.Name,
		Author:           r.Author,
		Summary:          r.Summary,
		PrimarySrc:       r.PrimarySrc,
		SrcPkgName:       r.SrcPkgName,
		Categories:       strings.Join(r.Categories, ", "),
		Keywords:         strings.Join(r.Keywords, ", "),
		MimeTypes:        strings.Join(r.MimeTypes, ", "),
		PricingStr:       strconv.Itoa(catalog.IntValue(r.Pricing, catalog.DefaultPricing)),
		StillRatingStr:   strconv.Itoa(catalog.IntValue(r.StillRating, catalog.DefaultStillRating)),
		StillRatingNotes: r.StillRatingNotes,
		MobileStr:        strconv.Itoa(catalog.IntValue(r.Mobile, catalog.DefaultMobile)),
		IconURL:          r.IconURL,
		License:          r.License,
		Homepage:         r.Homepage,
		DonateURL:        r.DonateURL,
		DemoURL:          r.DemoURL,
		Description:      r.Description,
		Screenshots:      strings.Join(r.ScreenshotURLs, "\n"),
		Confirmed:        true,
	}
}

// Apply writes the edited values back into res, replacing its ID and record.
func (a *ReviewAnswers) Apply(res *Result) error {
	pricing, err := parseIndex("pricing", a.PricingStr)
	if err != nil {
		return err
	}
	rating, err := parseIndex("still rating", a.StillRatingStr)
	if err != nil {
		return err
	}
	mobile, err := parseIndex("mobile", a.MobileStr)
	if err != nil {
		return err
	}

	rec := &catalog.Record{
		Name:             strings.TrimSpace(a.Name),
		Author:           strings.TrimSpace(a.Author),
		Summary:          strings.TrimSpace(a.Summary),
		PrimarySrc:       strings.TrimSpace(a.PrimarySrc),
		SrcPkgName:       strings.TrimSpace(a.SrcPkgName),
		Categories:       splitList(a.Categories, ","),
		Keywords:         splitList(a.Keywords, ","),
		MimeTypes:        splitList(a.MimeTypes, ","),
		Pricing:          catalog.Int(pricing),
		StillRating:      catalog.Int(rating),
		StillRatingNotes: strings.TrimSpace(a.StillRatingNotes),
		Mobile:           catalog.Int(mobile),
		IconURL:          strings.TrimSpace(a.IconURL),
		License:          strings.TrimSpace(a.License),
		Homepage:         strings.TrimSpace(a.Homepage),
		DonateURL:        strings.TrimSpace(a.DonateURL),
		DemoURL:          strings.TrimSpace(a.DemoURL),
		Description:      strings.TrimSpace(a.Description),
		ScreenshotURLs:   splitList(a.Screenshots, "\n"),
		Extra:            res.Record.Extra,
	}
	id := strings.TrimSpace(a.ID)
	if err := rec.Validate(id); err != nil {
		return err
	}
	res.ID = id
	res.Record = rec
	return nil
}

// BuildReviewForm constructs the review TUI bound to answers.
func BuildReviewForm(answers *ReviewAnswers) *huh.Form {
	groups := []*huh.Group{
		identityGroup(answers),
		sourceGroup(answers),
		classificationGroup(answers),
		ratingGroup(answers),
		linksGroup(answers),
		contentGroup(answers),
		confirmGroup(answers),
	}
	return huh.NewForm(groups...).WithTheme(huh.ThemeCatppuccin())
}

// Review shows the form for res and applies the edits. It reports false when
// the user declined to save.
func Review(res *Result) (bool, error) {
	answers := AnswersFrom(res)
	if err := BuildReviewForm(answers).Run(); err != nil {
		return false, fmt.Errorf("review form: %w", err)
	}
	if !answers.Confirmed {
		return false, nil
	}
	if err := answers.Apply(res); err != nil {
		return false, err
	}
	return true, nil
}

func identityGroup(a *ReviewAnswers) *huh.Group {
	return huh.NewGroup(
		huh.NewNote().
			Title("Review Import").
			Description("Imported from "+a.SrcPkgName+". Edit any field before it is written to the catalog."),
		huh.NewInput().
			Title("ID").
			Value(&a.ID).
			Validate(catalog.ValidateID),
		huh.NewInput().
			Title("Name").
			Value(&a.Name).
			Validate(required("name")),
		huh.NewInput().
			Title("Author").
			Value(&a.Author),
		huh.NewInput().
			Title("Summary").
			Value(&a.Summary),
	)
}

func sourceGroup(a *ReviewAnswers) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().
			Title("Primary Source").
			Value(&a.PrimarySrc),
		huh.NewInput().
			Title("Source Package").
			Value(&a.SrcPkgName).
			Validate(required("source package")),
		huh.NewInput().
			Title("License").
			Value(&a.License),
	)
}

func classificationGroup(a *ReviewAnswers) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().
			Title("Categories").
			Description("Comma separated").
			Value(&a.Categories),
		huh.NewInput().
			Title("Keywords").
			Description("Comma separated").
			Value(&a.Keywords),
		huh.NewInput().
			Title("MIME Types").
			Description("Comma separated").
			Value(&a.MimeTypes),
	)
}

func ratingGroup(a *ReviewAnswers) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().
			Title("Pricing").
			Value(&a.PricingStr).
			Validate(ValidateIndex),
		huh.NewInput().
			Title("Still Rating").
			Value(&a.StillRatingStr).
			Validate(ValidateIndex),
		huh.NewText().
			Title("Still Rating Notes").
			Lines(3).
			Value(&a.StillRatingNotes),
		huh.NewInput().
			Title("Mobile").
			Value(&a.MobileStr).
			Validate(ValidateIndex),
	)
}

func linksGroup(a *ReviewAnswers) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().
			Title("Icon URL").
			Value(&a.IconURL),
		huh.NewInput().
			Title("Homepage").
			Value(&a.Homepage),
		huh.NewInput().
			Title("Donate URL").
			Value(&a.DonateURL),
		huh.NewInput().
			Title("Demo URL").
			Value(&a.DemoURL),
	)
}

func contentGroup(a *ReviewAnswers) *huh.Group {
	return huh.NewGroup(
		huh.NewText().
			Title("Description").
			Lines(8).
			Value(&a.Description),
		huh.NewText().
			Title("Screenshots").
			Description("One URL per line").
			Lines(4).
			Value(&a.Screenshots),
	)
}

func confirmGroup(a *ReviewAnswers) *huh.Group {
	return huh.NewGroup(
		huh.NewConfirm().
			Title("Save to catalog?").
			Affirmative("Save").
			Negative("Discard").
			Value(&a.Confirmed),
	)
}

// ValidateIndex accepts a non-negative dropdown index.
func ValidateIndex(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

func parseIndex(field, s string) (int, error) {
	if err := ValidateIndex(s); err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n, nil
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
