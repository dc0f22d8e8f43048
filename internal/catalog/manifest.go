package catalog

import (
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record is one application entry in repo.yaml. The map key in the file is
// the record ID; it is not repeated inside the record.
//
// Keys the tool does not model are kept in Extra, and keys that were present
// but empty in the source file are written back, so loading and saving a
// catalog does not drop anything.
type Record struct {
	Name             string   `yaml:"name,omitempty"`
	Author           string   `yaml:"author,omitempty"`
	Summary          string   `yaml:"summary,omitempty"`
	PrimarySrc       string   `yaml:"primary_src,omitempty"`
	SrcPkgName       string   `yaml:"src_pkg_name,omitempty"`
	Categories       []string `yaml:"categories,omitempty"`
	Keywords         []string `yaml:"keywords,omitempty"`
	MimeTypes        []string `yaml:"mimetypes,omitempty"`
	Pricing          *int     `yaml:"pricing,omitempty"`
	StillRating      *int     `yaml:"still_rating,omitempty"`
	StillRatingNotes string   `yaml:"still_rating_notes,omitempty"`
	Mobile           *int     `yaml:"mobile,omitempty"`
	IconURL          string   `yaml:"icon_url,omitempty"`
	License          string   `yaml:"license,omitempty"`
	Homepage         string   `yaml:"homepage,omitempty"`
	DonateURL        string   `yaml:"donate_url,omitempty"`
	DemoURL          string   `yaml:"demo_url,omitempty"`
	Description      string   `yaml:"description,omitempty"`
	ScreenshotURLs   []string `yaml:"screenshot_urls,omitempty"`

	Extra map[string]any `yaml:",inline"`

	// source is the mapping node the record was decoded from, if any.
	source *yaml.Node
}

// Values for the pricing, still_rating and mobile fields are indexes into
// the dropdowns of the import form; the importer fills in these defaults.
const (
	DefaultPricing     = 1
	DefaultStillRating = 0
	DefaultMobile      = 1
)

// Int returns a pointer to n, for the dropdown fields.
func Int(n int) *int {
	return &n
}

// IntValue returns *p, or def when the field is unset.
func IntValue(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// recordFields is Record without its YAML methods.
type recordFields Record

func (r *Record) UnmarshalYAML(n *yaml.Node) error {
	if err := n.Decode((*recordFields)(r)); err != nil {
		return err
	}
	r.source = nil
	if n.Kind == yaml.MappingNode {
		r.source = n
	}
	return nil
}

func (r *Record) MarshalYAML() (any, error) {
	var out yaml.Node
	if err := out.Encode((*recordFields)(r)); err != nil {
		return nil, err
	}
	if r.source == nil || out.Kind != yaml.MappingNode {
		return &out, nil
	}

	written := make(map[string]bool, len(out.Content)/2)
	for i := 0; i+1 < len(out.Content); i += 2 {
		written[out.Content[i].Value] = true
	}
	// omitempty drops fields that are still empty; restore the ones the
	// source file spelled out.
	for i := 0; i+1 < len(r.source.Content); i += 2 {
		key, val := r.source.Content[i], r.source.Content[i+1]
		if !written[key.Value] && isEmptyNode(val) {
			out.Content = append(out.Content, key, val)
		}
	}
	return &out, nil
}

func isEmptyNode(n *yaml.Node) bool {
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Value == "" || n.Tag == "!!null"
	case yaml.SequenceNode, yaml.MappingNode:
		return len(n.Content) == 0
	}
	return false
}

// HasKey reports whether the source file set key on this record, even to an
// empty value. Records built in code report false.
func (r *Record) HasKey(key string) bool {
	if r.source == nil {
		return false
	}
	for i := 0; i+1 < len(r.source.Content); i += 2 {
		if r.source.Content[i].Value == key {
			return true
		}
	}
	return false
}

// ValidateID checks that id is usable both as a YAML key and as a file name
// stem for downloaded artifacts.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("record id is required")
	}
	if strings.ContainsAny(id, "/\\ \t\n") || id == "." || id == ".." {
		return fmt.Errorf("record id %q must not contain path separators or whitespace", id)
	}
	return nil
}

// Validate checks that a record has the fields every catalog entry needs.
func (r *Record) Validate(id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if r.Name == "" {
		return fmt.Errorf("record %s: name is required", id)
	}
	if r.SrcPkgName == "" {
		return fmt.Errorf("record %s: src_pkg_name is required", id)
	}
	if r.IconURL != "" && !isHTTPURL(r.IconURL) {
		return fmt.Errorf("record %s: icon_url must be an absolute http(s) URL", id)
	}
	for i, u := range r.ScreenshotURLs {
		if !isHTTPURL(u) {
			return fmt.Errorf("record %s: screenshot_urls[%d] must be an absolute http(s) URL", id, i)
		}
	}
	return nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	c.Categories = cloneStrings(r.Categories)
	c.Keywords = cloneStrings(r.Keywords)
	c.MimeTypes = cloneStrings(r.MimeTypes)
	c.ScreenshotURLs = cloneStrings(r.ScreenshotURLs)
	c.Pricing = cloneInt(r.Pricing)
	c.StillRating = cloneInt(r.StillRating)
	c.Mobile = cloneInt(r.Mobile)
	if r.Extra != nil {
		c.Extra = make(map[string]any, len(r.Extra))
		for k, v := range r.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return Int(*p)
}
