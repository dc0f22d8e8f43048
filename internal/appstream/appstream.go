// Package appstream reads AppStream collection metadata (the catalog files
// Flatpak remotes publish) into plain Go values.
package appstream

import (
	"bufio"
	"compress/gzip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// URLKind is the type attribute of a <url> element.
type URLKind string

const (
	URLHomepage   URLKind = "homepage"
	URLBugtracker URLKind = "bugtracker"
	URLHelp       URLKind = "help"
	URLDonation   URLKind = "donation"
	URLTranslate  URLKind = "translate"
	URLVCSBrowser URLKind = "vcs-browser"
	URLContribute URLKind = "contribute"
	URLContact    URLKind = "contact"
	URLFAQ        URLKind = "faq"
)

// Component is one application entry. Description holds the raw markup
// of the untranslated <description> element.
type Component struct {
	ID             string
	Type           string
	Origin         string
	Name           string
	Summary        string
	DeveloperName  string
	ProjectLicense string
	Description    string
	Categories     []string
	Keywords       []string
	MediaTypes     []string
	URLs           map[URLKind]string
	Icons          []Icon
	Screenshots    []Screenshot
}

// URL returns the URL of the given kind, or "".
func (c *Component) URL(kind URLKind) string {
	return c.URLs[kind]
}

// Icon is an <icon> element.
type Icon struct {
	Type   string
	Name   string
	Width  int
	Height int
}

// Screenshot groups the images of one logical screenshot, usually the
// source image plus a set of scaled thumbnails.
type Screenshot struct {
	Default bool
	Caption string
	Images  []Image
}

// Image is one rendition of a screenshot.
type Image struct {
	Type   string
	URL    string
	Width  int
	Height int
}

// URLs returns the candidate image URLs in document order, without duplicates.
func (s Screenshot) URLs() []string {
	seen := make(map[string]bool, len(s.Images))
	var urls []string
	for _, img := range s.Images {
		if img.URL == "" || seen[img.URL] {
			continue
		}
		seen[img.URL] = true
		urls = append(urls, img.URL)
	}
	return urls
}

// Raw XML shapes.

type xmlLocalized struct {
	Lang  string `xml:"lang,attr"`
	Value string `xml:",chardata"`
}

// xmlMarkup captures the children of a <description> as markup text,
// dropping translated child elements (those carrying xml:lang).
type xmlMarkup struct {
	Lang  string
	Inner string
}

func langOf(start xml.StartElement) string {
	for _, a := range start.Attr {
		if a.Name.Local == "lang" {
			return a.Value
		}
	}
	return ""
}

func (m *xmlMarkup) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	m.Lang = langOf(start)

	var buf strings.Builder
	enc := xml.NewEncoder(&buf)
	depth, skip := 0, 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if skip > 0 || langOf(t) != "" {
				skip++
				continue
			}
			depth++
			if err := enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: t.Name.Local}}); err != nil {
				return err
			}
		case xml.EndElement:
			if skip > 0 {
				skip--
				continue
			}
			if depth == 0 {
				if err := enc.Flush(); err != nil {
					return err
				}
				m.Inner = buf.String()
				return nil
			}
			depth--
			if err := enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: t.Name.Local}}); err != nil {
				return err
			}
		case xml.CharData:
			if skip == 0 {
				if err := enc.EncodeToken(t.Copy()); err != nil {
					return err
				}
			}
		}
	}
}

type xmlURL struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type xmlIcon struct {
	Type   string `xml:"type,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
	Value  string `xml:",chardata"`
}

type xmlImage struct {
	Type   string `xml:"type,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
	Value  string `xml:",chardata"`
}

type xmlScreenshot struct {
	Type     string         `xml:"type,attr"`
	Captions []xmlLocalized `xml:"caption"`
	Images   []xmlImage     `xml:"image"`
}

type xmlDeveloper struct {
	Names []xmlLocalized `xml:"name"`
}

type xmlComponent struct {
	Type           string          `xml:"type,attr"`
	ID             string          `xml:"id"`
	Names          []xmlLocalized  `xml:"name"`
	Summaries      []xmlLocalized  `xml:"summary"`
	DeveloperName  []xmlLocalized  `xml:"developer_name"`
	Developer      *xmlDeveloper   `xml:"developer"`
	ProjectLicense string          `xml:"project_license"`
	Descriptions   []xmlMarkup     `xml:"description"`
	Categories     []string        `xml:"categories>category"`
	Keywords       []xmlLocalized  `xml:"keywords>keyword"`
	MediaTypes     []string        `xml:"provides>mediatype"`
	URLs           []xmlURL        `xml:"url"`
	Icons          []xmlIcon       `xml:"icon"`
	Screenshots    []xmlScreenshot `xml:"screenshots>screenshot"`
}

// untranslated picks the value without an xml:lang attribute, falling back
// to the first value.
func untranslated(vals []xmlLocalized) string {
	for _, v := range vals {
		if v.Lang == "" {
			return strings.TrimSpace(v.Value)
		}
	}
	if len(vals) > 0 {
		return strings.TrimSpace(vals[0].Value)
	}
	return ""
}

func untranslatedMarkup(vals []xmlMarkup) string {
	for _, v := range vals {
		if v.Lang == "" {
			return strings.TrimSpace(v.Inner)
		}
	}
	if len(vals) > 0 {
		return strings.TrimSpace(vals[0].Inner)
	}
	return ""
}

func (x *xmlComponent) toComponent(origin string) *Component {
	c := &Component{
		ID:             strings.TrimSpace(x.ID),
		Type:           x.Type,
		Origin:         origin,
		Name:           untranslated(x.Names),
		Summary:        untranslated(x.Summaries),
		DeveloperName:  untranslated(x.DeveloperName),
		ProjectLicense: strings.TrimSpace(x.ProjectLicense),
		URLs:           make(map[URLKind]string),
	}
	if x.Developer != nil {
		if name := untranslated(x.Developer.Names); name != "" {
			c.DeveloperName = name
		}
	}
	c.Description = untranslatedMarkup(x.Descriptions)
	for _, cat := range x.Categories {
		if cat = strings.TrimSpace(cat); cat != "" {
			c.Categories = append(c.Categories, cat)
		}
	}
	for _, kw := range x.Keywords {
		if kw.Lang == "" {
			if v := strings.TrimSpace(kw.Value); v != "" {
				c.Keywords = append(c.Keywords, v)
			}
		}
	}
	for _, mt := range x.MediaTypes {
		if mt = strings.TrimSpace(mt); mt != "" {
			c.MediaTypes = append(c.MediaTypes, mt)
		}
	}
	for _, u := range x.URLs {
		kind := URLKind(u.Type)
		if _, ok := c.URLs[kind]; !ok {
			c.URLs[kind] = strings.TrimSpace(u.Value)
		}
	}
	for _, ic := range x.Icons {
		c.Icons = append(c.Icons, Icon{Type: ic.Type, Name: strings.TrimSpace(ic.Value), Width: ic.Width, Height: ic.Height})
	}
	for _, s := range x.Screenshots {
		shot := Screenshot{Default: s.Type == "default", Caption: untranslated(s.Captions)}
		for _, img := range s.Images {
			shot.Images = append(shot.Images, Image{
				Type:   img.Type,
				URL:    strings.TrimSpace(img.Value),
				Width:  img.Width,
				Height: img.Height,
			})
		}
		c.Screenshots = append(c.Screenshots, shot)
	}
	return c
}

// Parse reads an AppStream collection (<components>) or a single metainfo
// document (<component>). Gzip-compressed input is detected and unpacked.
func Parse(r io.Reader) ([]*Component, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()
		return parseXML(gz)
	}
	return parseXML(br)
}

func parseXML(r io.Reader) ([]*Component, error) {
	dec := xml.NewDecoder(r)
	var (
		origin     string
		components []*Component
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing AppStream XML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "components":
			for _, a := range start.Attr {
				if a.Name.Local == "origin" {
					origin = a.Value
				}
			}
		case "component":
			var x xmlComponent
			if err := dec.DecodeElement(&x, &start); err != nil {
				return nil, fmt.Errorf("parsing AppStream component: %w", err)
			}
			if c := x.toComponent(origin); c.ID != "" {
				components = append(components, c)
			}
		}
	}
	return components, nil
}
