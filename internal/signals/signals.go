// Package signals extracts the on-page signals a mini-check scores.
//
// Extraction is total: malformed HTML or JSON-LD never produces an error,
// it only yields empty or zero-valued signals.
package signals

import (
	"encoding/json"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Schema.org types that mark a page as describing a medical entity.
var medicalTypes = []string{
	"MedicalClinic",
	"MedicalOrganization",
	"Physician",
	"MedicalProcedure",
	"MedicalService",
}

var (
	// An optional "+", then at least nine digits which may be separated by
	// spaces, parentheses, dots or hyphens.
	phonePattern = regexp.MustCompile(`\+?\d(?:[\s().-]*\d){8,}`)
	emailPattern = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
)

// Signals is a read-only snapshot of one page.
type Signals struct {
	Title           string
	MetaDescription string
	H1              string
	NoIndex         bool

	// SchemaTypes holds every JSON-LD @type found, deduplicated, in
	// document order.
	SchemaTypes      []string
	HasMedicalSchema bool
	HasMedicalClinic bool
	HasPhysician     bool
	HasFAQ           bool

	TextLength int
	HasPhone   bool
	HasEmail   bool
}

// HasSchemaType reports whether t was among the page's JSON-LD types.
func (s Signals) HasSchemaType(t string) bool {
	return slices.Contains(s.SchemaTypes, t)
}

// Extract parses raw HTML into Signals.
func Extract(raw string) Signals {
	sig := Signals{
		SchemaTypes: []string{},
		HasPhone:    phonePattern.MatchString(raw),
		HasEmail:    emailPattern.MatchString(raw),
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return sig
	}

	sig.Title = strings.TrimSpace(doc.Find("title").First().Text())
	sig.MetaDescription = strings.TrimSpace(metaContent(doc, "description"))
	sig.H1 = strings.TrimSpace(doc.Find("h1").First().Text())
	sig.NoIndex = strings.Contains(strings.ToLower(metaContent(doc, "robots")), "noindex")

	sig.SchemaTypes = schemaTypes(doc)
	sig.HasMedicalSchema = slices.ContainsFunc(sig.SchemaTypes, func(t string) bool {
		return slices.Contains(medicalTypes, t)
	})
	sig.HasMedicalClinic = sig.HasSchemaType("MedicalClinic") || sig.HasSchemaType("MedicalOrganization")
	sig.HasPhysician = sig.HasSchemaType("Physician")
	sig.HasFAQ = sig.HasSchemaType("FAQPage")

	sig.TextLength = utf8.RuneCountInString(visibleText(doc.Find("body")))

	return sig
}

func metaContent(doc *goquery.Document, name string) string {
	content, _ := doc.Find(`meta[name="` + name + `"]`).First().Attr("content")
	return content
}

// schemaTypes collects @type values from every application/ld+json block.
// A block may hold one object or an array of objects, and @type may be a
// string or an array of strings. Blocks that fail to decode are skipped.
func schemaTypes(doc *goquery.Document) []string {
	types := []string{}
	add := func(t string) {
		if t != "" && !slices.Contains(types, t) {
			types = append(types, t)
		}
	}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var block any
		if err := json.Unmarshal([]byte(s.Text()), &block); err != nil {
			return
		}

		items, ok := block.([]any)
		if !ok {
			items = []any{block}
		}

		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			switch t := obj["@type"].(type) {
			case string:
				add(t)
			case []any:
				for _, v := range t {
					if str, ok := v.(string); ok {
						add(str)
					}
				}
			}
		}
	})

	return types
}

// visibleText returns the text of the selection with whitespace runs
// collapsed to single spaces. Script, style, noscript and template content
// is not rendered and therefore skipped.
func visibleText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		collectText(n, &b)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
