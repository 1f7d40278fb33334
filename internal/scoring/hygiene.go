// Package scoring turns page signals into the hygiene checklist and the
// AI recommendability score. Both are pure functions of signals.Signals.
package scoring

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/lucera/minicheck/internal/model"
	"github.com/lucera/minicheck/internal/signals"
)

const (
	minTitleLength = 18
	minMetaLength  = 50
	thinContent    = 600
	richContent    = 2000

	pointsOK   = 15
	pointsWarn = 8
	pointsBad  = 2

	maxHeadingDetail = 80
	maxTypesDetail   = 6
)

var genericHeading = regexp.MustCompile(`(?i)sākumlapa|home|welcome`)

// usefulTypes are schema types that tell a reader who is behind the page.
var usefulTypes = []string{"MedicalClinic", "Physician", "Organization", "LocalBusiness", "Service"}

// Hygiene evaluates the seven-item checklist and returns the score (0-100)
// together with the checks in display order.
func Hygiene(sig signals.Signals) (int, []model.Check) {
	checks := []model.Check{
		titleCheck(sig),
		metaCheck(sig),
		headingCheck(sig),
		indexingCheck(sig),
		schemaCheck(sig),
		contactsCheck(sig),
		contentCheck(sig),
	}

	score := 0
	for _, c := range checks {
		switch c.Status {
		case model.StatusOK:
			score += pointsOK
		case model.StatusWarn:
			score += pointsWarn
		default:
			score += pointsBad
		}
	}

	return min(score, 100), checks
}

func titleCheck(sig signals.Signals) model.Check {
	c := model.Check{Key: "title", Label: "Title", Status: model.StatusBad, Detail: "Not found"}
	if sig.Title == "" {
		return c
	}

	n := utf8.RuneCountInString(sig.Title)
	c.Detail = fmt.Sprintf("Found (%d chars)", n)
	c.Status = model.StatusOK
	if n < minTitleLength {
		c.Status = model.StatusWarn
	}
	return c
}

func metaCheck(sig signals.Signals) model.Check {
	c := model.Check{Key: "meta", Label: "Meta description", Status: model.StatusBad, Detail: "Not found"}
	if sig.MetaDescription == "" {
		return c
	}

	n := utf8.RuneCountInString(sig.MetaDescription)
	c.Detail = fmt.Sprintf("Found (%d chars)", n)
	c.Status = model.StatusOK
	if n < minMetaLength {
		c.Status = model.StatusWarn
	}
	return c
}

func headingCheck(sig signals.Signals) model.Check {
	c := model.Check{Key: "h1", Label: "H1 heading", Status: model.StatusBad, Detail: "Not found"}
	if sig.H1 == "" {
		return c
	}

	c.Detail = fmt.Sprintf("%q", truncate(sig.H1, maxHeadingDetail))
	c.Status = model.StatusOK
	if genericHeading.MatchString(sig.H1) {
		c.Status = model.StatusWarn
	}
	return c
}

func indexingCheck(sig signals.Signals) model.Check {
	if sig.NoIndex {
		return model.Check{
			Key:    "indexing",
			Label:  "Indexability",
			Status: model.StatusBad,
			Detail: "noindex found (search and AI visibility will suffer)",
		}
	}
	return model.Check{Key: "indexing", Label: "Indexability", Status: model.StatusOK, Detail: "OK (no noindex found)"}
}

func schemaCheck(sig signals.Signals) model.Check {
	c := model.Check{Key: "schema", Label: "Structured data (Schema.org)", Status: model.StatusBad, Detail: "No JSON-LD found"}
	if len(sig.SchemaTypes) == 0 {
		return c
	}

	shown := sig.SchemaTypes[:min(len(sig.SchemaTypes), maxTypesDetail)]
	c.Detail = "Types found: " + strings.Join(shown, ", ")
	if len(sig.SchemaTypes) > maxTypesDetail {
		c.Detail += "…"
	}

	c.Status = model.StatusWarn
	if slices.ContainsFunc(sig.SchemaTypes, func(t string) bool { return slices.Contains(usefulTypes, t) }) {
		c.Status = model.StatusOK
	}
	return c
}

func contactsCheck(sig signals.Signals) model.Check {
	c := model.Check{Key: "contacts", Label: "Contact signals", Status: model.StatusBad, Detail: "No phone or email found (heuristic)"}
	if !sig.HasPhone && !sig.HasEmail {
		return c
	}

	c.Status = model.StatusOK
	c.Detail = fmt.Sprintf("Phone: %s, email: %s", yesNo(sig.HasPhone), yesNo(sig.HasEmail))
	return c
}

func contentCheck(sig signals.Signals) model.Check {
	c := model.Check{
		Key:    "content",
		Label:  "Content amount (heuristic)",
		Status: model.StatusBad,
		Detail: fmt.Sprintf("~%d chars of text", sig.TextLength),
	}
	switch {
	case sig.TextLength > richContent:
		c.Status = model.StatusOK
	case sig.TextLength > thinContent:
		c.Status = model.StatusWarn
	}
	return c
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
