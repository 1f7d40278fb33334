package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucera/minicheck/internal/model"
	"github.com/lucera/minicheck/internal/signals"
)

func completeSignals() signals.Signals {
	return signals.Signals{
		Title:            "Riga Family Dental Clinic",
		MetaDescription:  "Family dentistry, implants and hygiene in central Riga. Book online today.",
		H1:               "Dental care for every age",
		SchemaTypes:      []string{"MedicalClinic", "Physician", "FAQPage"},
		HasMedicalSchema: true,
		HasMedicalClinic: true,
		HasPhysician:     true,
		HasFAQ:           true,
		TextLength:       3000,
		HasPhone:         true,
	}
}

func statuses(checks []model.Check) map[string]model.Status {
	m := make(map[string]model.Status, len(checks))
	for _, c := range checks {
		m[c.Key] = c.Status
	}
	return m
}

func TestHygiene_AllPositive(t *testing.T) {
	score, checks := Hygiene(completeSignals())

	assert.Equal(t, 100, score)
	require.Len(t, checks, 7)
	for _, c := range checks {
		assert.Equal(t, model.StatusOK, c.Status, "check %s", c.Key)
	}
}

func TestHygiene_CheckOrder(t *testing.T) {
	_, checks := Hygiene(signals.Signals{})

	keys := make([]string, 0, len(checks))
	for _, c := range checks {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"title", "meta", "h1", "indexing", "schema", "contacts", "content"}, keys)
}

func TestHygiene_EmptyPage(t *testing.T) {
	score, checks := Hygiene(signals.Signals{})

	// indexing is the only ok check: 15 + 6*2
	assert.Equal(t, 27, score)
	assert.Equal(t, map[string]model.Status{
		"title":    model.StatusBad,
		"meta":     model.StatusBad,
		"h1":       model.StatusBad,
		"indexing": model.StatusOK,
		"schema":   model.StatusBad,
		"contacts": model.StatusBad,
		"content":  model.StatusBad,
	}, statuses(checks))
}

func TestHygiene_Thresholds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*signals.Signals)
		key    string
		want   model.Status
	}{
		{name: "short title", mutate: func(s *signals.Signals) { s.Title = strings.Repeat("a", 17) }, key: "title", want: model.StatusWarn},
		{name: "title at threshold", mutate: func(s *signals.Signals) { s.Title = strings.Repeat("a", 18) }, key: "title", want: model.StatusOK},
		{name: "short meta", mutate: func(s *signals.Signals) { s.MetaDescription = strings.Repeat("m", 49) }, key: "meta", want: model.StatusWarn},
		{name: "meta at threshold", mutate: func(s *signals.Signals) { s.MetaDescription = strings.Repeat("m", 50) }, key: "meta", want: model.StatusOK},
		{name: "generic h1 home", mutate: func(s *signals.Signals) { s.H1 = "Home" }, key: "h1", want: model.StatusWarn},
		{name: "generic h1 welcome", mutate: func(s *signals.Signals) { s.H1 = "WELCOME to our clinic" }, key: "h1", want: model.StatusWarn},
		{name: "generic h1 latvian", mutate: func(s *signals.Signals) { s.H1 = "Sākumlapa" }, key: "h1", want: model.StatusWarn},
		{name: "noindex", mutate: func(s *signals.Signals) { s.NoIndex = true }, key: "indexing", want: model.StatusBad},
		{name: "schema without useful types", mutate: func(s *signals.Signals) { s.SchemaTypes = []string{"WebSite", "BreadcrumbList"} }, key: "schema", want: model.StatusWarn},
		{name: "schema with organization", mutate: func(s *signals.Signals) { s.SchemaTypes = []string{"Organization"} }, key: "schema", want: model.StatusOK},
		{name: "no schema", mutate: func(s *signals.Signals) { s.SchemaTypes = nil }, key: "schema", want: model.StatusBad},
		{name: "email only", mutate: func(s *signals.Signals) { s.HasPhone, s.HasEmail = false, true }, key: "contacts", want: model.StatusOK},
		{name: "no contacts", mutate: func(s *signals.Signals) { s.HasPhone, s.HasEmail = false, false }, key: "contacts", want: model.StatusBad},
		{name: "content at 600", mutate: func(s *signals.Signals) { s.TextLength = 600 }, key: "content", want: model.StatusBad},
		{name: "content at 601", mutate: func(s *signals.Signals) { s.TextLength = 601 }, key: "content", want: model.StatusWarn},
		{name: "content at 2000", mutate: func(s *signals.Signals) { s.TextLength = 2000 }, key: "content", want: model.StatusWarn},
		{name: "content at 2001", mutate: func(s *signals.Signals) { s.TextLength = 2001 }, key: "content", want: model.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := completeSignals()
			tt.mutate(&sig)

			_, checks := Hygiene(sig)
			assert.Equal(t, tt.want, statuses(checks)[tt.key])
		})
	}
}

func TestHygiene_Details(t *testing.T) {
	sig := completeSignals()
	sig.H1 = strings.Repeat("x", 90)
	sig.SchemaTypes = []string{"A", "B", "C", "D", "E", "F", "G"}
	sig.HasEmail = false

	_, checks := Hygiene(sig)
	byKey := make(map[string]model.Check)
	for _, c := range checks {
		byKey[c.Key] = c
	}

	assert.Equal(t, `"`+strings.Repeat("x", 80)+`…"`, byKey["h1"].Detail)
	assert.Equal(t, "Types found: A, B, C, D, E, F…", byKey["schema"].Detail)
	assert.Equal(t, "Phone: yes, email: no", byKey["contacts"].Detail)
	assert.Equal(t, "~3000 chars of text", byKey["content"].Detail)
}

func TestRecommendability_AllPositive(t *testing.T) {
	res := Recommendability(completeSignals())

	assert.Equal(t, 100, res.Score)
	assert.Equal(t, model.Pillars{Access: 100, EntitySchema: 100, TrustSignals: 100, Answerability: 100}, res.Pillars)
	assert.Nil(t, res.Cap)
	assert.Empty(t, res.CapReasons)
	assert.NotNil(t, res.CapReasons)
}

func TestRecommendability_NoIndexNoSchema(t *testing.T) {
	sig := completeSignals()
	sig.NoIndex = true
	sig.SchemaTypes = nil
	sig.HasMedicalSchema = false
	sig.HasMedicalClinic = false
	sig.HasPhysician = false
	sig.HasFAQ = false

	_, checks := Hygiene(sig)
	st := statuses(checks)
	assert.Equal(t, model.StatusBad, st["indexing"])
	assert.Equal(t, model.StatusBad, st["schema"])

	res := Recommendability(sig)
	require.NotNil(t, res.Cap)
	assert.Equal(t, 75, *res.Cap)
	assert.LessOrEqual(t, res.Score, 75)
	assert.Len(t, res.CapReasons, 1)
	assert.Contains(t, res.CapReasons[0], "missing medical schema entities")
}

func TestRecommendability_PillarsClamp(t *testing.T) {
	// entitySchema loses 60+50+30+20 and must not go below zero.
	res := Recommendability(signals.Signals{})

	assert.Equal(t, model.Pillars{Access: 80, EntitySchema: 0, TrustSignals: 40, Answerability: 50}, res.Pillars)
	// 0.2*80 + 0.35*0 + 0.25*40 + 0.2*50 = 36
	assert.Equal(t, 36, res.Score)
	require.NotNil(t, res.Cap)
}

func TestRecommendability_CapReportedBelowLimit(t *testing.T) {
	sig := completeSignals()
	sig.SchemaTypes = []string{"LocalBusiness", "FAQPage"}
	sig.HasMedicalSchema = false
	sig.HasMedicalClinic = false
	sig.HasPhysician = false

	res := Recommendability(sig)

	// 0.2*100 + 0.35*0 + 0.25*70 + 0.2*100 = 57.5, already under the cap
	assert.Equal(t, 58, res.Score)
	require.NotNil(t, res.Cap)
	assert.Equal(t, 75, *res.Cap)
}

func TestRecommendability_PhysicianOnly(t *testing.T) {
	sig := completeSignals()
	sig.SchemaTypes = []string{"Physician"}
	sig.HasMedicalClinic = false
	sig.HasFAQ = false
	sig.TextLength = 1000

	res := Recommendability(sig)

	assert.Equal(t, model.Pillars{Access: 100, EntitySchema: 70, TrustSignals: 70, Answerability: 50}, res.Pillars)
	// 20 + 24.5 + 17.5 + 10 = 72
	assert.Equal(t, 72, res.Score)
	assert.Nil(t, res.Cap)
}

func TestScoring_Deterministic(t *testing.T) {
	sig := completeSignals()
	sig.HasFAQ = false
	sig.TextLength = 900

	s1, c1 := Hygiene(sig)
	s2, c2 := Hygiene(sig)
	assert.Equal(t, s1, s2)
	assert.Equal(t, c1, c2)
	assert.Equal(t, Recommendability(sig), Recommendability(sig))
}
