package signals

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_Basics(t *testing.T) {
	page := `<!DOCTYPE html><html><head>
	<title>  Riga Dental Clinic  </title>
	<meta name="description" content=" Family dentistry in Riga since 1998. ">
	<meta name="robots" content="INDEX, FOLLOW">
	</head><body>
	<h1> Dental care for the whole family </h1>
	<h1>Second heading</h1>
	</body></html>`

	sig := Extract(page)

	assert.Equal(t, "Riga Dental Clinic", sig.Title)
	assert.Equal(t, "Family dentistry in Riga since 1998.", sig.MetaDescription)
	assert.Equal(t, "Dental care for the whole family", sig.H1)
	assert.False(t, sig.NoIndex)
	assert.Empty(t, sig.SchemaTypes)
}

func TestExtract_NoIndex(t *testing.T) {
	tests := []struct {
		name    string
		robots  string
		noindex bool
	}{
		{name: "lowercase", robots: "noindex, nofollow", noindex: true},
		{name: "uppercase", robots: "NOINDEX", noindex: true},
		{name: "index", robots: "index, follow", noindex: false},
		{name: "empty", robots: "", noindex: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := `<html><head><meta name="robots" content="` + tt.robots + `"></head><body></body></html>`
			assert.Equal(t, tt.noindex, Extract(page).NoIndex)
		})
	}
}

func TestExtract_SchemaTypes(t *testing.T) {
	page := `<html><head>
	<script type="application/ld+json">{"@context":"https://schema.org","@type":"MedicalClinic","name":"Clinic"}</script>
	<script type="application/ld+json">[{"@type":["Physician","Person"]},{"@type":"FAQPage"},"stray",{"name":"no type"}]</script>
	<script type="application/ld+json">{"@type":"MedicalClinic"}</script>
	<script type="application/ld+json">{ this is not json </script>
	<script type="application/ld+json">{"@type": 42}</script>
	<script type="text/javascript">var x = {"@type":"Ignored"};</script>
	</head><body></body></html>`

	sig := Extract(page)

	assert.Equal(t, []string{"MedicalClinic", "Physician", "Person", "FAQPage"}, sig.SchemaTypes)
	assert.True(t, sig.HasMedicalSchema)
	assert.True(t, sig.HasMedicalClinic)
	assert.True(t, sig.HasPhysician)
	assert.True(t, sig.HasFAQ)
}

func TestExtract_InvalidJSONLDOnly(t *testing.T) {
	page := `<html><head><script type="application/ld+json">{"@type": "MedicalClinic",</script></head><body></body></html>`

	var sig Signals
	assert.NotPanics(t, func() { sig = Extract(page) })
	assert.Empty(t, sig.SchemaTypes)
	assert.False(t, sig.HasMedicalSchema)
}

func TestExtract_MedicalDerivations(t *testing.T) {
	tests := []struct {
		name    string
		types   string
		medical bool
		clinic  bool
		doctor  bool
		faq     bool
	}{
		{name: "organization only", types: `"Organization"`, medical: false},
		{name: "medical organization", types: `"MedicalOrganization"`, medical: true, clinic: true},
		{name: "procedure", types: `"MedicalProcedure"`, medical: true},
		{name: "service", types: `"MedicalService"`, medical: true},
		{name: "physician", types: `"Physician"`, medical: true, doctor: true},
		{name: "faq", types: `"FAQPage"`, faq: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := `<script type="application/ld+json">{"@type":` + tt.types + `}</script>`
			sig := Extract(page)
			assert.Equal(t, tt.medical, sig.HasMedicalSchema, "HasMedicalSchema")
			assert.Equal(t, tt.clinic, sig.HasMedicalClinic, "HasMedicalClinic")
			assert.Equal(t, tt.doctor, sig.HasPhysician, "HasPhysician")
			assert.Equal(t, tt.faq, sig.HasFAQ, "HasFAQ")
		})
	}
}

func TestExtract_TextLength(t *testing.T) {
	page := `<html><head><title>Not counted</title></head><body>
	<p>Hello
	   world</p>
	<script>var hidden = "not visible";</script>
	<style>.x { color: red }</style>
	<p>ā</p>
	</body></html>`

	// "Hello world ā"
	assert.Equal(t, 13, Extract(page).TextLength)
}

func TestExtract_TextLengthNoBody(t *testing.T) {
	assert.Equal(t, 0, Extract("").TextLength)
}

func TestExtract_Contacts(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		phone bool
		email bool
	}{
		{name: "international phone", body: "Call +371 2612 3456", phone: true},
		{name: "formatted phone", body: "Tel: (067) 123-45.67", phone: true},
		{name: "too few digits", body: "Room 12-34-56", phone: false},
		{name: "email", body: "Write to Info@Clinic.LV", email: true},
		{name: "email in attribute", body: `<a href="mailto:hello@example.com">mail</a>`, email: true},
		{name: "nothing", body: "No contacts here", phone: false, email: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := Extract("<html><body>" + tt.body + "</body></html>")
			assert.Equal(t, tt.phone, sig.HasPhone, "HasPhone")
			assert.Equal(t, tt.email, sig.HasEmail, "HasEmail")
		})
	}
}

func TestExtract_MalformedHTML(t *testing.T) {
	page := `<html><head><title>Broken<body><h1>Unclosed <div><p>` + strings.Repeat("<b>", 50)

	assert.NotPanics(t, func() { _ = Extract(page) })
}
