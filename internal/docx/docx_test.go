package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

// buildDocx assembles a minimal .docx archive. Each paragraph is given as a
// list of run texts so tests can split placeholders across runs.
func buildDocx(t *testing.T, paragraphs ...[]string) []byte {
	t.Helper()

	var body strings.Builder
	for _, runs := range paragraphs {
		body.WriteString("<w:p>")
		for i, text := range runs {
			if text == "\t" {
				body.WriteString("<w:r><w:tab/></w:r>")
				continue
			}
			if i == 0 {
				body.WriteString(`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">`)
			} else {
				body.WriteString(`<w:r><w:t xml:space="preserve">`)
			}
			body.WriteString(text)
			body.WriteString("</w:t></w:r>")
		}
		body.WriteString("</w:p>")
	}
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"[Content_Types].xml": contentTypesXML,
		"word/document.xml":   document,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readDocumentXML(t *testing.T, data []byte) string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		raw, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		return string(raw)
	}
	t.Fatal("archive has no word/document.xml")
	return ""
}

func TestOpenExtractsParagraphText(t *testing.T) {
	data := buildDocx(t,
		[]string{"Vessel: {vessel_name}"},
		[]string{"Port: [Port of Loading]"},
	)

	doc, err := Open(data)
	require.NoError(t, err)

	assert.Equal(t, "Vessel: {vessel_name}\nPort: [Port of Loading]\n", doc.Text())
}

func TestOpenRejectsArchiveWithoutDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = io.WriteString(w, "<w:styles/>")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Open(buf.Bytes())
	assert.ErrorContains(t, err, "word/document.xml")
}

func TestApplyReplacesWithinSingleRun(t *testing.T) {
	data := buildDocx(t, []string{"Vessel: {vessel_name} arrives"})

	doc, err := Open(data)
	require.NoError(t, err)

	text := doc.Text()
	start := strings.Index(text, "{vessel_name}")
	require.GreaterOrEqual(t, start, 0)

	out, err := doc.Apply([]Edit{{Start: start, End: start + len("{vessel_name}"), Text: "MT PACIFIC HARMONY"}})
	require.NoError(t, err)

	filled, err := Open(out)
	require.NoError(t, err)
	assert.Equal(t, "Vessel: MT PACIFIC HARMONY arrives\n", filled.Text())
	assert.NotContains(t, filled.Text(), "{")
	assert.NotContains(t, filled.Text(), "}")
}

func TestApplyReplacesAcrossRuns(t *testing.T) {
	data := buildDocx(t, []string{"{vessel", "_name} arrives"})

	doc, err := Open(data)
	require.NoError(t, err)
	require.Equal(t, "{vessel_name} arrives\n", doc.Text())

	out, err := doc.Apply([]Edit{{Start: 0, End: len("{vessel_name}"), Text: "MT STELLAR WAVE"}})
	require.NoError(t, err)

	filled, err := Open(out)
	require.NoError(t, err)
	assert.Equal(t, "MT STELLAR WAVE arrives\n", filled.Text())

	// Both runs survive so formatting attached to them is kept.
	markup := readDocumentXML(t, out)
	assert.Equal(t, 2, strings.Count(markup, "<w:t"))
	assert.Contains(t, markup, "<w:b/>")
}

func TestApplyDeletesRange(t *testing.T) {
	data := buildDocx(t, []string{"Customer Name: {"})

	doc, err := Open(data)
	require.NoError(t, err)

	start := strings.Index(doc.Text(), "{")
	out, err := doc.Apply([]Edit{{Start: start, End: start + 1, Text: ""}})
	require.NoError(t, err)

	filled, err := Open(out)
	require.NoError(t, err)
	assert.Equal(t, "Customer Name: \n", filled.Text())
}

func TestApplyAppliesEditsBackToFront(t *testing.T) {
	data := buildDocx(t, []string{"{a} and {b} and {c}"})

	doc, err := Open(data)
	require.NoError(t, err)
	text := doc.Text()

	edits := []Edit{
		{Start: strings.Index(text, "{a}"), End: strings.Index(text, "{a}") + 3, Text: "first"},
		{Start: strings.Index(text, "{b}"), End: strings.Index(text, "{b}") + 3, Text: "second"},
		{Start: strings.Index(text, "{c}"), End: strings.Index(text, "{c}") + 3, Text: "third"},
	}

	out, err := doc.Apply(edits)
	require.NoError(t, err)

	filled, err := Open(out)
	require.NoError(t, err)
	assert.Equal(t, "first and second and third\n", filled.Text())
}

func TestApplyEscapesMarkupCharacters(t *testing.T) {
	data := buildDocx(t, []string{"Seller: {seller_company}"})

	doc, err := Open(data)
	require.NoError(t, err)

	text := doc.Text()
	start := strings.Index(text, "{seller_company}")
	out, err := doc.Apply([]Edit{{Start: start, End: start + len("{seller_company}"), Text: "Smith & Sons <Intl>"}})
	require.NoError(t, err)

	markup := readDocumentXML(t, out)
	assert.Contains(t, markup, "Smith &amp; Sons &lt;Intl&gt;")
	assert.NotContains(t, markup, "Sons <Intl>")
}

func TestApplyRejectsOverlappingEdits(t *testing.T) {
	data := buildDocx(t, []string{"{vessel_name}"})

	doc, err := Open(data)
	require.NoError(t, err)

	_, err = doc.Apply([]Edit{
		{Start: 0, End: 10, Text: "x"},
		{Start: 5, End: 13, Text: "y"},
	})
	assert.ErrorContains(t, err, "overlapping")
}

func TestApplyMapsOffsetsAfterTab(t *testing.T) {
	data := buildDocx(t, []string{"IMO Number:", "\t", "{imo_number}"})

	doc, err := Open(data)
	require.NoError(t, err)

	text := doc.Text()
	require.Contains(t, text, "\t")
	start := strings.Index(text, "{imo_number}")
	require.GreaterOrEqual(t, start, 0)

	out, err := doc.Apply([]Edit{{Start: start, End: start + len("{imo_number}"), Text: "IMO9456782"}})
	require.NoError(t, err)

	filled, err := Open(out)
	require.NoError(t, err)
	assert.Contains(t, filled.Text(), "IMO Number:\tIMO9456782")
}

func TestApplyPreservesOtherArchiveEntries(t *testing.T) {
	data := buildDocx(t, []string{"{vessel_name}"})

	doc, err := Open(data)
	require.NoError(t, err)

	out, err := doc.Apply([]Edit{{Start: 0, End: len("{vessel_name}"), Text: "MV NORDIC STAR"}})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"[Content_Types].xml", "word/document.xml"}, names)

	for _, f := range zr.File {
		if f.Name != "[Content_Types].xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		raw, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, contentTypesXML, string(raw))
	}
}

func TestExtractText(t *testing.T) {
	data := buildDocx(t, []string{"Hello"}, []string{"World"})

	text, err := ExtractText(data)
	require.NoError(t, err)
	assert.Equal(t, "Hello\nWorld\n", text)
}
