package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
)

const documentPath = "word/document.xml"

// nodeRe walks the markup of interest inside document.xml: text nodes,
// paragraph ends, line breaks and bare run tabs. Tab stop definitions carry
// attributes and are deliberately not matched.
var nodeRe = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>|</w:p>|<w:br[^>]*/>|<w:tab/>`)

// segment maps a range of the extracted plain text back to the byte range
// of the corresponding <w:t> content inside document.xml. Characters
// produced by paragraph ends, breaks and tabs have no segment.
type segment struct {
	textStart, textEnd int
	xmlStart, xmlEnd   int
}

// Document is an opened .docx archive. The extracted text is scanned for
// placeholders; edits expressed against that text are mapped back onto the
// XML so every other byte of the archive survives untouched.
type Document struct {
	reader *zip.Reader
	markup string
	text   string
	segs   []segment
}

// Open reads a .docx archive from memory.
func Open(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open docx archive: %w", err)
	}
	var markup string
	for _, f := range zr.File {
		if f.Name != documentPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", documentPath, err)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", documentPath, err)
		}
		markup = string(raw)
		break
	}
	if markup == "" {
		return nil, fmt.Errorf("docx archive has no %s", documentPath)
	}

	d := &Document{reader: zr, markup: markup}
	d.index()
	return d, nil
}

// index extracts the plain text and the text-to-markup segment table.
func (d *Document) index() {
	var sb strings.Builder
	for _, m := range nodeRe.FindAllStringSubmatchIndex(d.markup, -1) {
		if m[2] >= 0 {
			content := d.markup[m[2]:m[3]]
			d.segs = append(d.segs, segment{
				textStart: sb.Len(),
				textEnd:   sb.Len() + len(content),
				xmlStart:  m[2],
				xmlEnd:    m[3],
			})
			sb.WriteString(content)
			continue
		}
		switch {
		case strings.HasPrefix(d.markup[m[0]:m[1]], "<w:tab"):
			sb.WriteByte('\t')
		default: // paragraph end or line break
			sb.WriteByte('\n')
		}
	}
	d.text = sb.String()
}

// Text returns the document's plain text. Offsets into this string are the
// coordinate system for Edit.
func (d *Document) Text() string {
	return d.text
}

// Edit replaces the plain-text range [Start,End) with Text. An empty Text
// deletes the range.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Apply rewrites the archive with the given edits and returns the new
// .docx bytes. Edits must not overlap. The replacement lands in the markup
// node holding the start of the range; ranges spanning several nodes have
// their remainder deleted, which keeps the first node's formatting for the
// inserted value.
func (d *Document) Apply(edits []Edit) ([]byte, error) {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].End > sorted[i-1].Start {
			return nil, fmt.Errorf("overlapping edits at offsets %d and %d", sorted[i].Start, sorted[i-1].Start)
		}
	}

	markup := d.markup
	for _, e := range sorted {
		if e.Start < 0 || e.End > len(d.text) || e.Start > e.End {
			return nil, fmt.Errorf("edit range [%d,%d) outside document text", e.Start, e.End)
		}
		var err error
		markup, err = d.splice(markup, e)
		if err != nil {
			return nil, err
		}
	}
	return d.repack(markup)
}

// splice maps one edit onto the markup. Edits are applied in descending
// start order, so markup offsets taken from the segment table stay valid
// for every edit still pending.
func (d *Document) splice(markup string, e Edit) (string, error) {
	var touched []segment
	for _, s := range d.segs {
		if s.textEnd <= e.Start || s.textStart >= e.End {
			continue
		}
		touched = append(touched, s)
	}
	if len(touched) == 0 {
		if e.Start == e.End {
			return markup, nil
		}
		return "", fmt.Errorf("edit range [%d,%d) has no backing text node", e.Start, e.End)
	}

	type patch struct {
		xmlStart, xmlEnd int
		text             string
	}
	var patches []patch
	for i, s := range touched {
		from := max(e.Start, s.textStart)
		to := min(e.End, s.textEnd)
		p := patch{
			xmlStart: s.xmlStart + (from - s.textStart),
			xmlEnd:   s.xmlStart + (to - s.textStart),
		}
		if i == 0 {
			p.text = escapeText(e.Text)
		}
		patches = append(patches, p)
	}
	// Right to left within the edit keeps the earlier patch offsets valid.
	for i := len(patches) - 1; i >= 0; i-- {
		p := patches[i]
		markup = markup[:p.xmlStart] + p.text + markup[p.xmlEnd:]
	}
	return markup, nil
}

// repack writes a new archive, copying every entry verbatim except the
// rewritten document.xml.
func (d *Document) repack(markup string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range d.reader.File {
		if f.Name == documentPath {
			w, err := zw.Create(f.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to create %s: %w", f.Name, err)
			}
			if _, err := io.WriteString(w, markup); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", f.Name, err)
			}
			continue
		}
		if err := zw.Copy(f); err != nil {
			return nil, fmt.Errorf("failed to copy %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize docx archive: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtractText returns the plain text of a .docx given its raw bytes.
func ExtractText(data []byte) (string, error) {
	d, err := Open(data)
	if err != nil {
		return "", err
	}
	return d.Text(), nil
}

func escapeText(s string) string {
	if !strings.ContainsAny(s, "&<>") {
		return s
	}
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
