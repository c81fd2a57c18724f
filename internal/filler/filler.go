package filler

import (
	"fmt"

	"docfill/internal/docx"
	"docfill/internal/resolver"
	"docfill/internal/scanner"
)

// Result holds the filled document together with the resolution record.
// It is immutable once produced.
type Result struct {
	DocumentBytes  []byte                   `json:"-"`
	ResolvedValues []resolver.ResolvedValue `json:"resolved_values"`
	Issues         []scanner.Issue          `json:"issues"`
}

// Fill substitutes every resolved token into the document and deletes the
// cleanup fragments. Values flagged as unresolved stay verbatim in place.
// Edits are expressed against the document's extracted text, so token
// offsets from the scanner apply directly.
func Fill(doc *docx.Document, resolved []resolver.ResolvedValue, cleanup []scanner.Token, issues []scanner.Issue) (*Result, error) {
	edits := make([]docx.Edit, 0, len(resolved)+len(cleanup))
	for _, rv := range resolved {
		if rv.Source == resolver.SourceUnresolved {
			continue
		}
		edits = append(edits, docx.Edit{Start: rv.Token.Start, End: rv.Token.End, Text: rv.Value})
	}
	for _, tok := range cleanup {
		edits = append(edits, docx.Edit{Start: tok.Start, End: tok.End})
	}

	out, err := doc.Apply(edits)
	if err != nil {
		return nil, fmt.Errorf("failed to substitute values: %w", err)
	}
	return &Result{
		DocumentBytes:  out,
		ResolvedValues: resolved,
		Issues:         issues,
	}, nil
}
