package scanner

import "strings"

// Normalize splits scanned tokens into resolvable tokens and cleanup
// candidates. Malformed tokens and tokens whose name is empty after
// canonicalization are never resolved: they are returned as cleanup spans to
// be deleted from the document, each with a matching issue record. Both
// returned slices keep the ascending offset order of the input.
func Normalize(tokens []Token) (named []Token, cleanup []Token, issues []Issue) {
	for _, t := range tokens {
		if t.Kind == KindMalformed {
			cleanup = append(cleanup, t)
			issues = append(issues, Issue{Kind: IssueMalformedRemoved, Excerpt: t.Raw})
			continue
		}
		name := NormalizeName(t.Raw)
		if name == "" {
			cleanup = append(cleanup, t)
			issues = append(issues, Issue{Kind: IssueEmptyToken, Excerpt: t.Raw})
			continue
		}
		t.Name = name
		named = append(named, t)
	}
	return named, cleanup, issues
}

// NormalizeName canonicalizes a raw token: delimiters stripped, lower-cased,
// every run of whitespace or punctuation collapsed to a single underscore.
// "{Vessel Name}" and "[vessel-name]" both normalize to "vessel_name".
func NormalizeName(raw string) string {
	s := strings.TrimLeft(raw, "{[")
	s = strings.TrimRight(s, "}]")
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	pendingSep := false
	for _, r := range s {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
