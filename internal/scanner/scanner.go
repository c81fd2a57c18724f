package scanner

import (
	"regexp"
	"sort"
)

// maxTokenSpan bounds how far past an opening delimiter a closing delimiter
// may appear. A longer match is document prose, not a placeholder.
const maxTokenSpan = 80

var (
	curlyDoubleRe  = regexp.MustCompile(`\{\{([^{}\n]*)\}\}`)
	squareDoubleRe = regexp.MustCompile(`\[\[([^\[\]\n]*)\]\]`)
	curlyRe        = regexp.MustCompile(`\{([^{}\n]*)\}`)
	squareRe       = regexp.MustCompile(`\[([^\[\]\n]*)\]`)

	// Open delimiter closed by the wrong counterpart, e.g. "{]" or "[co}".
	mismatchRe = regexp.MustCompile(`\{[^{}\[\]\n]*\]|\[[^{}\[\]\n]*\}`)

	// Open delimiter with at most one trailing word, e.g. "{", "[Company".
	danglingRe = regexp.MustCompile(`[{\[][A-Za-z0-9_]*`)
)

// Scan finds every placeholder occurrence in text: brace tokens, bracket
// tokens, and malformed fragments (mismatched pairs and dangling opens).
// When spans overlap, the outer token wins and inner candidates are
// suppressed. The result is ordered by ascending start offset; this order
// fixes the substitution order downstream.
func Scan(text string) []Token {
	var cands []Token
	collect := func(re *regexp.Regexp, kind Kind) {
		for _, m := range re.FindAllStringIndex(text, -1) {
			if kind != KindMalformed && m[1]-m[0] > maxTokenSpan {
				// Too long to be a placeholder; the dangling pass
				// will pick up the stranded open delimiter.
				continue
			}
			cands = append(cands, Token{
				Raw:   text[m[0]:m[1]],
				Start: m[0],
				End:   m[1],
				Kind:  kind,
			})
		}
	}
	collect(curlyDoubleRe, KindCurly)
	collect(squareDoubleRe, KindSquare)
	collect(curlyRe, KindCurly)
	collect(squareRe, KindSquare)
	collect(mismatchRe, KindMalformed)
	collect(danglingRe, KindMalformed)

	// Earlier start first; at the same start the longer span wins, and a
	// well-formed token beats a malformed one of equal span.
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Start != cands[j].Start {
			return cands[i].Start < cands[j].Start
		}
		if cands[i].End != cands[j].End {
			return cands[i].End > cands[j].End
		}
		return cands[i].Kind != KindMalformed && cands[j].Kind == KindMalformed
	})

	var tokens []Token
	lastEnd := -1
	for _, c := range cands {
		if c.Start < lastEnd {
			continue
		}
		tokens = append(tokens, c)
		lastEnd = c.End
	}
	return tokens
}
