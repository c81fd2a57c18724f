package scorer

import (
	"docfill/internal/docx"
	"docfill/internal/scanner"
	"docfill/internal/values"
)

const (
	unresolvedPenalty = 4
	malformedPenalty  = 2
)

// Tier labels a report for operators triaging output quality.
type Tier string

const (
	TierPerfect        Tier = "perfect"
	TierGood           Tier = "good"
	TierNeedsAttention Tier = "needs_attention"
)

// Report summarizes the placeholder remnants of a filled document.
// It is recomputed from the document bytes on every scoring pass.
type Report struct {
	Score             int                     `json:"score"`
	Tier              Tier                    `json:"tier"`
	UnresolvedCount   int                     `json:"unresolved_count"`
	MalformedCount    int                     `json:"malformed_count"`
	CategoryBreakdown map[values.Category]int `json:"category_breakdown"`
}

// Score re-scans text the way the token scanner does and charges a penalty
// for every remnant: 4 points per unresolved token, 2 per malformed
// fragment. Tokens in hand-completed categories such as signatures and
// seals are expected to remain and cost nothing. The score floors at 0 and
// is 100 exactly when no chargeable remnant exists.
func Score(text string) Report {
	named, cleanup, _ := scanner.Normalize(scanner.Scan(text))

	report := Report{
		Score:             100,
		CategoryBreakdown: make(map[values.Category]int),
	}
	for _, tok := range named {
		category := values.Categorize(tok.Name)
		if category.DesignedUnresolved() {
			continue
		}
		report.UnresolvedCount++
		report.CategoryBreakdown[category]++
		report.Score -= unresolvedPenalty
	}
	report.MalformedCount = len(cleanup)
	report.Score -= malformedPenalty * report.MalformedCount

	if report.Score < 0 {
		report.Score = 0
	}
	report.Tier = tierFor(report.Score)
	return report
}

// ScoreDocument extracts the plain text of a .docx and scores it.
func ScoreDocument(data []byte) (Report, error) {
	text, err := docx.ExtractText(data)
	if err != nil {
		return Report{}, err
	}
	return Score(text), nil
}

func tierFor(score int) Tier {
	switch {
	case score == 100:
		return TierPerfect
	case score >= 80:
		return TierGood
	default:
		return TierNeedsAttention
	}
}
