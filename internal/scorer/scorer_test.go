package scorer

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docfill/internal/values"
)

func TestScoreCleanDocument(t *testing.T) {
	report := Score("Vessel MT PACIFIC HARMONY sails for Singapore.\nPrice: USD 1,250,000.")

	assert.Equal(t, 100, report.Score)
	assert.Equal(t, TierPerfect, report.Tier)
	assert.Zero(t, report.UnresolvedCount)
	assert.Zero(t, report.MalformedCount)
	assert.Empty(t, report.CategoryBreakdown)
}

func TestScoreIgnoresHandCompletedCategories(t *testing.T) {
	report := Score("Signed: {buyer_signature}\nSeal: [Company Seal]")

	assert.Equal(t, 100, report.Score)
	assert.Equal(t, TierPerfect, report.Tier)
	assert.Zero(t, report.UnresolvedCount)
	assert.Empty(t, report.CategoryBreakdown)
}

func TestScoreChargesUnresolvedTokens(t *testing.T) {
	report := Score("Vessel: {vessel_name} from [Port of Loading]")

	assert.Equal(t, 92, report.Score)
	assert.Equal(t, TierGood, report.Tier)
	assert.Equal(t, 2, report.UnresolvedCount)
	assert.Zero(t, report.MalformedCount)
	assert.Equal(t, map[values.Category]int{
		values.CategoryVessel:     1,
		values.CategoryCommercial: 1,
	}, report.CategoryBreakdown)
}

func TestScoreChargesMalformedRemnants(t *testing.T) {
	report := Score("Customer Name: { and also [broken")

	assert.Equal(t, 96, report.Score)
	assert.Zero(t, report.UnresolvedCount)
	assert.Equal(t, 2, report.MalformedCount)
}

func TestScoreMixedRemnants(t *testing.T) {
	report := Score("{vessel_name} [Seller Company] { [Company Seal]")

	// Two unresolved at 4 each, one fragment at 2, seal free.
	assert.Equal(t, 90, report.Score)
	assert.Equal(t, 2, report.UnresolvedCount)
	assert.Equal(t, 1, report.MalformedCount)
	assert.Equal(t, map[values.Category]int{
		values.CategoryVessel:  1,
		values.CategoryContact: 1,
	}, report.CategoryBreakdown)
}

func TestScoreFloorsAtZero(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		sb.WriteString("{unlisted_field_")
		sb.WriteByte(byte('a' + i%26))
		sb.WriteString("} ")
	}

	report := Score(sb.String())

	assert.Equal(t, 0, report.Score)
	assert.Equal(t, TierNeedsAttention, report.Tier)
	assert.Equal(t, 30, report.UnresolvedCount)
}

func TestScoreMonotoneInRemnantCount(t *testing.T) {
	clean := Score("All values filled.")
	one := Score("One left: {vessel_name}")
	two := Score("Two left: {vessel_name} and {flag_state}")
	twoAndFragment := Score("Two left: {vessel_name} and {flag_state} plus {")

	assert.Greater(t, clean.Score, one.Score)
	assert.Greater(t, one.Score, two.Score)
	assert.Greater(t, two.Score, twoAndFragment.Score)
}

func TestScoreIdempotent(t *testing.T) {
	text := "Vessel: {vessel_name}, seal: [Company Seal], stray: {"

	first := Score(text)
	second := Score(text)

	assert.Equal(t, first, second)
}

func TestScoreDocument(t *testing.T) {
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>Vessel: {vessel_name}</w:t></w:r></w:p></w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = io.WriteString(w, document)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	report, err := ScoreDocument(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 96, report.Score)
	assert.Equal(t, 1, report.UnresolvedCount)

	_, err = ScoreDocument([]byte("not a zip archive"))
	assert.Error(t, err)
}
