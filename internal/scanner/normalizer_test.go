package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"{vessel_name}", "vessel_name"},
		{"{{vessel_name}}", "vessel_name"},
		{"[Port of Loading]", "port_of_loading"},
		{"[[Company Seal]]", "company_seal"},
		{"{Buyer's Bank}", "buyer_s_bank"},
		{"[ Flag  State ]", "flag_state"},
		{"{IMO-Number}", "imo_number"},
		{"{  }", ""},
		{"{}", ""},
		{"{---}", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.raw), "raw %q", tt.raw)
	}
}

func TestNormalizeSplitsCleanupFromNamed(t *testing.T) {
	text := "Contact {contact_name} ref {} sign here: {"

	named, cleanup, issues := Normalize(Scan(text))

	require.Len(t, named, 1)
	assert.Equal(t, "contact_name", named[0].Name)

	require.Len(t, cleanup, 2)
	assert.Equal(t, "{}", cleanup[0].Raw)
	assert.Equal(t, "{", cleanup[1].Raw)

	require.Len(t, issues, 2)
	assert.Equal(t, IssueEmptyToken, issues[0].Kind)
	assert.Equal(t, IssueMalformedRemoved, issues[1].Kind)
	assert.Equal(t, "{", issues[1].Excerpt)
}

func TestNormalizeMalformedNeverNamed(t *testing.T) {
	named, cleanup, issues := Normalize(Scan("start {] middle [Company"))

	assert.Empty(t, named)
	require.Len(t, cleanup, 2)
	for _, c := range cleanup {
		assert.Equal(t, KindMalformed, c.Kind)
		assert.Empty(t, c.Name)
	}
	require.Len(t, issues, 2)
	for _, iss := range issues {
		assert.Equal(t, IssueMalformedRemoved, iss.Kind)
	}
}

func TestNormalizeKeepsOffsetOrder(t *testing.T) {
	text := "{a} then {] then {b} then {"

	named, cleanup, _ := Normalize(Scan(text))

	require.Len(t, named, 2)
	require.Len(t, cleanup, 2)
	assert.Less(t, named[0].Start, named[1].Start)
	assert.Less(t, cleanup[0].Start, cleanup[1].Start)
}
