package values

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticAlwaysReturnsValue(t *testing.T) {
	g := NewSyntheticGenerator()
	names := []string{
		"vessel_name", "imo_number", "flag_state", "deadweight",
		"buyer_company_name", "seller_address", "buyer_email",
		"buyer_swift", "issuing_bank_name", "seller_bank_account_no",
		"proforma_invoice_no", "total_amount", "payment_terms",
		"port_of_loading", "shipping_terms", "commodity",
		"cetane_number", "sulfur", "issue_date", "valid_until",
		"completely_unknown_field", "remarks",
	}
	for _, name := range names {
		v, err := g.GenerateValue(context.Background(), Request{
			DocumentID: "doc-1",
			Name:       name,
			Category:   Categorize(name),
		})
		require.NoError(t, err, "name %q", name)
		assert.NotEmpty(t, v, "name %q", name)
	}
}

func TestSyntheticDeterministicPerDocument(t *testing.T) {
	g := NewSyntheticGenerator()
	req := Request{DocumentID: "doc-42", Name: "vessel_name", Category: CategoryVessel}

	first, err := g.GenerateValue(context.Background(), req)
	require.NoError(t, err)
	second, err := g.GenerateValue(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSyntheticFreeformDefault(t *testing.T) {
	g := NewSyntheticGenerator()
	v, err := g.GenerateValue(context.Background(), Request{
		DocumentID: "doc-1",
		Name:       "special_remarks_field",
		Category:   CategoryFreeform,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sample Special Remarks Field", v)
}

func TestSyntheticDateFormats(t *testing.T) {
	g := NewSyntheticGenerator()
	for _, name := range []string{"issue_date", "valid_until", "shipment_date2"} {
		v, err := g.GenerateValue(context.Background(), Request{
			DocumentID: "doc-1",
			Name:       name,
			Category:   CategoryAdmin,
		})
		require.NoError(t, err)
		_, perr := time.Parse("2006-01-02", v)
		assert.NoError(t, perr, "name %q value %q", name, v)
	}
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{45000, "45,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, groupThousands(tt.in))
	}
}

func TestTitleWords(t *testing.T) {
	assert.Equal(t, "Buyer Company Name", titleWords("buyer_company_name"))
	assert.Equal(t, "Remarks", titleWords("remarks"))
}
