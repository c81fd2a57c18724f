package values

import "context"

type Category string

const (
	CategoryVessel     Category = "vessel_identity"
	CategoryContact    Category = "contact"
	CategoryBanking    Category = "banking"
	CategoryCommercial Category = "commercial_terms"
	CategoryTechnical  Category = "technical"
	CategoryAdmin      Category = "administrative"
	CategorySignature  Category = "signature"
	CategoryFreeform   Category = "freeform"
)

// DesignedUnresolved reports whether values of this category are left for
// human completion (wet signatures, company seals) instead of being
// generated.
func (c Category) DesignedUnresolved() bool {
	return c == CategorySignature
}

// Request describes a single placeholder value to generate. Known carries
// values already resolved for the same document so that cross-references
// (vessel name, party names, currency) stay consistent.
type Request struct {
	DocumentID string
	Name       string
	Category   Category
	Known      map[string]string
}

// Generator produces a value for one placeholder request.
type Generator interface {
	GenerateValue(ctx context.Context, req Request) (string, error)
}
