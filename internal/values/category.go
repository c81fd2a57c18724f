package values

import "strings"

// categoryByName maps well-known placeholder names from maritime trade
// documents to their semantic category. Names missing here fall through to
// keyword matching and finally to CategoryFreeform.
var categoryByName = map[string]Category{
	// Vessel identity
	"vessel_name":      CategoryVessel,
	"imo_number":       CategoryVessel,
	"vessel_imo":       CategoryVessel,
	"flag_state":       CategoryVessel,
	"vessel_owner":     CategoryVessel,
	"vessel_operator":  CategoryVessel,
	"vessel_type":      CategoryVessel,
	"beam":             CategoryVessel,
	"call_sign":        CategoryVessel,
	"cargo_capacity":   CategoryVessel,
	"cargo_tanks":      CategoryVessel,
	"class_society":    CategoryVessel,
	"deadweight":       CategoryVessel,
	"draft":            CategoryVessel,
	"engine_type":      CategoryVessel,
	"gross_tonnage":    CategoryVessel,
	"ism_manager":      CategoryVessel,
	"length_overall":   CategoryVessel,
	"net_tonnage":      CategoryVessel,
	"pumping_capacity": CategoryVessel,
	"registry_port":    CategoryVessel,
	"speed":            CategoryVessel,
	"year_built":       CategoryVessel,

	// Parties and people
	"buyer_company_name":        CategoryContact,
	"buyer_name":                CategoryContact,
	"buyer_address":             CategoryContact,
	"buyer_city_country":        CategoryContact,
	"buyer_email":               CategoryContact,
	"buyer_tel":                 CategoryContact,
	"buyer_fax":                 CategoryContact,
	"buyer_mobile":              CategoryContact,
	"buyer_office_tel":          CategoryContact,
	"buyer_position":            CategoryContact,
	"buyer_designation":         CategoryContact,
	"buyer_representative":      CategoryContact,
	"buyer_registration":        CategoryContact,
	"buyer_signatory_name":      CategoryContact,
	"buyer_signatory_position":  CategoryContact,
	"seller_company":            CategoryContact,
	"seller_address":            CategoryContact,
	"seller_email":              CategoryContact,
	"seller_tel":                CategoryContact,
	"seller_representative":     CategoryContact,
	"seller_signatory_name":     CategoryContact,
	"seller_signatory_position": CategoryContact,
	"company_name":              CategoryContact,
	"signatory_name":            CategoryContact,
	"authorized_person_name":    CategoryContact,

	// Banking
	"buyer_bank_name":         CategoryBanking,
	"buyer_bank_address":      CategoryBanking,
	"buyer_swift":             CategoryBanking,
	"buyer_account_no":        CategoryBanking,
	"seller_bank_name":        CategoryBanking,
	"seller_bank_address":     CategoryBanking,
	"seller_swift":            CategoryBanking,
	"seller_bank_account_no":  CategoryBanking,
	"confirming_bank_name":    CategoryBanking,
	"confirming_bank_address": CategoryBanking,
	"confirming_bank_swift":   CategoryBanking,
	"issuing_bank_name":       CategoryBanking,
	"issuing_bank_address":    CategoryBanking,
	"issuing_bank_swift":      CategoryBanking,
	"beneficiary_name":        CategoryBanking,
	"beneficiary_account":     CategoryBanking,

	// Commercial terms: prices, quantities, shipment
	"price":                CategoryCommercial,
	"total_amount":         CategoryCommercial,
	"total_amount_due":     CategoryCommercial,
	"unit_price2":          CategoryCommercial,
	"unit_price3":          CategoryCommercial,
	"amount2":              CategoryCommercial,
	"amount3":              CategoryCommercial,
	"amount_in_words":      CategoryCommercial,
	"total_product_value":  CategoryCommercial,
	"contract_value":       CategoryCommercial,
	"payment_terms":        CategoryCommercial,
	"transaction_currency": CategoryCommercial,
	"total_quantity":       CategoryCommercial,
	"quantity":             CategoryCommercial,
	"quantity2":            CategoryCommercial,
	"quantity3":            CategoryCommercial,
	"contract_quantity":    CategoryCommercial,
	"commodity":            CategoryCommercial,
	"product_description":  CategoryCommercial,
	"product_name":         CategoryCommercial,
	"specification":        CategoryCommercial,
	"quality":              CategoryCommercial,
	"port_loading":         CategoryCommercial,
	"port_discharge":       CategoryCommercial,
	"port_of_loading":      CategoryCommercial,
	"port_of_discharge":    CategoryCommercial,
	"delivery_port":        CategoryCommercial,
	"place_of_destination": CategoryCommercial,
	"origin":               CategoryCommercial,
	"country_of_origin":    CategoryCommercial,
	"shipping_terms":       CategoryCommercial,
	"terms_of_delivery":    CategoryCommercial,

	// Technical product specifications
	"api_gravity":      CategoryTechnical,
	"density":          CategoryTechnical,
	"specific_gravity": CategoryTechnical,
	"viscosity_40":     CategoryTechnical,
	"viscosity_100":    CategoryTechnical,
	"flash_point":      CategoryTechnical,
	"pour_point":       CategoryTechnical,
	"cloud_point":      CategoryTechnical,
	"cfpp":             CategoryTechnical,
	"sulfur":           CategoryTechnical,
	"ash_content":      CategoryTechnical,
	"water_content":    CategoryTechnical,
	"sediment":         CategoryTechnical,
	"cetane_number":    CategoryTechnical,
	"octane_number":    CategoryTechnical,
	"calorific_value":  CategoryTechnical,

	// Administrative: dates, document references
	"issue_date":            CategoryAdmin,
	"issued_date":           CategoryAdmin,
	"date":                  CategoryAdmin,
	"date_of_issue":         CategoryAdmin,
	"validity":              CategoryAdmin,
	"valid_until":           CategoryAdmin,
	"contract_duration":     CategoryAdmin,
	"document_number":       CategoryAdmin,
	"invoice_no":            CategoryAdmin,
	"proforma_invoice_no":   CategoryAdmin,
	"commercial_invoice_no": CategoryAdmin,
	"commercial_id":         CategoryAdmin,
	"pop_reference":         CategoryAdmin,
	"notary_number":         CategoryAdmin,

	// Left for human completion
	"buyer_signature":  CategorySignature,
	"seller_signature": CategorySignature,
	"company_seal":     CategorySignature,
	"company_stamp":    CategorySignature,
}

// keywordCategories is scanned in order; the first keyword contained in the
// name decides. Specific jargon comes before broad words so e.g.
// "buyer_swift" lands in banking, not contact.
var keywordCategories = []struct {
	keyword  string
	category Category
}{
	{"signature", CategorySignature},
	{"seal", CategorySignature},
	{"stamp", CategorySignature},
	{"swift", CategoryBanking},
	{"iban", CategoryBanking},
	{"bank", CategoryBanking},
	{"account", CategoryBanking},
	{"beneficiary", CategoryBanking},
	{"vessel", CategoryVessel},
	{"imo", CategoryVessel},
	{"tonnage", CategoryVessel},
	{"deadweight", CategoryVessel},
	{"flag", CategoryVessel},
	{"cetane", CategoryTechnical},
	{"octane", CategoryTechnical},
	{"viscosity", CategoryTechnical},
	{"density", CategoryTechnical},
	{"gravity", CategoryTechnical},
	{"sulfur", CategoryTechnical},
	{"date", CategoryAdmin},
	{"invoice", CategoryAdmin},
	{"document", CategoryAdmin},
	{"notary", CategoryAdmin},
	{"reference", CategoryAdmin},
	{"price", CategoryCommercial},
	{"amount", CategoryCommercial},
	{"total", CategoryCommercial},
	{"quantity", CategoryCommercial},
	{"currency", CategoryCommercial},
	{"payment", CategoryCommercial},
	{"port", CategoryCommercial},
	{"origin", CategoryCommercial},
	{"destination", CategoryCommercial},
	{"delivery", CategoryCommercial},
	{"shipment", CategoryCommercial},
	{"commodity", CategoryCommercial},
	{"product", CategoryCommercial},
	{"goods", CategoryCommercial},
	{"cargo", CategoryCommercial},
	{"buyer", CategoryContact},
	{"seller", CategoryContact},
	{"consignee", CategoryContact},
	{"company", CategoryContact},
	{"address", CategoryContact},
	{"email", CategoryContact},
	{"tel", CategoryContact},
	{"fax", CategoryContact},
	{"mobile", CategoryContact},
	{"contact", CategoryContact},
	{"signatory", CategoryContact},
	{"representative", CategoryContact},
	{"designation", CategoryContact},
	{"name", CategoryContact},
}

// Categorize assigns a semantic category to a normalized placeholder name.
// Exact matches win over keyword matches; unknown names are freeform.
func Categorize(name string) Category {
	if c, ok := categoryByName[name]; ok {
		return c
	}
	for _, kc := range keywordCategories {
		if strings.Contains(name, kc.keyword) {
			return kc.category
		}
	}
	return CategoryFreeform
}
