package values

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Curated pools for fields where generic fake data would look wrong in a
// trade document.
var (
	vesselNames    = []string{"Pacific Harmony", "Eastern Glory", "Atlantic Pioneer", "Ocean Sovereign", "Golden Meridian", "Coral Princess", "Northern Star", "Baltic Courier"}
	flagStates     = []string{"Panama", "Liberia", "Marshall Islands", "Malta", "Singapore", "Bahamas"}
	vesselTypes    = []string{"Crude Oil Tanker", "Product Tanker", "Chemical Tanker", "Bulk Carrier"}
	classSocieties = []string{"DNV", "Lloyd's Register", "ABS", "Bureau Veritas", "ClassNK"}
	engineTypes    = []string{"MAN B&W 6S60MC", "Wartsila RT-flex58T", "Sulzer 7RTA84T", "MAN B&W 7S80ME-C"}

	swiftCodes = []string{"CHASUS33", "BOFAUS3N", "CITIUS33", "DEUTUS33", "HSBCUS33", "JPMUS33", "SCBLUS33", "BNPAUS33"}
	bankNames  = []string{"Chase Bank", "Bank of America", "Citibank", "Deutsche Bank", "HSBC", "JPMorgan Chase", "Standard Chartered", "BNP Paribas"}

	loadingPorts    = []string{"Singapore", "Rotterdam", "Houston", "Dubai", "Shanghai"}
	dischargePorts  = []string{"Tokyo", "Hamburg", "New York", "Los Angeles", "Busan"}
	originCountries = []string{"Malaysia", "Indonesia", "Nigeria", "Saudi Arabia", "Kuwait"}
	incoterms       = []string{"FOB", "CIF", "CFR", "EXW"}

	commodities    = []string{"Crude Oil", "Diesel", "Gasoline", "Jet Fuel", "Bunker Fuel"}
	productNames   = []string{"Light Sweet Crude", "Heavy Crude", "Diesel Fuel", "Gasoline"}
	specifications = []string{"API 35-40", "API 25-30", "Sulfur < 0.5%", "Sulfur < 1.0%"}
	qualityGrades  = []string{"Premium Grade", "Standard Grade", "Commercial Grade"}
	paymentTerms   = []string{"30 days", "45 days", "60 days", "90 days"}

	buyerCompanies  = []string{"Tokyo Trading Co.", "Osaka Shipping Ltd.", "Yokohama Marine Inc.", "Kobe Commerce Corp."}
	sellerCompanies = []string{"Singapore Trading Ltd.", "Malaysia Oil Corp.", "Indonesia Marine Inc.", "Thailand Commerce Co."}
	buyerDistricts  = []string{"Chuo-dori", "Ginza", "Shibuya", "Shinjuku"}
	sellerDistricts = []string{"Marina Bay", "Orchard Road", "Raffles Place", "Clarke Quay"}
	buyerFirst      = []string{"Taro", "Yuki", "Hiroshi", "Akira"}
	buyerLast       = []string{"Yamada", "Sato", "Suzuki", "Takahashi"}
	buyerPositions  = []string{"Procurement Manager", "General Manager", "Director", "President"}
	sellerPositions = []string{"Managing Director", "Sales Manager", "Operations Manager", "CEO"}
)

// SyntheticGenerator is the deterministic fallback generator. It never
// fails: every request yields a plausible value derived only from the
// document ID and placeholder name, so repeated runs over the same document
// produce the same data.
type SyntheticGenerator struct{}

func NewSyntheticGenerator() *SyntheticGenerator {
	return &SyntheticGenerator{}
}

func (g *SyntheticGenerator) GenerateValue(_ context.Context, req Request) (string, error) {
	f := gofakeit.New(seed(req.DocumentID, req.Name))
	if v := exactValue(f, req.Name); v != "" {
		return v, nil
	}
	if v := familyValue(f, req.Name); v != "" {
		return v, nil
	}
	return categoryValue(f, req), nil
}

// seed folds the document ID and placeholder name into the faker seed; the
// same pair always generates the same value stream.
func seed(documentID, name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(documentID))
	h.Write([]byte{0})
	h.Write([]byte(name))
	return h.Sum64()
}

func exactValue(f *gofakeit.Faker, name string) string {
	year := time.Now().Year()
	switch name {
	case "vessel_name":
		return "MT " + f.RandomString(vesselNames)
	case "imo_number", "vessel_imo":
		return fmt.Sprintf("IMO%d", f.Number(9000000, 9999999))
	case "call_sign":
		return strings.ToUpper(f.LetterN(2)) + f.DigitN(4)
	case "flag_state":
		return f.RandomString(flagStates)
	case "vessel_type":
		return f.RandomString(vesselTypes)
	case "class_society":
		return f.RandomString(classSocieties)
	case "engine_type":
		return f.RandomString(engineTypes)
	case "vessel_owner", "vessel_operator", "ism_manager":
		return f.Company() + " Shipping"
	case "registry_port":
		return f.RandomString(loadingPorts)
	case "year_built":
		return fmt.Sprintf("%d", f.Number(1998, 2021))
	case "deadweight":
		return fmt.Sprintf("%s MT", groupThousands(f.Number(45000, 320000)))
	case "gross_tonnage", "net_tonnage":
		return groupThousands(f.Number(25000, 170000))
	case "length_overall":
		return fmt.Sprintf("%d.%d m", f.Number(180, 333), f.Number(0, 9))
	case "beam":
		return fmt.Sprintf("%d.%d m", f.Number(32, 60), f.Number(0, 9))
	case "draft":
		return fmt.Sprintf("%d.%d m", f.Number(11, 22), f.Number(0, 9))
	case "speed":
		return fmt.Sprintf("%d.%d knots", f.Number(12, 16), f.Number(0, 9))
	case "cargo_capacity", "pumping_capacity":
		return fmt.Sprintf("%s m3/h", groupThousands(f.Number(2000, 16000)))
	case "cargo_tanks":
		return fmt.Sprintf("%d", f.Number(8, 16))

	case "proforma_invoice_no":
		return fmt.Sprintf("PI-%d-%s", year, f.DigitN(4))
	case "invoice_no", "commercial_invoice_no":
		return fmt.Sprintf("INV-%d-%s", year, f.DigitN(4))
	case "commercial_id":
		return fmt.Sprintf("COM-%d-%s", year, f.DigitN(4))
	case "document_number", "pop_reference":
		return fmt.Sprintf("DOC-%d-%s", year, f.DigitN(4))
	case "notary_number":
		return "NOT-" + f.DigitN(4)

	case "contract_value":
		return "USD " + groupThousands(f.Number(1000000, 50000000))
	case "total_amount", "total_amount_due", "total_product_value":
		return "USD " + groupThousands(f.Number(1000000, 10000000))
	case "amount2", "amount3":
		return "USD " + groupThousands(f.Number(250000, 5000000))
	case "amount_in_words":
		return f.RandomString([]string{"Five", "Ten", "Fifteen", "Twenty"}) + " Million US Dollars"
	case "price", "unit_price2", "unit_price3":
		return fmt.Sprintf("USD %d.00", f.Number(50, 100))
	case "transaction_currency":
		return "USD"
	case "payment_terms":
		return f.RandomString(paymentTerms)
	case "validity":
		return fmt.Sprintf("%d days", f.Number(30, 90))
	case "contract_duration":
		return fmt.Sprintf("%d months", f.Number(6, 24))
	case "total_quantity":
		return fmt.Sprintf("%s MT", groupThousands(f.Number(10000, 100000)))
	case "quantity", "quantity2", "quantity3", "contract_quantity":
		return fmt.Sprintf("%s MT", groupThousands(f.Number(5000, 50000)))

	case "port_loading", "port_of_loading":
		return f.RandomString(loadingPorts)
	case "port_discharge", "port_of_discharge", "delivery_port":
		return f.RandomString(dischargePorts)
	case "place_of_destination":
		return f.RandomString(dischargePorts) + " Port"
	case "origin", "country_of_origin":
		return f.RandomString(originCountries)
	case "shipping_terms", "terms_of_delivery":
		return f.RandomString(incoterms)

	case "commodity":
		return f.RandomString(commodities)
	case "product_name", "product_description":
		return f.RandomString(productNames)
	case "specification":
		return f.RandomString(specifications)
	case "quality":
		return f.RandomString(qualityGrades)

	case "buyer_company_name":
		return f.RandomString(buyerCompanies)
	case "buyer_name", "buyer_representative", "buyer_signatory_name":
		return f.RandomString(buyerFirst) + " " + f.RandomString(buyerLast)
	case "buyer_address":
		return fmt.Sprintf("%d %s, Tokyo, Japan", f.Number(1, 999), f.RandomString(buyerDistricts))
	case "buyer_city_country":
		return "Tokyo, Japan"
	case "buyer_email":
		return fmt.Sprintf("buyer%d@tokyo-trading.com", f.Number(1, 999))
	case "buyer_tel", "buyer_office_tel", "buyer_fax":
		return fmt.Sprintf("+81-3-%s-%s", f.DigitN(4), f.DigitN(4))
	case "buyer_mobile":
		return fmt.Sprintf("+81-%d-%s-%s", f.Number(90, 99), f.DigitN(4), f.DigitN(4))
	case "buyer_position", "buyer_designation", "buyer_signatory_position":
		return f.RandomString(buyerPositions)
	case "buyer_registration":
		return "REG-" + f.DigitN(6)

	case "seller_company", "company_name":
		return f.RandomString(sellerCompanies)
	case "seller_address":
		return fmt.Sprintf("%d %s, Singapore", f.Number(1, 999), f.RandomString(sellerDistricts))
	case "seller_email":
		return fmt.Sprintf("sales%d@sg-trading.com", f.Number(1, 999))
	case "seller_tel":
		return fmt.Sprintf("+65-%s-%s", f.DigitN(4), f.DigitN(4))
	case "seller_representative", "seller_signatory_name", "signatory_name", "authorized_person_name":
		return f.Name()
	case "seller_signatory_position":
		return f.RandomString(sellerPositions)

	case "api_gravity":
		return fmt.Sprintf("%d.%d", f.Number(25, 42), f.Number(0, 9))
	case "density", "specific_gravity":
		return fmt.Sprintf("0.%d kg/L", f.Number(820, 960))
	case "viscosity_40", "viscosity_100":
		return fmt.Sprintf("%d.%d cSt", f.Number(2, 5), f.Number(0, 9))
	case "flash_point":
		return fmt.Sprintf("%d°C", f.Number(60, 80))
	case "pour_point", "cloud_point", "cfpp":
		return fmt.Sprintf("%d°C", f.Number(-10, 10))
	case "sulfur", "ash_content", "water_content", "sediment":
		return fmt.Sprintf("0.%03d%%", f.Number(1, 50))
	case "cetane_number":
		return fmt.Sprintf("%d.%d", f.Number(48, 56), f.Number(0, 9))
	case "octane_number":
		return fmt.Sprintf("%d", f.Number(91, 98))
	case "calorific_value":
		return fmt.Sprintf("%s kcal/kg", groupThousands(f.Number(9800, 11000)))
	}
	return ""
}

func familyValue(f *gofakeit.Faker, name string) string {
	year := time.Now().Year()
	switch {
	case strings.HasSuffix(name, "_swift"):
		return f.RandomString(swiftCodes)
	case strings.Contains(name, "account_no") || strings.Contains(name, "account_number") || strings.HasSuffix(name, "_account"):
		return f.DigitN(10)
	case strings.Contains(name, "bank_name") || strings.HasSuffix(name, "_bank"):
		return f.RandomString(bankNames)
	case strings.Contains(name, "bank_address"):
		return fmt.Sprintf("%d %s, %s", f.Number(100, 9999), f.Street(), f.City())
	case strings.Contains(name, "bank_officer") || strings.Contains(name, "bank_contact"):
		return f.Name()
	case strings.Contains(name, "issue") && strings.Contains(name, "date"):
		return time.Now().AddDate(0, 0, -f.Number(1, 30)).Format("2006-01-02")
	case name == "valid_until" || strings.Contains(name, "expiry") || strings.Contains(name, "shipment_date"):
		return time.Now().AddDate(0, 0, f.Number(30, 90)).Format("2006-01-02")
	case strings.Contains(name, "date"):
		return time.Now().Format("2006-01-02")
	case strings.Contains(name, "email"):
		return f.Email()
	case strings.Contains(name, "tel") || strings.Contains(name, "phone") || strings.Contains(name, "mobile") || strings.Contains(name, "fax"):
		return fmt.Sprintf("+%d-%s-%s", f.Number(1, 89), f.DigitN(3), f.DigitN(7))
	case strings.Contains(name, "address"):
		return fmt.Sprintf("%d %s, %s", f.Number(1, 999), f.Street(), f.City())
	case strings.Contains(name, "port"):
		return f.RandomString(dischargePorts)
	}
	return ""
}

func categoryValue(f *gofakeit.Faker, req Request) string {
	switch req.Category {
	case CategoryVessel:
		return "MT " + f.RandomString(vesselNames)
	case CategoryContact:
		return f.Name()
	case CategoryBanking:
		return f.RandomString(bankNames)
	case CategoryCommercial:
		return "USD " + groupThousands(f.Number(100000, 5000000))
	case CategoryTechnical:
		return fmt.Sprintf("%d.%d", f.Number(1, 99), f.Number(0, 9))
	case CategoryAdmin:
		return fmt.Sprintf("REF-%d-%s", time.Now().Year(), f.DigitN(4))
	default:
		return "Sample " + titleWords(req.Name)
	}
}

// titleWords turns "buyer_company_name" into "Buyer Company Name".
func titleWords(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// groupThousands renders 1234567 as "1,234,567".
func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
