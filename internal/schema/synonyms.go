package schema

// Dictionary is the header-synonym data consulted by the field mapper. Exact
// keys are normalized (lowercase, collapsed whitespace) source header
// spellings. Substrings is ordered most-specific-first; iteration order is
// the tie-break, so it must stay fixed.
type Dictionary struct {
	Exact      map[string]string
	Substrings []SubstringRule
}

type SubstringRule struct {
	Substring string
	Target    string
}

// DefaultDictionary returns the curated synonym table for agency exports.
// Treated as data, not control flow: injected into the mapper so it can be
// versioned and tested independently.
func DefaultDictionary() Dictionary {
	return Dictionary{Exact: exactSynonyms, Substrings: substringRules}
}

var exactSynonyms = map[string]string{
	// Client identity
	"name":             "proposed_insured",
	"client name":      "proposed_insured",
	"client":           "proposed_insured",
	"insured":          "proposed_insured",
	"insured name":     "proposed_insured",
	"proposed insured": "proposed_insured",
	"full name":        "proposed_insured",
	"customer":         "proposed_insured",
	"customer name":    "proposed_insured",
	"applicant":        "proposed_insured",

	"dob":           "date_of_birth",
	"date of birth": "date_of_birth",
	"birth date":    "date_of_birth",
	"birthdate":     "date_of_birth",
	"birthday":      "date_of_birth",

	"age":    "age",
	"gender": "gender",
	"sex":    "gender",

	// Contact
	"phone":          "client_phone_number",
	"phone number":   "client_phone_number",
	"phone #":        "client_phone_number",
	"telephone":      "client_phone_number",
	"cell":           "client_phone_number",
	"cell phone":     "client_phone_number",
	"mobile":         "client_phone_number",
	"contact number": "client_phone_number",

	"email":         "client_email",
	"e-mail":        "client_email",
	"email address": "client_email",
	"client email":  "client_email",

	// Address
	"address":        "street_address",
	"street":         "street_address",
	"street address": "street_address",
	"address 1":      "street_address",
	"city":           "city",
	"town":           "city",
	"state":          "state",
	"st":             "state",
	"zip":            "zip_code",
	"zip code":       "zip_code",
	"zipcode":        "zip_code",
	"postal code":    "zip_code",

	// Policy
	"carrier":           "carrier",
	"insurance carrier": "carrier",
	"company":           "carrier",
	"insurance company": "carrier",
	"underwriter":       "carrier",

	"product":      "product",
	"product type": "product",
	"plan":         "product",
	"plan type":    "product",
	"policy type":  "product",
	"coverage":     "product",

	"policy number": "policy_number",
	"policy #":      "policy_number",
	"policy no":     "policy_number",
	"policy num":    "policy_number",
	"app number":    "policy_number",
	"app #":         "policy_number",

	"face amount":     "face_amount",
	"face value":      "face_amount",
	"coverage amount": "face_amount",
	"benefit amount":  "face_amount",
	"death benefit":   "face_amount",

	"premium":            "monthly_premium",
	"monthly premium":    "monthly_premium",
	"monthly":            "monthly_premium",
	"mo premium":         "monthly_premium",
	"premium amount":     "monthly_premium",
	"monthly payment":    "monthly_premium",
	"annual premium":     "annual_premium",
	"annualized":         "annual_premium",
	"ap":                 "annual_premium",
	"annualized premium": "annual_premium",

	"submit date":      "policy_submit_date",
	"submitted":        "policy_submit_date",
	"submitted date":   "policy_submit_date",
	"date submitted":   "policy_submit_date",
	"app date":         "policy_submit_date",
	"application date": "policy_submit_date",
	"sale date":        "policy_submit_date",

	"effective date": "effective_date",
	"issue date":     "effective_date",
	"issued":         "effective_date",
	"start date":     "effective_date",

	"draft date":       "draft_date",
	"first draft":      "draft_date",
	"first draft date": "draft_date",

	"status":        "policy_health",
	"policy status": "policy_health",
	"policy health": "policy_health",
	"app status":    "policy_health",

	"paid":           "paid_status",
	"paid status":    "paid_status",
	"payment status": "paid_status",

	// Commission
	"commission":           "commission_amount",
	"commission amount":    "commission_amount",
	"comp":                 "commission_amount",
	"commission %":         "commission_percentage",
	"commission percent":   "commission_percentage",
	"commission rate":      "commission_percentage",
	"comp %":               "commission_percentage",
	"commission paid date": "commission_paid_date",
	"comm paid date":       "commission_paid_date",
	"paid date":            "commission_paid_date",

	// Underwriting
	"tobacco":            "tobacco_use",
	"tobacco use":        "tobacco_use",
	"smoker":             "tobacco_use",
	"nicotine":           "tobacco_use",
	"currently insured":  "currently_insured",
	"existing insurance": "currently_insured",
	"height":             "height",
	"weight":             "weight",
	"doctor":             "doctors_name",
	"doctors name":       "doctors_name",
	"doctor's name":      "doctors_name",
	"physician":          "doctors_name",
	"health conditions":  "health_conditions",
	"conditions":         "health_conditions",
	"medical conditions": "health_conditions",
	"medications":        "medications",
	"meds":               "medications",
	"prescriptions":      "medications",
	"existing coverage":  "existing_coverage",
	"current coverage":   "existing_coverage",

	// Beneficiary
	"beneficiary":              "beneficiary_name",
	"beneficiary name":         "beneficiary_name",
	"beneficiary relationship": "beneficiary_relationship",
	"relationship":             "beneficiary_relationship",

	// Agent metadata
	"agent":         "writing_agent",
	"writing agent": "writing_agent",
	"agent name":    "writing_agent",
	"producer":      "writing_agent",
	"split":         "agent_split",
	"agent split":   "agent_split",
	"split %":       "agent_split",
	"lead source":   "lead_source",
	"source":        "lead_source",
	"lead type":     "lead_source",

	"notes":    "notes",
	"note":     "notes",
	"comments": "notes",
	"remarks":  "notes",
}

// Ordered most-specific-first; a generic probe like "name" must come after
// every compound probe that contains it.
var substringRules = []SubstringRule{
	{Substring: "date of birth", Target: "date_of_birth"},
	{Substring: "birth", Target: "date_of_birth"},
	{Substring: "dob", Target: "date_of_birth"},
	{Substring: "email", Target: "client_email"},
	{Substring: "e-mail", Target: "client_email"},
	{Substring: "phone", Target: "client_phone_number"},
	{Substring: "mobile", Target: "client_phone_number"},
	{Substring: "zip", Target: "zip_code"},
	{Substring: "postal", Target: "zip_code"},
	{Substring: "street", Target: "street_address"},
	{Substring: "address", Target: "street_address"},
	{Substring: "city", Target: "city"},
	{Substring: "carrier", Target: "carrier"},
	{Substring: "underwriter", Target: "carrier"},
	{Substring: "policy number", Target: "policy_number"},
	{Substring: "policy #", Target: "policy_number"},
	{Substring: "product", Target: "product"},
	{Substring: "plan", Target: "product"},
	{Substring: "face", Target: "face_amount"},
	{Substring: "death benefit", Target: "face_amount"},
	{Substring: "annual premium", Target: "annual_premium"},
	{Substring: "annualized", Target: "annual_premium"},
	{Substring: "monthly premium", Target: "monthly_premium"},
	{Substring: "premium", Target: "monthly_premium"},
	{Substring: "commission paid", Target: "commission_paid_date"},
	{Substring: "commission %", Target: "commission_percentage"},
	{Substring: "commission rate", Target: "commission_percentage"},
	{Substring: "commission", Target: "commission_amount"},
	{Substring: "submit", Target: "policy_submit_date"},
	{Substring: "effective", Target: "effective_date"},
	{Substring: "issue", Target: "effective_date"},
	{Substring: "draft date", Target: "draft_date"},
	{Substring: "tobacco", Target: "tobacco_use"},
	{Substring: "smoker", Target: "tobacco_use"},
	{Substring: "height", Target: "height"},
	{Substring: "weight", Target: "weight"},
	{Substring: "doctor", Target: "doctors_name"},
	{Substring: "physician", Target: "doctors_name"},
	{Substring: "medication", Target: "medications"},
	{Substring: "beneficiary relationship", Target: "beneficiary_relationship"},
	{Substring: "beneficiary", Target: "beneficiary_name"},
	{Substring: "agent", Target: "writing_agent"},
	{Substring: "producer", Target: "writing_agent"},
	{Substring: "lead", Target: "lead_source"},
	{Substring: "status", Target: "policy_health"},
	{Substring: "insured", Target: "proposed_insured"},
	{Substring: "client", Target: "proposed_insured"},
	{Substring: "name", Target: "proposed_insured"},
	{Substring: "note", Target: "notes"},
	{Substring: "comment", Target: "notes"},
	{Substring: "state", Target: "state"},
}
