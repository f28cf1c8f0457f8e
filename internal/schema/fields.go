package schema

// FieldKind selects the coercion applied to a mapped cell value.
type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
	KindDate
	KindBool
)

// Unmapped is the sentinel target for source headers with no destination.
const Unmapped = "unmapped"

type Field struct {
	Name string
	Kind FieldKind
}

// Fields is the closed target-field vocabulary of the agency application
// schema, in display order. Adding an importable field means extending this
// list and the synonym dictionary together.
var Fields = []Field{
	{Name: "proposed_insured", Kind: KindText},
	{Name: "date_of_birth", Kind: KindDate},
	{Name: "age", Kind: KindNumber},
	{Name: "gender", Kind: KindText},
	{Name: "client_phone_number", Kind: KindText},
	{Name: "client_email", Kind: KindText},
	{Name: "street_address", Kind: KindText},
	{Name: "city", Kind: KindText},
	{Name: "state", Kind: KindText},
	{Name: "zip_code", Kind: KindText},
	{Name: "carrier", Kind: KindText},
	{Name: "product", Kind: KindText},
	{Name: "policy_number", Kind: KindText},
	{Name: "face_amount", Kind: KindNumber},
	{Name: "monthly_premium", Kind: KindNumber},
	{Name: "annual_premium", Kind: KindNumber},
	{Name: "policy_submit_date", Kind: KindDate},
	{Name: "effective_date", Kind: KindDate},
	{Name: "draft_date", Kind: KindDate},
	{Name: "policy_health", Kind: KindText},
	{Name: "paid_status", Kind: KindText},
	{Name: "commission_amount", Kind: KindNumber},
	{Name: "commission_percentage", Kind: KindNumber},
	{Name: "commission_paid_date", Kind: KindDate},
	{Name: "tobacco_use", Kind: KindBool},
	{Name: "currently_insured", Kind: KindBool},
	{Name: "height", Kind: KindNumber},
	{Name: "weight", Kind: KindNumber},
	{Name: "doctors_name", Kind: KindText},
	{Name: "health_conditions", Kind: KindText},
	{Name: "medications", Kind: KindText},
	{Name: "existing_coverage", Kind: KindText},
	{Name: "beneficiary_name", Kind: KindText},
	{Name: "beneficiary_relationship", Kind: KindText},
	{Name: "writing_agent", Kind: KindText},
	{Name: "agent_split", Kind: KindNumber},
	{Name: "lead_source", Kind: KindText},
	{Name: "notes", Kind: KindText},
}

var kindByName = func() map[string]FieldKind {
	out := make(map[string]FieldKind, len(Fields))
	for _, f := range Fields {
		out[f.Name] = f.Kind
	}
	return out
}()

// KindOf returns the coercion kind for a target field. Unknown names coerce
// as text.
func KindOf(name string) FieldKind {
	if kind, ok := kindByName[name]; ok {
		return kind
	}
	return KindText
}

// IsTarget reports whether name is in the target vocabulary.
func IsTarget(name string) bool {
	_, ok := kindByName[name]
	return ok
}

// DefaultRequiredFields is the minimum contract an imported application must
// satisfy. The authoritative set is configuration; this is the fallback.
var DefaultRequiredFields = []string{
	"proposed_insured",
	"client_phone_number",
	"carrier",
	"product",
}

// RequiredFieldLabels maps required field names to the wording used in
// per-row validation messages.
var RequiredFieldLabels = map[string]string{
	"proposed_insured":    "client name",
	"client_phone_number": "phone number",
	"carrier":             "carrier",
	"product":             "product",
}

func LabelFor(field string) string {
	if label, ok := RequiredFieldLabels[field]; ok {
		return label
	}
	return field
}
