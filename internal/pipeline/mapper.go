package pipeline

import (
	"fmt"
	"strings"

	"agentdesk/internal"
	"agentdesk/internal/schema"
	"agentdesk/internal/util"
)

// Mapper proposes a target field for every source header. The synonym
// dictionary is injected so it can be versioned and tested on its own; the
// mapper itself holds no mutable state and its output depends only on the
// header text.
type Mapper struct {
	dict schema.Dictionary
}

func NewMapper(dict schema.Dictionary) *Mapper {
	return &Mapper{dict: dict}
}

// AutoMap produces a total mapping: one entry per header, each a known
// target field or schema.Unmapped. Priority per header: exact dictionary
// match, then ordered substring rules, then keyword fallbacks.
func (m *Mapper) AutoMap(headers []string) internal.FieldMapping {
	mapping := make(internal.FieldMapping, len(headers))
	for _, header := range headers {
		mapping[header] = m.mapHeader(header)
	}
	return mapping
}

func (m *Mapper) mapHeader(header string) string {
	norm := util.NormalizeHeader(header)
	if norm == "" {
		return schema.Unmapped
	}

	if target, ok := m.dict.Exact[norm]; ok {
		return target
	}

	for _, rule := range m.dict.Substrings {
		if strings.Contains(norm, rule.Substring) {
			return rule.Target
		}
	}

	return keywordFallback(norm)
}

// keywordFallback catches the most common headers the dictionary missed.
func keywordFallback(norm string) string {
	switch {
	case strings.Contains(norm, "phone"):
		return "client_phone_number"
	case strings.Contains(norm, "email"):
		return "client_email"
	case strings.Contains(norm, "annual") && strings.Contains(norm, "premium"):
		return "annual_premium"
	case strings.Contains(norm, "premium"):
		return "monthly_premium"
	case strings.Contains(norm, "policy") && strings.Contains(norm, "number"):
		return "policy_number"
	case strings.Contains(norm, "submit"):
		return "policy_submit_date"
	case strings.Contains(norm, "name"):
		return "proposed_insured"
	case strings.Contains(norm, "state"):
		return "state"
	default:
		return schema.Unmapped
	}
}

// Override sets one header's target without re-running auto-mapping for the
// rest. Target must be a vocabulary field or schema.Unmapped.
func Override(mapping internal.FieldMapping, header, target string) error {
	if _, ok := mapping[header]; !ok {
		return fmt.Errorf("unknown source header: %q", header)
	}
	if target != schema.Unmapped && !schema.IsTarget(target) {
		return fmt.Errorf("unknown target field: %q", target)
	}
	mapping[header] = target
	return nil
}

// ResetAll sets every header back to unmapped in one operation.
func ResetAll(mapping internal.FieldMapping) {
	for header := range mapping {
		mapping[header] = schema.Unmapped
	}
}
