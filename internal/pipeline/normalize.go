package pipeline

import (
	"strconv"
	"strings"
	"time"

	"agentdesk/internal"
	"agentdesk/internal/config"
	"agentdesk/internal/schema"
	"agentdesk/internal/util"
)

// CommissionPolicy decides whether a derived commission amount should be
// written for a record that has none, returning the amount and true when it
// applies.
type CommissionPolicy func(record internal.ApplicationRecord) (float64, bool)

// AdvanceCommission derives commission from the monthly premium using the
// agency's advance convention: premium x advanced months x agent split.
// The multiplier is a business heuristic pending product-owner confirmation,
// so it stays an overridable policy rather than inline arithmetic.
func AdvanceCommission(advanceMonths, split float64) CommissionPolicy {
	return func(record internal.ApplicationRecord) (float64, bool) {
		if existing, ok := record["commission_amount"].(float64); ok && existing > 0 {
			return 0, false
		}
		premium, ok := record["monthly_premium"].(float64)
		if !ok || premium <= 0 {
			return 0, false
		}
		return premium * advanceMonths * split, true
	}
}

// Normalizer applies a finalized mapping to parsed rows, coercing each value
// by the target field's kind. Unparseable values are omitted, never an
// error; the validator decides whether their absence is fatal.
type Normalizer struct {
	agentID string
	policy  CommissionPolicy
}

func NewNormalizer(cfg config.Config) *Normalizer {
	return &Normalizer{
		agentID: cfg.AgentID,
		policy:  AdvanceCommission(cfg.CommissionAdvanceMonths, cfg.CommissionSplit),
	}
}

// WithPolicy replaces the commission derivation policy.
func (n *Normalizer) WithPolicy(policy CommissionPolicy) *Normalizer {
	n.policy = policy
	return n
}

// Normalize derives one fresh record per row. Records are never mutated
// after creation; a re-run re-derives from the raw table.
func (n *Normalizer) Normalize(table internal.RawTable, mapping internal.FieldMapping) []internal.NormalizedRow {
	now := time.Now().UTC().Format(time.RFC3339)
	out := make([]internal.NormalizedRow, 0, len(table.Rows))

	for i, row := range table.Rows {
		record := internal.ApplicationRecord{
			"agent_id":   n.agentID,
			"created_at": now,
			"updated_at": now,
		}

		for _, header := range table.Headers {
			target := mapping[header]
			if target == "" || target == schema.Unmapped {
				continue
			}
			raw, ok := row[header]
			if !ok || raw == nil {
				continue
			}
			if value, ok := coerceValue(raw, schema.KindOf(target)); ok {
				record[target] = value
			}
		}

		derived := false
		if n.policy != nil {
			if amount, ok := n.policy(record); ok {
				record["commission_amount"] = amount
				derived = true
			}
		}

		out = append(out, internal.NormalizedRow{Index: i, Record: record, DerivedCommission: derived})
	}

	return out
}

func coerceValue(raw any, kind schema.FieldKind) (any, bool) {
	switch kind {
	case schema.KindBool:
		return util.ParseBool(raw), true

	case schema.KindNumber:
		switch v := raw.(type) {
		case float64:
			return v, true
		case string:
			if parsed, ok := util.ParseMoney(v); ok {
				return parsed, true
			}
		}
		return nil, false

	case schema.KindDate:
		if v, ok := raw.(string); ok {
			if iso, ok := util.ParseDate(v); ok {
				return iso, true
			}
		}
		return nil, false

	default:
		switch v := raw.(type) {
		case string:
			trimmed := strings.TrimSpace(v)
			if trimmed == "" {
				return nil, false
			}
			return trimmed, true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		}
		return nil, false
	}
}
