package pipeline

import (
	"math"
	"testing"

	"agentdesk/internal"
	"agentdesk/internal/config"
)

func testConfig() config.Config {
	cfg, _ := config.Load()
	cfg.AgentID = "agent-1"
	cfg.CommissionAdvanceMonths = 9
	cfg.CommissionSplit = 0.5
	return cfg
}

func TestNormalizeCoercion(t *testing.T) {
	table := internal.RawTable{
		Headers: []string{"Name", "Premium", "DOB", "Tobacco", "Ignore"},
		Rows: []map[string]any{
			{"Name": "John Smith", "Premium": 45.99, "DOB": "4/12/1958", "Tobacco": "Yes", "Ignore": "x"},
		},
	}
	mapping := internal.FieldMapping{
		"Name":    "proposed_insured",
		"Premium": "monthly_premium",
		"DOB":     "date_of_birth",
		"Tobacco": "tobacco_use",
		"Ignore":  "unmapped",
	}

	rows := NewNormalizer(testConfig()).Normalize(table, mapping)
	if len(rows) != 1 {
		t.Fatalf("rows=%d", len(rows))
	}
	record := rows[0].Record
	if record["proposed_insured"] != "John Smith" {
		t.Fatalf("name=%v", record["proposed_insured"])
	}
	if record["monthly_premium"] != 45.99 {
		t.Fatalf("premium=%v", record["monthly_premium"])
	}
	if record["date_of_birth"] != "1958-04-12" {
		t.Fatalf("dob=%v", record["date_of_birth"])
	}
	if record["tobacco_use"] != true {
		t.Fatalf("tobacco=%v", record["tobacco_use"])
	}
	if _, ok := record["x"]; ok {
		t.Fatal("unmapped value leaked")
	}
	if record["agent_id"] != "agent-1" {
		t.Fatalf("agent=%v", record["agent_id"])
	}
	if record["created_at"] == "" || record["created_at"] != record["updated_at"] {
		t.Fatalf("audit fields bad: %v / %v", record["created_at"], record["updated_at"])
	}
}

func TestNormalizeOmitsUnparseable(t *testing.T) {
	table := internal.RawTable{
		Headers: []string{"Premium", "DOB"},
		Rows: []map[string]any{
			{"Premium": "call me", "DOB": "unknown"},
		},
	}
	mapping := internal.FieldMapping{"Premium": "monthly_premium", "DOB": "date_of_birth"}

	rows := NewNormalizer(testConfig()).Normalize(table, mapping)
	record := rows[0].Record
	if _, ok := record["monthly_premium"]; ok {
		t.Fatalf("unparseable premium kept: %v", record["monthly_premium"])
	}
	if _, ok := record["date_of_birth"]; ok {
		t.Fatalf("unparseable date kept: %v", record["date_of_birth"])
	}
}

func TestDerivedCommission(t *testing.T) {
	table := internal.RawTable{
		Headers: []string{"Premium"},
		Rows:    []map[string]any{{"Premium": 100.0}},
	}
	mapping := internal.FieldMapping{"Premium": "monthly_premium"}

	rows := NewNormalizer(testConfig()).Normalize(table, mapping)
	if !rows[0].DerivedCommission {
		t.Fatal("commission not derived")
	}
	got, _ := rows[0].Record["commission_amount"].(float64)
	if math.Abs(got-450) > 1e-9 {
		t.Fatalf("commission=%v want=450", got)
	}
}

func TestExistingCommissionWins(t *testing.T) {
	table := internal.RawTable{
		Headers: []string{"Premium", "Commission"},
		Rows:    []map[string]any{{"Premium": 100.0, "Commission": 321.0}},
	}
	mapping := internal.FieldMapping{"Premium": "monthly_premium", "Commission": "commission_amount"}

	rows := NewNormalizer(testConfig()).Normalize(table, mapping)
	if rows[0].DerivedCommission {
		t.Fatal("derived over an explicit commission")
	}
	if rows[0].Record["commission_amount"] != 321.0 {
		t.Fatalf("commission=%v", rows[0].Record["commission_amount"])
	}
}

func TestNoCommissionWithoutPremium(t *testing.T) {
	table := internal.RawTable{
		Headers: []string{"Name"},
		Rows:    []map[string]any{{"Name": "John"}},
	}
	mapping := internal.FieldMapping{"Name": "proposed_insured"}

	rows := NewNormalizer(testConfig()).Normalize(table, mapping)
	if _, ok := rows[0].Record["commission_amount"]; ok {
		t.Fatal("commission derived without premium")
	}
}

func TestWithPolicyOverride(t *testing.T) {
	table := internal.RawTable{
		Headers: []string{"Premium"},
		Rows:    []map[string]any{{"Premium": 100.0}},
	}
	mapping := internal.FieldMapping{"Premium": "monthly_premium"}

	flat := func(record internal.ApplicationRecord) (float64, bool) { return 42, true }
	rows := NewNormalizer(testConfig()).WithPolicy(flat).Normalize(table, mapping)
	if rows[0].Record["commission_amount"] != 42.0 {
		t.Fatalf("commission=%v", rows[0].Record["commission_amount"])
	}
}
