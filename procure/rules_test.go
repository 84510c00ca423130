package procure_test

import (
	"context"
	"testing"

	"github.com/warp/procurement-engine/procure"
	"github.com/warp/procurement-engine/procure/store"
)

func newRuleService() (*procure.RuleService, *store.MemoryLedger) {
	ledger := store.NewMemoryLedger()
	return procure.NewRuleService(store.NewMemory(), ledger), ledger
}

// =============================================================================
// SET RULES
// =============================================================================

func TestSetRules_StoresAndAudits(t *testing.T) {
	// GIVEN: A fresh store
	// WHEN: Setting rules for a site
	// THEN: The record is stored, trimmed, and a rules_stored entry appended

	svc, ledger := newRuleService()
	ctx := context.Background()

	rule, err := svc.SetRules(ctx, "  Delhi-Site-7  ", procure.Rupees(38000), []string{" BadRock Cements ", ""})
	if err != nil {
		t.Fatalf("SetRules failed: %v", err)
	}
	if rule.SiteID != "Delhi-Site-7" {
		t.Errorf("site id = %q, want trimmed Delhi-Site-7", rule.SiteID)
	}
	if len(rule.Blacklist) != 1 || rule.Blacklist[0] != "BadRock Cements" {
		t.Errorf("blacklist = %v, want trimmed [BadRock Cements]", rule.Blacklist)
	}

	got, err := svc.GetRules(ctx, "Delhi-Site-7")
	if err != nil {
		t.Fatalf("GetRules failed: %v", err)
	}
	if got.SpendCeiling.Int64() != 38000 {
		t.Errorf("ceiling = %d, want 38000", got.SpendCeiling.Int64())
	}

	entries, _ := ledger.ReadAll(ctx)
	if len(entries) != 1 || entries[0].EventType != procure.EventRulesStored {
		t.Errorf("audit trail = %+v, want one rules_stored", entries)
	}
}

func TestSetRules_ReplacesWholeRecord(t *testing.T) {
	// GIVEN: A site with rules including a blacklist
	// WHEN: Setting new rules with an empty blacklist
	// THEN: The old blacklist is gone, not merged

	svc, _ := newRuleService()
	ctx := context.Background()

	if _, err := svc.SetRules(ctx, "Site-1", procure.Rupees(38000), []string{"BadRock Cements"}); err != nil {
		t.Fatalf("SetRules failed: %v", err)
	}
	if _, err := svc.SetRules(ctx, "Site-1", procure.Rupees(50000), nil); err != nil {
		t.Fatalf("SetRules failed: %v", err)
	}

	rule, err := svc.GetRules(ctx, "Site-1")
	if err != nil {
		t.Fatalf("GetRules failed: %v", err)
	}
	if rule.SpendCeiling.Int64() != 50000 || len(rule.Blacklist) != 0 {
		t.Errorf("rule = %+v, want replaced whole record", rule)
	}
}

func TestSetRules_Validation(t *testing.T) {
	// GIVEN: Invalid inputs
	// WHEN: Setting rules
	// THEN: ValidationError, nothing stored or logged

	svc, ledger := newRuleService()
	ctx := context.Background()

	if _, err := svc.SetRules(ctx, "", procure.Rupees(38000), nil); !procure.IsClientError(err) {
		t.Errorf("empty site id: err = %v, want validation error", err)
	}
	if _, err := svc.SetRules(ctx, "Site-1", procure.Rupees(0), nil); !procure.IsClientError(err) {
		t.Errorf("zero ceiling: err = %v, want validation error", err)
	}
	if _, err := svc.SetRules(ctx, "Site-1", procure.Rupees(-5), nil); !procure.IsClientError(err) {
		t.Errorf("negative ceiling: err = %v, want validation error", err)
	}

	entries, _ := ledger.ReadAll(ctx)
	if len(entries) != 0 {
		t.Errorf("validation failures wrote %d audit entries, want 0", len(entries))
	}
}

// =============================================================================
// GET RULES
// =============================================================================

func TestGetRules_NeverConfigured_NotFound(t *testing.T) {
	// GIVEN: A site that never had rules set
	// WHEN: Looking up its rules
	// THEN: NotFoundError, not a crash or an empty default record

	svc, _ := newRuleService()

	_, err := svc.GetRules(context.Background(), "NonExistent-Site")
	if !procure.IsNotFound(err) {
		t.Fatalf("err = %v, want not-found", err)
	}
	if procure.IsClientError(err) {
		t.Error("not-found must not be classified as a client validation error")
	}
}

// =============================================================================
// BLACKLIST MATCHING
// =============================================================================

func TestSiteRule_BlacklistedExactCaseInsensitive(t *testing.T) {
	rule := procure.SiteRule{Blacklist: []string{"BadRock Cements"}}

	if !rule.Blacklisted("badrock cements") {
		t.Error("lowercase lookup should match")
	}
	if !rule.Blacklisted("  BADROCK CEMENTS  ") {
		t.Error("padded uppercase lookup should match")
	}
	if rule.Blacklisted("BadRock") {
		t.Error("matching is exact, never fuzzy")
	}
}
