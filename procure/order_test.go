package procure_test

import (
	"context"
	"errors"
	"testing"

	"github.com/warp/procurement-engine/procure"
	"github.com/warp/procurement-engine/procure/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newGate() (*procure.Gate, *store.Memory, *store.MemoryLedger) {
	rules := store.NewMemory()
	ledger := store.NewMemoryLedger()
	return procure.NewGate(rules, ledger), rules, ledger
}

func orderReq(price, ceiling int64) procure.OrderRequest {
	return procure.OrderRequest{
		VendorName: "BadRock Cements",
		Price:      procure.Rupees(price),
		Quantity:   100,
		Material:   "cement",
		SiteID:     "Site-1",
		Ceiling:    procure.Rupees(ceiling),
	}
}

// failingStore simulates an order-record write failure.
type failingStore struct{ *store.Memory }

func (failingStore) AppendOrder(context.Context, procure.OrderRecord) error {
	return errors.New("disk full")
}

// =============================================================================
// EVALUATE TESTS
// =============================================================================

func TestEvaluate_WithinCeiling_Confirmed(t *testing.T) {
	// GIVEN: Price 35000 against a ceiling of 50000
	// WHEN: Evaluating the order
	// THEN: CONFIRMED, order recorded without human approval

	gate, rules, ledger := newGate()
	ctx := context.Background()

	decision, err := gate.Evaluate(ctx, orderReq(35000, 50000))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if decision.Status != procure.OrderConfirmed {
		t.Fatalf("status = %s, want CONFIRMED", decision.Status)
	}
	if decision.Order == nil || decision.Approval != nil {
		t.Fatalf("confirmed decision must carry an order and no approval: %+v", decision)
	}
	if decision.Order.ApprovedByHuman {
		t.Error("auto-confirmed order must not be marked human-approved")
	}

	orders, _ := rules.Orders(ctx, "Site-1")
	if len(orders) != 1 {
		t.Fatalf("recorded %d orders, want 1", len(orders))
	}

	entries, _ := ledger.ReadAll(ctx)
	if len(entries) != 2 {
		t.Fatalf("audit has %d entries, want vendor_selected + order_confirmed", len(entries))
	}
	if entries[0].EventType != procure.EventVendorSelected || entries[1].EventType != procure.EventOrderConfirmed {
		t.Errorf("audit events = [%s %s]", entries[0].EventType, entries[1].EventType)
	}
}

func TestEvaluate_PriceEqualsCeiling_Confirmed(t *testing.T) {
	// GIVEN: Price exactly at the ceiling
	// WHEN: Evaluating
	// THEN: CONFIRMED, the gate is price > ceiling, not >=

	gate, _, _ := newGate()

	decision, err := gate.Evaluate(context.Background(), orderReq(50000, 50000))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision.Status != procure.OrderConfirmed {
		t.Errorf("status = %s, want CONFIRMED at the boundary", decision.Status)
	}
}

func TestEvaluate_OverCeiling_ApprovalRequired(t *testing.T) {
	// GIVEN: Price 39000 against a ceiling of 38000
	// WHEN: Evaluating
	// THEN: APPROVAL_REQUIRED with overage 1000 (2.6%), nothing recorded

	gate, rules, ledger := newGate()
	ctx := context.Background()

	decision, err := gate.Evaluate(ctx, orderReq(39000, 38000))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if decision.Status != procure.OrderApprovalRequired {
		t.Fatalf("status = %s, want APPROVAL_REQUIRED", decision.Status)
	}
	if decision.Approval == nil || decision.Order != nil {
		t.Fatalf("approval decision must carry approval data and no order: %+v", decision)
	}
	if got := decision.Approval.Overage.Int64(); got != 1000 {
		t.Errorf("overage = %d, want 1000", got)
	}
	if got := decision.Approval.OveragePct.String(); got != "2.6" {
		t.Errorf("overage_pct = %s, want 2.6", got)
	}
	if decision.Approval.Ceiling.Int64() != 38000 {
		t.Errorf("approval must carry the ceiling for the external approver")
	}

	orders, _ := rules.Orders(ctx, "Site-1")
	if len(orders) != 0 {
		t.Errorf("an unconfirmed approval request must not record an order, got %d", len(orders))
	}

	entries, _ := ledger.ReadAll(ctx)
	if len(entries) != 2 || entries[1].EventType != procure.EventApprovalRequested {
		t.Errorf("audit trail missing approval_requested: %+v", entries)
	}
	if entries[1].Details["overage"] != int64(1000) {
		t.Errorf("approval_requested details overage = %v, want 1000", entries[1].Details["overage"])
	}
}

func TestEvaluate_InvalidInput(t *testing.T) {
	// GIVEN: Requests with missing required fields
	// WHEN: Evaluating
	// THEN: ValidationError for each

	gate, _, ledger := newGate()
	ctx := context.Background()

	cases := []struct {
		name string
		req  procure.OrderRequest
	}{
		{"empty site", procure.OrderRequest{VendorName: "V", Price: procure.Rupees(1), Quantity: 1, Ceiling: procure.Rupees(1)}},
		{"empty vendor", procure.OrderRequest{SiteID: "S", Price: procure.Rupees(1), Quantity: 1, Ceiling: procure.Rupees(1)}},
		{"zero price", procure.OrderRequest{SiteID: "S", VendorName: "V", Quantity: 1, Ceiling: procure.Rupees(1)}},
		{"zero quantity", procure.OrderRequest{SiteID: "S", VendorName: "V", Price: procure.Rupees(1), Ceiling: procure.Rupees(1)}},
	}
	for _, tc := range cases {
		if _, err := gate.Evaluate(ctx, tc.req); !procure.IsClientError(err) {
			t.Errorf("%s: err = %v, want validation error", tc.name, err)
		}
	}

	// Validation failures are never logged as decisions.
	entries, _ := ledger.ReadAll(ctx)
	if len(entries) != 0 {
		t.Errorf("validation failures wrote %d audit entries, want 0", len(entries))
	}
}

// =============================================================================
// CONFIRM APPROVED TESTS
// =============================================================================

func TestConfirmApproved_AlwaysConfirms(t *testing.T) {
	// GIVEN: An over-budget order the human approved externally
	// WHEN: Confirming
	// THEN: CONFIRMED with approved_by_human, no budget re-check

	gate, rules, ledger := newGate()
	ctx := context.Background()

	req := orderReq(39000, 0) // no ceiling: ConfirmApproved never consults it
	decision, err := gate.ConfirmApproved(ctx, req)
	if err != nil {
		t.Fatalf("ConfirmApproved failed: %v", err)
	}

	if decision.Status != procure.OrderConfirmed {
		t.Fatalf("status = %s, want CONFIRMED", decision.Status)
	}
	if !decision.Order.ApprovedByHuman {
		t.Error("human-approved order must carry approved_by_human")
	}

	orders, _ := rules.Orders(ctx, "Site-1")
	if len(orders) != 1 || orders[0].Status != procure.OrderConfirmed {
		t.Fatalf("orders = %+v, want one CONFIRMED record", orders)
	}

	entries, _ := ledger.ReadAll(ctx)
	if len(entries) != 1 || entries[0].EventType != procure.EventOrderConfirmedByHuman {
		t.Errorf("audit trail = %+v, want one order_confirmed_by_human", entries)
	}
}

// =============================================================================
// FAILURE ORDERING TESTS
// =============================================================================

func TestEvaluate_LedgerFailure_NoOrderRecorded(t *testing.T) {
	// GIVEN: A ledger that fails every append
	// WHEN: Evaluating a within-budget order
	// THEN: StorageError and no order record exists

	rules := store.NewMemory()
	gate := procure.NewGate(rules, failingLedger{})
	ctx := context.Background()

	_, err := gate.Evaluate(ctx, orderReq(35000, 50000))
	if !errors.Is(err, procure.ErrStorage) {
		t.Fatalf("err = %v, want storage error", err)
	}

	orders, _ := rules.Orders(ctx, "Site-1")
	if len(orders) != 0 {
		t.Errorf("a decision that cannot be logged must not record an order, got %d", len(orders))
	}
}

func TestEvaluate_RecordFailure_AuditTrailRemains(t *testing.T) {
	// GIVEN: A store that fails order writes after the audit append
	// WHEN: Evaluating a within-budget order
	// THEN: StorageError; the trail shows a logged-but-unrecorded order,
	//       never the reverse

	ledger := store.NewMemoryLedger()
	gate := procure.NewGate(failingStore{store.NewMemory()}, ledger)
	ctx := context.Background()

	_, err := gate.Evaluate(ctx, orderReq(35000, 50000))
	if !errors.Is(err, procure.ErrStorage) {
		t.Fatalf("err = %v, want storage error", err)
	}

	entries, _ := ledger.ReadAll(ctx)
	if len(entries) != 2 || entries[1].EventType != procure.EventOrderConfirmed {
		t.Errorf("audit-before-record ordering broken: %+v", entries)
	}
}
