/*
order.go - Order gate: the approval state machine

PURPOSE:
  Decides auto-confirm vs. human-approval-required for a proposed
  order, and finalizes previously flagged orders after an external
  human approval. The gate is stateless between calls: everything it
  needs arrives in the request, and only the rule store and ledger
  persist anything.

WORKFLOW:
  Evaluate:        price <= ceiling → CONFIRMED, order recorded
                   price >  ceiling → APPROVAL_REQUIRED, nothing
                   recorded, approval details returned to the caller
  ConfirmApproved: trusted human approval already happened outside the
                   engine; record and audit unconditionally, no budget
                   re-check

WRITE ORDERING:
  The audit entry is always appended BEFORE the order record. A crash
  between the two leaves a logged-but-unrecorded order, never a
  recorded-but-unlogged one. Any storage or ledger failure is fatal to
  the call.

SEE ALSO:
  - filter.go: Produces the vendor partitions the caller picks from
  - rules.go:  Supplies the ceiling and records confirmed orders
*/
package procure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// REQUESTS AND DECISIONS
// =============================================================================

// OrderRequest is one proposed order. Ceiling is consulted only by
// Evaluate; ConfirmApproved trusts the upstream approval.
type OrderRequest struct {
	VendorName string
	Price      Money
	Quantity   int
	Material   string
	SiteID     SiteID
	Ceiling    Money
}

// ApprovalRequest carries everything an external approver needs to
// decide on an over-budget order.
type ApprovalRequest struct {
	VendorName string          `json:"vendor_name"`
	Price      Money           `json:"price_inr"`
	Ceiling    Money           `json:"ceiling_inr"`
	Overage    Money           `json:"overage_inr"`
	OveragePct decimal.Decimal `json:"overage_pct"`
}

// Decision is the tagged outcome of an order-gate call. Exactly one of
// Order (Status CONFIRMED) or Approval (Status APPROVAL_REQUIRED) is set.
type Decision struct {
	Status   OrderStatus      `json:"status"`
	Order    *OrderRecord     `json:"order,omitempty"`
	Approval *ApprovalRequest `json:"approval,omitempty"`
}

// =============================================================================
// ORDER GATE
// =============================================================================

// Gate is the approval state machine over a rule store and ledger.
type Gate struct {
	Store  RuleStore
	Ledger Ledger
}

func NewGate(store RuleStore, ledger Ledger) *Gate {
	return &Gate{Store: store, Ledger: ledger}
}

func (g *Gate) validate(req OrderRequest) error {
	if strings.TrimSpace(string(req.SiteID)) == "" {
		return &ValidationError{Field: "site_id", Message: "must be a non-empty string"}
	}
	if strings.TrimSpace(req.VendorName) == "" {
		return &ValidationError{Field: "vendor_name", Message: "must be a non-empty string"}
	}
	if !req.Price.IsPositive() {
		return &ValidationError{Field: "price", Message: "must be a positive amount"}
	}
	if req.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "must be positive"}
	}
	return nil
}

// Evaluate proposes an order against the site's spend ceiling.
func (g *Gate) Evaluate(ctx context.Context, req OrderRequest) (*Decision, error) {
	if err := g.validate(req); err != nil {
		return nil, err
	}
	if !req.Ceiling.IsPositive() {
		return nil, &ValidationError{Field: "ceiling", Message: "must be a positive amount"}
	}

	selected := NewAuditEntry(EventVendorSelected, req.SiteID, map[string]any{
		"vendor": req.VendorName, "price": req.Price.Int64(),
		"quantity": req.Quantity, "material": req.Material,
	})
	if err := g.Ledger.Append(ctx, selected); err != nil {
		return nil, &StorageError{Op: "append audit", Err: err}
	}

	// Within ceiling: auto-confirm.
	if req.Price.LessThanOrEqual(req.Ceiling) {
		return g.confirm(ctx, req, false)
	}

	// Over ceiling: return the approval request, record nothing.
	overage := req.Price.Sub(req.Ceiling)
	pct := overage.PercentOf(req.Ceiling)

	entry := NewAuditEntry(EventApprovalRequested, req.SiteID, map[string]any{
		"vendor": req.VendorName, "price": req.Price.Int64(),
		"approval_limit": req.Ceiling.Int64(),
		"overage":        overage.Int64(), "overage_pct": pct.InexactFloat64(),
	})
	if err := g.Ledger.Append(ctx, entry); err != nil {
		return nil, &StorageError{Op: "append audit", Err: err}
	}

	return &Decision{
		Status: OrderApprovalRequired,
		Approval: &ApprovalRequest{
			VendorName: req.VendorName,
			Price:      req.Price,
			Ceiling:    req.Ceiling,
			Overage:    overage,
			OveragePct: pct,
		},
	}, nil
}

// ConfirmApproved finalizes an order a human has already approved.
// No budget re-check: the approval decision happened outside the
// engine; the only remaining duty is durable recording and audit.
func (g *Gate) ConfirmApproved(ctx context.Context, req OrderRequest) (*Decision, error) {
	if err := g.validate(req); err != nil {
		return nil, err
	}
	return g.confirm(ctx, req, true)
}

func (g *Gate) confirm(ctx context.Context, req OrderRequest, byHuman bool) (*Decision, error) {
	event := EventOrderConfirmed
	approval := "auto"
	if byHuman {
		event = EventOrderConfirmedByHuman
		approval = "human"
	}

	// Audit first: a crash after this point leaves a logged trail with
	// no order record, which the history can reconcile. The reverse, a
	// confirmed order with no audit entry, must never happen.
	entry := NewAuditEntry(event, req.SiteID, map[string]any{
		"vendor": req.VendorName, "price": req.Price.Int64(),
		"quantity": req.Quantity, "material": req.Material,
		"approval": approval,
	})
	if err := g.Ledger.Append(ctx, entry); err != nil {
		return nil, &StorageError{Op: "append audit", Err: err}
	}

	order := OrderRecord{
		ID:              uuid.NewString(),
		SiteID:          req.SiteID,
		VendorName:      req.VendorName,
		Material:        req.Material,
		Quantity:        req.Quantity,
		Price:           req.Price,
		Status:          OrderConfirmed,
		ApprovedByHuman: byHuman,
		CreatedAt:       time.Now().UTC(),
	}
	if err := g.Store.AppendOrder(ctx, order); err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("record order for %s", req.SiteID), Err: err}
	}

	return &Decision{Status: OrderConfirmed, Order: &order}, nil
}
