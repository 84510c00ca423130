/*
audit.go - Append-only audit ledger contract

PURPOSE:
  The audit ledger is the sole system of record for WHY any procurement
  decision was made, independent of whether an OrderRecord resulted.
  Every rejection, approval request, and confirmation appends exactly
  one entry before the decision is returned to the caller.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: No update, no reorder. Ever.
  2. IMMUTABLE: Once written, entries cannot be modified.
  3. AUDIT-BEFORE-RESULT: A decision that cannot be logged must not be
     returned as successful. Ledger failures are fatal to the call.
  4. SELF-CONTAINED: Each persisted record parses on its own, so a
     reader recovers all valid records even if the last is truncated.

SEE ALSO:
  - store/jsonl: Durable ledger implementation (one JSON line per entry)
  - procure/store: In-memory ledger for tests
*/
package procure

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

type EventType string

const (
	EventRulesStored           EventType = "rules_stored"
	EventRejectedBlacklist     EventType = "vendor_rejected_blacklist"
	EventRejectedBudget        EventType = "vendor_rejected_budget"
	EventVendorSelected        EventType = "vendor_selected"
	EventApprovalRequested     EventType = "approval_requested"
	EventOrderConfirmed        EventType = "order_confirmed"
	EventOrderConfirmedByHuman EventType = "order_confirmed_by_human"
	EventNoVendorsFound        EventType = "no_vendors_found"
)

// =============================================================================
// AUDIT ENTRY
// =============================================================================

// AuditEntry records one decision event. Immutable once written;
// sequence position is implicit in append order.
type AuditEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	EventType EventType      `json:"event_type"`
	SiteID    SiteID         `json:"site_id"`
	Details   map[string]any `json:"details"`
}

// NewAuditEntry stamps an entry with an ID and the current UTC time.
func NewAuditEntry(event EventType, siteID SiteID, details map[string]any) AuditEntry {
	return AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: event,
		SiteID:    siteID,
		Details:   details,
	}
}

// =============================================================================
// LEDGER - Append-only decision log
// =============================================================================

// Ledger stores audit entries in append order.
//
// INVARIANTS:
//   - Append-only: no update, no delete on the decision path.
//   - Single writer at a time; appends never block each other forever.
//   - ReadAll returns entries oldest first and tolerates a partially
//     written final record (dropped, not fatal).
type Ledger interface {
	// Append writes one entry. A failed append is fatal to the
	// enclosing decision.
	Append(ctx context.Context, entry AuditEntry) error

	// ReadAll returns every valid entry in append order.
	ReadAll(ctx context.Context) ([]AuditEntry, error)

	// Clear destructively resets the ledger. Operational use only;
	// never called on the decision path.
	Clear(ctx context.Context) error
}
