/*
Package procure provides the core procurement decision engine.

PURPOSE:
  This package contains the deterministic business logic that gates
  procurement orders against site-specific rules: spend ceilings and
  vendor blacklists. It partitions candidate vendors, decides
  auto-confirm vs. human-approval-required, and writes every decision
  to an append-only audit ledger.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: An integer rupee amount backed by decimal.Decimal
  - SiteRule: Per-site procurement rules (ceiling + blacklist)
  - Vendor: Read-only catalog entry supplied per request
  - OrderRecord: An immutable record of a confirmed order
  - AuditEntry: One decision event on the append-only ledger

DESIGN PRINCIPLES:
  1. Determinism: Same inputs always produce the same decision
  2. Precision: Uses decimal.Decimal, never floating point, for money
  3. Auditability: No rejection or confirmation without a ledger entry
  4. Statelessness: State is reconstructed from arguments on every call;
     only SiteRule, OrderRecord, and AuditEntry are ever persisted

SEE ALSO:
  - rules.go:  Rule store contract and rule service
  - filter.go: Three-gate vendor filter pipeline
  - order.go:  Order gate (auto-confirm / approval workflow)
  - audit.go:  Audit ledger contract and event types
*/
package procure

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Integer rupee amount
// =============================================================================

// Money is a currency amount in INR. Prices and ceilings are whole
// rupees, but decimal.Decimal keeps overage-percentage math exact.
type Money struct {
	Value decimal.Decimal
}

func Rupees(v int64) Money {
	return Money{Value: decimal.NewFromInt(v)}
}

func (m Money) Add(o Money) Money      { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money      { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) GreaterThan(o Money) bool { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThanOrEqual(o Money) bool { return m.Value.LessThanOrEqual(o.Value) }
func (m Money) IsPositive() bool       { return m.Value.IsPositive() }
func (m Money) IsZero() bool           { return m.Value.IsZero() }
func (m Money) Int64() int64           { return m.Value.IntPart() }

// PercentOf returns m as a percentage of base, rounded to one decimal
// place (e.g. overage ₹1,000 on a ₹38,000 ceiling → 2.6).
func (m Money) PercentOf(base Money) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return m.Value.Div(base.Value).Mul(decimal.NewFromInt(100)).Round(1)
}

// String formats with the rupee sign and comma grouping: ₹39,000.
func (m Money) String() string {
	s := m.Value.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("₹")
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// MarshalJSON emits a bare number so stored prices stay integers.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Value.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	d, err := decimal.NewFromString(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	m.Value = d
	return nil
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type SiteID string

// =============================================================================
// SITE RULE - Per-site procurement rules
// =============================================================================

// SiteRule holds the procurement rules for one construction site.
// A rule record is always replaced whole; there is no partial update
// and no delete. Absence of a record is a distinct, queryable state.
type SiteRule struct {
	SiteID       SiteID   `json:"site_id"`
	SpendCeiling Money    `json:"spend_ceiling"`
	Blacklist    []string `json:"blacklist"`
}

// Blacklisted reports whether name is on the blacklist.
// Matching is case-insensitive and exact, never fuzzy.
func (r SiteRule) Blacklisted(name string) bool {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, b := range r.Blacklist {
		if strings.ToLower(strings.TrimSpace(b)) == needle {
			return true
		}
	}
	return false
}

// =============================================================================
// VENDOR - Read-only catalog reference data
// =============================================================================

// Vendor is one catalog entry. The engine never mutates or caches
// vendors beyond the current request.
type Vendor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Price        Money  `json:"price_inr"`
	Currency     string `json:"currency"`
	DeliveryDays int    `json:"delivery_days"`
	InStock      bool   `json:"in_stock"`
	Notes        string `json:"notes"`
}

// =============================================================================
// ORDER RECORD - Confirmed orders only
// =============================================================================

type OrderStatus string

const (
	OrderConfirmed        OrderStatus = "CONFIRMED"
	OrderApprovalRequired OrderStatus = "APPROVAL_REQUIRED"
)

// OrderRecord is appended to a site's order history only upon
// confirmation (auto or human-approved). An APPROVAL_REQUIRED decision
// that is never confirmed leaves no OrderRecord, only an audit trail.
//
// INVARIANT: Status == CONFIRMED implies either price was within the
// site's ceiling at confirmation time, or ApprovedByHuman is true.
type OrderRecord struct {
	ID              string      `json:"id"`
	SiteID          SiteID      `json:"site_id"`
	VendorName      string      `json:"vendor_name"`
	Material        string      `json:"material"`
	Quantity        int         `json:"quantity"`
	Price           Money       `json:"price_inr"`
	Status          OrderStatus `json:"status"`
	ApprovedByHuman bool        `json:"approved_by_human"`
	CreatedAt       time.Time   `json:"created_at"`
}
