/*
filter.go - Three-gate vendor filter pipeline

PURPOSE:
  Partitions a candidate vendor list into eligible / rejected /
  over-budget sets for one site. Every vendor passes through three
  gates in order, no gate skippable:

    1. Blacklist gate: name on the site blacklist (case-insensitive)
       → rejected, audit entry appended
    2. Budget gate:    price above the spend ceiling
       → over_budget, audit entry appended
    3. Sort gate:      survivors stable-sorted ascending by price

  The partitions are exhaustive and disjoint: every input vendor lands
  in exactly one of the three. Rejection audit entries are written
  before the result is returned; if the ledger fails, no result is
  returned at all.

SEE ALSO:
  - audit.go: Ledger contract and event types
  - order.go: What happens after the caller picks a vendor
*/
package procure

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// FILTER RESULT
// =============================================================================

// Rejection describes one vendor excluded by the blacklist or budget gate.
type Rejection struct {
	Vendor string `json:"vendor"`
	Reason string `json:"reason"`
	Price  Money  `json:"price"`
}

// FilterResult is the transient outcome of one pipeline run.
// Message is set only when Eligible is empty.
type FilterResult struct {
	Eligible   []Vendor    `json:"eligible"`
	Rejected   []Rejection `json:"rejected"`
	OverBudget []Rejection `json:"over_budget"`
	Message    string      `json:"message,omitempty"`
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline evaluates vendor lists against a site's rules. It holds no
// state of its own; the ledger is its only side effect.
type Pipeline struct {
	Ledger Ledger
}

func NewPipeline(ledger Ledger) *Pipeline {
	return &Pipeline{Ledger: ledger}
}

// Filter runs the three-gate pipeline.
// A vendor with a missing or non-positive price is a ValidationError,
// never silently skipped.
func (p *Pipeline) Filter(ctx context.Context, vendors []Vendor, blacklist []string, ceiling Money, siteID SiteID) (*FilterResult, error) {
	for _, v := range vendors {
		if !v.Price.IsPositive() {
			return nil, &ValidationError{Field: "price", Message: fmt.Sprintf("missing or non-positive for vendor %q", v.Name)}
		}
	}

	denied := make(map[string]bool, len(blacklist))
	for _, name := range blacklist {
		denied[strings.ToLower(strings.TrimSpace(name))] = true
	}

	result := &FilterResult{
		Eligible:   []Vendor{},
		Rejected:   []Rejection{},
		OverBudget: []Rejection{},
	}

	for _, v := range vendors {
		// Gate 1 — blacklist
		if denied[strings.ToLower(strings.TrimSpace(v.Name))] {
			reason := "blacklisted for this site"
			result.Rejected = append(result.Rejected, Rejection{Vendor: v.Name, Reason: reason, Price: v.Price})
			entry := NewAuditEntry(EventRejectedBlacklist, siteID, map[string]any{
				"vendor": v.Name, "price": v.Price.Int64(), "reason": reason,
			})
			if err := p.Ledger.Append(ctx, entry); err != nil {
				return nil, &StorageError{Op: "append audit", Err: err}
			}
			continue
		}

		// Gate 2 — budget
		if v.Price.GreaterThan(ceiling) {
			delta := v.Price.Sub(ceiling)
			reason := fmt.Sprintf("price %s exceeds ceiling %s by %s", v.Price, ceiling, delta)
			result.OverBudget = append(result.OverBudget, Rejection{Vendor: v.Name, Reason: reason, Price: v.Price})
			entry := NewAuditEntry(EventRejectedBudget, siteID, map[string]any{
				"vendor": v.Name, "price": v.Price.Int64(), "overage": delta.Int64(), "reason": reason,
			})
			if err := p.Ledger.Append(ctx, entry); err != nil {
				return nil, &StorageError{Op: "append audit", Err: err}
			}
			continue
		}

		// Gate 3 — eligible
		result.Eligible = append(result.Eligible, v)
	}

	// Stable sort keeps catalog order for equal prices.
	sort.SliceStable(result.Eligible, func(i, j int) bool {
		return result.Eligible[i].Price.Value.LessThan(result.Eligible[j].Price.Value)
	})

	if len(result.Eligible) == 0 {
		result.Message = p.emptyMessage(result, vendors, ceiling)
	}

	return result, nil
}

// emptyMessage explains an empty eligible set. When the blacklist and
// budget gates both rejected vendors, the budget wording wins: an
// over-budget vendor is still actionable through a human override,
// while a blacklisted one is not.
func (p *Pipeline) emptyMessage(result *FilterResult, vendors []Vendor, ceiling Money) string {
	switch {
	case len(vendors) == 0:
		return "no vendors available for this material"
	case len(result.OverBudget) > 0:
		cheapest := result.OverBudget[0]
		for _, r := range result.OverBudget[1:] {
			if r.Price.Value.LessThan(cheapest.Price.Value) {
				cheapest = r
			}
		}
		return fmt.Sprintf(
			"all non-blacklisted vendors exceed the budget of %s; cheapest option: %s at %s; request a budget increase or approve the over-budget order",
			ceiling, cheapest.Vendor, cheapest.Price)
	default:
		return fmt.Sprintf(
			"all %d vendor(s) are blacklisted for this site; no order can be placed; update the blacklist or add new vendors",
			len(result.Rejected))
	}
}
