/*
rules.go - Site rule storage and the rule service

PURPOSE:
  Defines the persistence contract for per-site procurement rules and
  confirmed orders, plus the RuleService that validates and audits rule
  changes. A SiteRule is created or overwritten whole by SetRules;
  there is no partial update and no delete.

CONTRACT SUMMARY:
  SetRules:    whole-record replace; ValidationError on bad input;
               idempotent under identical input
  GetRules:    returns the rule or NotFoundError; "no rules set" is a
               normal, queryable state, not a crash
  RecordOrder: appends to the site's order history; only StorageError
               can fail it

SEE ALSO:
  - store/sqlite: Durable RuleStore implementation
  - procure/store: In-memory RuleStore for tests
*/
package procure

import (
	"context"
	"strings"
)

// =============================================================================
// RULE STORE - Persistence contract
// =============================================================================

// RuleStore persists site rules and confirmed orders.
// Reads never mutate; every mutating call is a durable write.
// Implementations serialize writes so concurrent requests against the
// same site cannot lose updates to its order history.
type RuleStore interface {
	// SaveRules replaces any existing rule record for rule.SiteID.
	SaveRules(ctx context.Context, rule SiteRule) error

	// LoadRules returns the rule for siteID, or an error satisfying
	// errors.Is(err, ErrSiteNotFound) when none exists.
	LoadRules(ctx context.Context, siteID SiteID) (SiteRule, error)

	// AppendOrder appends a confirmed order to the site's history.
	AppendOrder(ctx context.Context, order OrderRecord) error

	// Orders returns the site's confirmed orders, oldest first.
	Orders(ctx context.Context, siteID SiteID) ([]OrderRecord, error)
}

// =============================================================================
// RULE SERVICE - Validated rule mutations with audit trail
// =============================================================================

// RuleService wraps a RuleStore with input validation and audit
// logging of rule changes.
type RuleService struct {
	Store  RuleStore
	Ledger Ledger
}

func NewRuleService(store RuleStore, ledger Ledger) *RuleService {
	return &RuleService{Store: store, Ledger: ledger}
}

// SetRules validates, stores, and audits a whole-record rule replace.
// Vendor names are trimmed; empty names are dropped.
func (s *RuleService) SetRules(ctx context.Context, siteID SiteID, ceiling Money, blacklist []string) (SiteRule, error) {
	key := SiteID(strings.TrimSpace(string(siteID)))
	if key == "" {
		return SiteRule{}, &ValidationError{Field: "site_id", Message: "must be a non-empty string"}
	}
	if !ceiling.IsPositive() {
		return SiteRule{}, &ValidationError{Field: "spend_ceiling", Message: "must be a positive amount"}
	}

	cleaned := make([]string, 0, len(blacklist))
	for _, name := range blacklist {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	rule := SiteRule{SiteID: key, SpendCeiling: ceiling, Blacklist: cleaned}
	if err := s.Store.SaveRules(ctx, rule); err != nil {
		return SiteRule{}, &StorageError{Op: "save rules", Err: err}
	}

	entry := NewAuditEntry(EventRulesStored, key, map[string]any{
		"spend_ceiling": ceiling.Int64(),
		"blacklist":     cleaned,
	})
	if err := s.Ledger.Append(ctx, entry); err != nil {
		return SiteRule{}, &StorageError{Op: "append audit", Err: err}
	}

	return rule, nil
}

// GetRules looks up the rules for a site. A never-configured site
// yields a NotFoundError, not an empty default record.
func (s *RuleService) GetRules(ctx context.Context, siteID SiteID) (SiteRule, error) {
	key := SiteID(strings.TrimSpace(string(siteID)))
	if key == "" {
		return SiteRule{}, &ValidationError{Field: "site_id", Message: "must be a non-empty string"}
	}
	return s.Store.LoadRules(ctx, key)
}

// Orders returns the confirmed order history for a site.
func (s *RuleService) Orders(ctx context.Context, siteID SiteID) ([]OrderRecord, error) {
	return s.Store.Orders(ctx, siteID)
}
