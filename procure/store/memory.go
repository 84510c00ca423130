// Package store provides in-memory RuleStore and Ledger implementations
// for testing and development.
package store

import (
	"context"
	"sync"

	"github.com/warp/procurement-engine/procure"
)

// =============================================================================
// MEMORY RULE STORE
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	rules  map[procure.SiteID]procure.SiteRule
	orders map[procure.SiteID][]procure.OrderRecord
}

func NewMemory() *Memory {
	return &Memory{
		rules:  make(map[procure.SiteID]procure.SiteRule),
		orders: make(map[procure.SiteID][]procure.OrderRecord),
	}
}

// SaveRules replaces the whole rule record for the site.
func (m *Memory) SaveRules(_ context.Context, rule procure.SiteRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := rule
	copied.Blacklist = append([]string(nil), rule.Blacklist...)
	m.rules[rule.SiteID] = copied
	return nil
}

func (m *Memory) LoadRules(_ context.Context, siteID procure.SiteID) (procure.SiteRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rule, ok := m.rules[siteID]
	if !ok {
		return procure.SiteRule{}, &procure.NotFoundError{SiteID: siteID}
	}
	return rule, nil
}

// AppendOrder is append-only; order history is never rewritten.
func (m *Memory) AppendOrder(_ context.Context, order procure.OrderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.SiteID] = append(m.orders[order.SiteID], order)
	return nil
}

func (m *Memory) Orders(_ context.Context, siteID procure.SiteID) ([]procure.OrderRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]procure.OrderRecord, len(m.orders[siteID]))
	copy(result, m.orders[siteID])
	return result, nil
}

// =============================================================================
// MEMORY LEDGER
// =============================================================================

type MemoryLedger struct {
	mu      sync.RWMutex
	entries []procure.AuditEntry
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

func (l *MemoryLedger) Append(_ context.Context, entry procure.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

func (l *MemoryLedger) ReadAll(_ context.Context) ([]procure.AuditEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make([]procure.AuditEntry, len(l.entries))
	copy(result, l.entries)
	return result, nil
}

func (l *MemoryLedger) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	return nil
}
