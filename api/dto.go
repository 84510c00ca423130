/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in the engine, not in DTOs. DTOs are pure data
  carriers; prices cross the wire as plain integer rupees.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/procurement-engine/procure"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// SetRulesRequest replaces a site's whole rule record.
type SetRulesRequest struct {
	SpendCeiling int64    `json:"spend_ceiling"`
	Blacklist    []string `json:"blacklist"`
}

// FilterRequest runs the vendor filter pipeline for one material.
type FilterRequest struct {
	Material string `json:"material"`
}

// OrderRequestDTO proposes or finalizes one order.
type OrderRequestDTO struct {
	VendorName string `json:"vendor_name"`
	Price      int64  `json:"price_inr"`
	Quantity   int    `json:"quantity"`
	Material   string `json:"material"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// SiteRuleDTO is the stored rule record for a site.
type SiteRuleDTO struct {
	SiteID       string   `json:"site_id"`
	SpendCeiling int64    `json:"spend_ceiling"`
	Blacklist    []string `json:"blacklist"`
}

func toSiteRuleDTO(rule procure.SiteRule) SiteRuleDTO {
	return SiteRuleDTO{
		SiteID:       string(rule.SiteID),
		SpendCeiling: rule.SpendCeiling.Int64(),
		Blacklist:    rule.Blacklist,
	}
}

// VendorDTO is one catalog vendor.
type VendorDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Price        int64  `json:"price_inr"`
	Currency     string `json:"currency"`
	DeliveryDays int    `json:"delivery_days"`
	InStock      bool   `json:"in_stock"`
	Notes        string `json:"notes"`
}

func toVendorDTO(v procure.Vendor) VendorDTO {
	return VendorDTO{
		ID:           v.ID,
		Name:         v.Name,
		Category:     v.Category,
		Price:        v.Price.Int64(),
		Currency:     v.Currency,
		DeliveryDays: v.DeliveryDays,
		InStock:      v.InStock,
		Notes:        v.Notes,
	}
}

// RejectionDTO is one excluded vendor with its reason.
type RejectionDTO struct {
	Vendor string `json:"vendor"`
	Reason string `json:"reason"`
	Price  int64  `json:"price_inr"`
}

// FilterResultDTO is the three-way vendor partition.
type FilterResultDTO struct {
	Eligible   []VendorDTO    `json:"eligible"`
	Rejected   []RejectionDTO `json:"rejected"`
	OverBudget []RejectionDTO `json:"over_budget"`
	Message    string         `json:"message,omitempty"`
}

func toFilterResultDTO(r *procure.FilterResult) FilterResultDTO {
	dto := FilterResultDTO{
		Eligible:   make([]VendorDTO, 0, len(r.Eligible)),
		Rejected:   make([]RejectionDTO, 0, len(r.Rejected)),
		OverBudget: make([]RejectionDTO, 0, len(r.OverBudget)),
		Message:    r.Message,
	}
	for _, v := range r.Eligible {
		dto.Eligible = append(dto.Eligible, toVendorDTO(v))
	}
	for _, rej := range r.Rejected {
		dto.Rejected = append(dto.Rejected, RejectionDTO{Vendor: rej.Vendor, Reason: rej.Reason, Price: rej.Price.Int64()})
	}
	for _, rej := range r.OverBudget {
		dto.OverBudget = append(dto.OverBudget, RejectionDTO{Vendor: rej.Vendor, Reason: rej.Reason, Price: rej.Price.Int64()})
	}
	return dto
}

// OrderDTO is one confirmed order.
type OrderDTO struct {
	ID              string    `json:"id"`
	SiteID          string    `json:"site_id"`
	VendorName      string    `json:"vendor_name"`
	Material        string    `json:"material"`
	Quantity        int       `json:"quantity"`
	Price           int64     `json:"price_inr"`
	Status          string    `json:"status"`
	ApprovedByHuman bool      `json:"approved_by_human"`
	CreatedAt       time.Time `json:"created_at"`
}

func toOrderDTO(o procure.OrderRecord) OrderDTO {
	return OrderDTO{
		ID:              o.ID,
		SiteID:          string(o.SiteID),
		VendorName:      o.VendorName,
		Material:        o.Material,
		Quantity:        o.Quantity,
		Price:           o.Price.Int64(),
		Status:          string(o.Status),
		ApprovedByHuman: o.ApprovedByHuman,
		CreatedAt:       o.CreatedAt,
	}
}

// ApprovalDTO carries the data an external approver needs.
type ApprovalDTO struct {
	VendorName string  `json:"vendor_name"`
	Price      int64   `json:"price_inr"`
	Ceiling    int64   `json:"ceiling_inr"`
	Overage    int64   `json:"overage_inr"`
	OveragePct float64 `json:"overage_pct"`
}

// DecisionDTO is the tagged order-gate outcome.
type DecisionDTO struct {
	Status   string       `json:"status"`
	Order    *OrderDTO    `json:"order,omitempty"`
	Approval *ApprovalDTO `json:"approval,omitempty"`
}

func toDecisionDTO(d *procure.Decision) DecisionDTO {
	dto := DecisionDTO{Status: string(d.Status)}
	if d.Order != nil {
		order := toOrderDTO(*d.Order)
		dto.Order = &order
	}
	if d.Approval != nil {
		dto.Approval = &ApprovalDTO{
			VendorName: d.Approval.VendorName,
			Price:      d.Approval.Price.Int64(),
			Ceiling:    d.Approval.Ceiling.Int64(),
			Overage:    d.Approval.Overage.Int64(),
			OveragePct: d.Approval.OveragePct.InexactFloat64(),
		}
	}
	return dto
}

// AuditEntryDTO is one ledger record, oldest first in listings.
type AuditEntryDTO struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	EventType string         `json:"event_type"`
	SiteID    string         `json:"site_id"`
	Details   map[string]any `json:"details"`
}

func toAuditEntryDTO(e procure.AuditEntry) AuditEntryDTO {
	return AuditEntryDTO{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		EventType: string(e.EventType),
		SiteID:    string(e.SiteID),
		Details:   e.Details,
	}
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
