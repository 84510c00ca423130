/*
handlers.go - HTTP API handlers for the procurement decision engine

PURPOSE:
  Exposes the decision engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine.

ENDPOINTS:
  Rules:
    POST   /api/sites/{siteID}/rules          Set site rules (whole-record replace)
    GET    /api/sites/{siteID}/rules          Get site rules

  Vendors:
    GET    /api/vendors?material=cement       Catalog listing for a material

  Decisions:
    POST   /api/sites/{siteID}/filter         Run the vendor filter pipeline
    POST   /api/sites/{siteID}/orders         Evaluate an order (confirm | approval required)
    POST   /api/sites/{siteID}/orders/confirm Finalize a human-approved order
    GET    /api/sites/{siteID}/orders         Confirmed order history

  Audit:
    GET    /api/audit                         Full audit trail, oldest first
    DELETE /api/audit                         Operational reset

REQUEST FLOW:
  1. Parse HTTP request
  2. Call engine (rule service, pipeline, order gate)
  3. Serialize response
  4. Map errors to status codes

ERROR HANDLING:
  - 400: Validation errors, invalid input
  - 404: No rules configured for the site
  - 500: Storage or ledger failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/procurement-engine/catalog"
	"github.com/warp/procurement-engine/procure"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Rules    *procure.RuleService
	Pipeline *procure.Pipeline
	Gate     *procure.Gate
	Catalog  *catalog.Catalog
	Ledger   procure.Ledger
}

func NewHandler(store procure.RuleStore, ledger procure.Ledger, cat *catalog.Catalog) *Handler {
	return &Handler{
		Rules:    procure.NewRuleService(store, ledger),
		Pipeline: procure.NewPipeline(ledger),
		Gate:     procure.NewGate(store, ledger),
		Catalog:  cat,
		Ledger:   ledger,
	}
}

// =============================================================================
// RULES
// =============================================================================

// SetRules handles POST /api/sites/{siteID}/rules.
func (h *Handler) SetRules(w http.ResponseWriter, r *http.Request) {
	siteID := procure.SiteID(chi.URLParam(r, "siteID"))

	var req SetRulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rule, err := h.Rules.SetRules(r.Context(), siteID, procure.Rupees(req.SpendCeiling), req.Blacklist)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSiteRuleDTO(rule))
}

// GetRules handles GET /api/sites/{siteID}/rules.
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	siteID := procure.SiteID(chi.URLParam(r, "siteID"))

	rule, err := h.Rules.GetRules(r.Context(), siteID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSiteRuleDTO(rule))
}

// =============================================================================
// VENDORS
// =============================================================================

// ListVendors handles GET /api/vendors?material=cement.
func (h *Handler) ListVendors(w http.ResponseWriter, r *http.Request) {
	material := r.URL.Query().Get("material")
	if material == "" {
		writeError(w, http.StatusBadRequest, "material query parameter is required")
		return
	}

	vendors, err := h.Catalog.ListVendors(r.Context(), material)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	dtos := make([]VendorDTO, 0, len(vendors))
	for _, v := range vendors {
		dtos = append(dtos, toVendorDTO(v))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// DECISIONS
// =============================================================================

// Filter handles POST /api/sites/{siteID}/filter. It looks up the
// site's rules, fetches the catalog listing, and runs the pipeline:
// the orchestration the engine itself deliberately does not do.
func (h *Handler) Filter(w http.ResponseWriter, r *http.Request) {
	siteID := procure.SiteID(chi.URLParam(r, "siteID"))

	var req FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rule, err := h.Rules.GetRules(r.Context(), siteID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	vendors, err := h.Catalog.ListVendors(r.Context(), req.Material)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	result, err := h.Pipeline.Filter(r.Context(), vendors, rule.Blacklist, rule.SpendCeiling, siteID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFilterResultDTO(result))
}

// EvaluateOrder handles POST /api/sites/{siteID}/orders.
func (h *Handler) EvaluateOrder(w http.ResponseWriter, r *http.Request) {
	siteID := procure.SiteID(chi.URLParam(r, "siteID"))

	var req OrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rule, err := h.Rules.GetRules(r.Context(), siteID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	decision, err := h.Gate.Evaluate(r.Context(), procure.OrderRequest{
		VendorName: req.VendorName,
		Price:      procure.Rupees(req.Price),
		Quantity:   req.Quantity,
		Material:   req.Material,
		SiteID:     siteID,
		Ceiling:    rule.SpendCeiling,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDecisionDTO(decision))
}

// ConfirmOrder handles POST /api/sites/{siteID}/orders/confirm.
// Called only after the external human approval signal.
func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	siteID := procure.SiteID(chi.URLParam(r, "siteID"))

	var req OrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	decision, err := h.Gate.ConfirmApproved(r.Context(), procure.OrderRequest{
		VendorName: req.VendorName,
		Price:      procure.Rupees(req.Price),
		Quantity:   req.Quantity,
		Material:   req.Material,
		SiteID:     siteID,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDecisionDTO(decision))
}

// ListOrders handles GET /api/sites/{siteID}/orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	siteID := procure.SiteID(chi.URLParam(r, "siteID"))

	orders, err := h.Rules.Orders(r.Context(), siteID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	dtos := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, toOrderDTO(o))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// AUDIT
// =============================================================================

// GetAuditTrail handles GET /api/audit.
func (h *Handler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Ledger.ReadAll(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	dtos := make([]AuditEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, toAuditEntryDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ClearAuditTrail handles DELETE /api/audit. Operational use only.
func (h *Handler) ClearAuditTrail(w http.ResponseWriter, r *http.Request) {
	if err := h.Ledger.Clear(r.Context()); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeEngineError maps engine errors to HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case procure.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case procure.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
