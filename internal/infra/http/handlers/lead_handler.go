package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
	"github.com/hpol369/gold-ira-platform-sub026/internal/usecase"
)

type LeadHandler struct {
	Lifecycle *usecase.LeadLifecycle
	Log       logrus.FieldLogger
}

func NewLeadHandler(lifecycle *usecase.LeadLifecycle, log logrus.FieldLogger) *LeadHandler {
	return &LeadHandler{Lifecycle: lifecycle, Log: log}
}

type CaptureLeadResponse struct {
	Success bool   `json:"success"`
	LeadID  string `json:"leadId"`
}

type EnrichLeadResponse struct {
	Success          bool  `json:"success"`
	PotentialDealMin int64 `json:"potentialDealMin"`
	PotentialDealMax int64 `json:"potentialDealMax"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type SubmitToAugustaRequest struct {
	LeadID string `json:"leadId"`
}

type SubmitToAugustaResponse struct {
	Success bool `json:"success"`
	usecase.SubmitResult
}

// CaptureLead handles POST /api/leads.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.Lifecycle.CreateLead(r.Context(), input, requestLocation(r))
	if err != nil {
		writeUsecaseError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusCreated, CaptureLeadResponse{Success: true, LeadID: lead.ID})
}

// EnrichLead handles PATCH /api/leads/{id}/enrichment.
func (h *LeadHandler) EnrichLead(w http.ResponseWriter, r *http.Request) {
	var input usecase.EnrichLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.Lifecycle.EnrichLead(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeUsecaseError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, EnrichLeadResponse{
		Success:          true,
		PotentialDealMin: lead.Enrichment.PotentialDealMin,
		PotentialDealMax: lead.Enrichment.PotentialDealMax,
	})
}

// UpdateStatus handles PATCH /api/leads/{id}/status.
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:         usecase.CodeValidation,
			Message:       "Missing required fields: status",
			MissingFields: []string{"status"},
		})
		return
	}

	lead, err := h.Lifecycle.UpdateStatus(r.Context(), chi.URLParam(r, "id"), entity.LeadStatus(req.Status))
	if err != nil {
		writeUsecaseError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": lead.Status})
}

// ListHighValue handles GET /api/leads/high-value?min=.
func (h *LeadHandler) ListHighValue(w http.ResponseWriter, r *http.Request) {
	var min int64
	if raw := r.URL.Query().Get("min"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "min must be a positive integer")
			return
		}
		min = v
	}

	leads, err := h.Lifecycle.ListHighValue(r.Context(), min)
	if err != nil {
		writeUsecaseError(w, h.Log, err)
		return
	}
	if leads == nil {
		leads = []*entity.Lead{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "leads": leads})
}

// SubmitToAugusta handles POST /api/submit-to-augusta. A partner rejection is
// still a 200; the body says whether Augusta accepted the lead.
func (h *LeadHandler) SubmitToAugusta(w http.ResponseWriter, r *http.Request) {
	var req SubmitToAugustaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.LeadID = strings.TrimSpace(req.LeadID)
	if req.LeadID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:         usecase.CodeValidation,
			Message:       "Missing required fields: leadId",
			MissingFields: []string{"leadId"},
		})
		return
	}

	result, err := h.Lifecycle.SubmitToPartner(r.Context(), req.LeadID)
	if err != nil {
		writeUsecaseError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, SubmitToAugustaResponse{Success: true, SubmitResult: result})
}

// requestLocation builds "City, Region, Country" from edge geo headers.
func requestLocation(r *http.Request) string {
	var parts []string
	for _, h := range []string{"X-Vercel-IP-City", "X-Vercel-IP-Country-Region", "X-Vercel-IP-Country"} {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		if decoded, err := url.QueryUnescape(v); err == nil {
			v = decoded
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, ", ")
}
