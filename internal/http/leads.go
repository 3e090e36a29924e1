package http

import (
	"github.com/gin-gonic/gin"
)

type LeadsController struct {
	service LeadService
}

func NewLeadsController(service LeadService) *LeadsController {
	return &LeadsController{service: service}
}

type registerLeadRequest struct {
	Phone string `json:"phone"`
}

// Register records a phone number unless an open lead already exists for it.
// POST /api/leads
func (lc *LeadsController) Register(c *gin.Context) {
	var req registerLeadRequest
	if !bindJSON(c, &req) {
		return
	}
	_, created, err := lc.service.RegisterLead(c.Request.Context(), req.Phone)
	if err != nil {
		respondServiceError(c, err, "register lead")
		return
	}
	if !created {
		respondOK(c, "lead already registered", nil)
		return
	}
	respondOK(c, "lead registered", nil)
}

type completeLeadRequest struct {
	Phone     string `json:"phone"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Reference string `json:"reference"`
}

// Complete fills the profile fields of the open lead for a phone number.
// PATCH /api/leads
func (lc *LeadsController) Complete(c *gin.Context) {
	var req completeLeadRequest
	if !bindJSON(c, &req) {
		return
	}
	lead, err := lc.service.CompleteLead(c.Request.Context(), req.Phone, req.Name, req.Email, req.Reference)
	if err != nil {
		respondServiceError(c, err, "complete lead")
		return
	}
	respondOK(c, "lead updated", lead)
}

type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe adds an email to the newsletter.
// POST /api/newsletter
func (lc *LeadsController) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if !bindJSON(c, &req) {
		return
	}
	_, created, err := lc.service.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		respondServiceError(c, err, "subscribe")
		return
	}
	if !created {
		respondOK(c, "already subscribed", nil)
		return
	}
	respondOK(c, "subscribed", nil)
}
