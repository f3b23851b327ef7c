package handlers

import (
	"net/http"

	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/services/inquiries"
	"github.com/lakshyafoods/storefront/utils"
	"go.uber.org/zap"
)

// InquiryResponse is the body of POST /api/contact
type InquiryResponse struct {
	Message string          `json:"message"`
	Inquiry *models.Inquiry `json:"inquiry"`
}

// ContactHandler accepts contact form submissions
type ContactHandler struct {
	inquiries *inquiries.InquiryService
	logger    *zap.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(inquiryService *inquiries.InquiryService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{inquiries: inquiryService, logger: logger}
}

// HandleSubmit handles POST /api/contact
func (h *ContactHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req inquiries.SubmitInput
	if err := decodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	inquiry, err := h.inquiries.Submit(r.Context(), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusCreated, InquiryResponse{
		Message: "Inquiry received",
		Inquiry: inquiry,
	})
}
