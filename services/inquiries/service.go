package inquiries

import (
	"context"
	"strings"

	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/repositories"
	"github.com/lakshyafoods/storefront/services"
	"github.com/lakshyafoods/storefront/utils"
	"go.uber.org/zap"
)

// SubmitInput is a contact form submission
type SubmitInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

// InquiryService stores contact inquiries
type InquiryService struct {
	inquiries repositories.InquiryRepository
	logger    *zap.Logger
}

// NewInquiryService creates a new InquiryService instance
func NewInquiryService(inquiries repositories.InquiryRepository, logger *zap.Logger) *InquiryService {
	return &InquiryService{inquiries: inquiries, logger: logger}
}

// Submit validates and stores a new inquiry with status "new"
func (s *InquiryService) Submit(ctx context.Context, in SubmitInput) (*models.Inquiry, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)

	if err := utils.ValidateStruct(in); err != nil {
		verr := services.Validation("Invalid inquiry")
		for field, msg := range utils.GetValidationFields(err) {
			verr = verr.WithDetail(field, msg)
		}
		return nil, verr
	}

	inquiry := models.NewInquiry(in.Name, in.Email, in.Message)
	if err := s.inquiries.Create(ctx, inquiry); err != nil {
		return nil, services.WrapInternal("failed to store inquiry", err)
	}

	s.logger.Info("inquiry received", zap.String("inquiry_id", inquiry.ID.String()))
	return inquiry, nil
}
