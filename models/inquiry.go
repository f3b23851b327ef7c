package models

import (
	"time"

	"github.com/google/uuid"
)

// InquiryStatus tracks the follow-up state of a contact inquiry
type InquiryStatus string

const (
	InquiryStatusNew       InquiryStatus = "new"
	InquiryStatusContacted InquiryStatus = "contacted"
	InquiryStatusClosed    InquiryStatus = "closed"
)

// Inquiry is a message submitted through the contact form
type Inquiry struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	Name      string        `json:"name" db:"name"`
	Email     string        `json:"email" db:"email"`
	Message   string        `json:"message,omitempty" db:"message"`
	Status    InquiryStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
}

// TableName returns the table name for the Inquiry model
func (Inquiry) TableName() string {
	return "inquiries"
}

// NewInquiry creates a new inquiry in the "new" state
func NewInquiry(name, email, message string) *Inquiry {
	return &Inquiry{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Message:   message,
		Status:    InquiryStatusNew,
		CreatedAt: time.Now().UTC(),
	}
}
