package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Metadata map[string]any

// SessionIdentity is decided once by the auth middleware and passed
// explicitly into service calls that need to know who is acting.
type SessionIdentity struct {
	UserID uint
	Role   string
}

func (s SessionIdentity) IsAdmin() bool {
	return s.Role == ROLE_ADMIN
}

const (
	ROLE_ADMIN = "admin"
	ROLE_STAFF = "staff"
)

type GuestCategory string

const (
	GUEST_VIP           GuestCategory = "vip"
	GUEST_PAYING_SINGLE GuestCategory = "paying_single"
	GUEST_PAYING_PAIRED GuestCategory = "paying_paired"
	GUEST_APPLICANT     GuestCategory = "applicant"
)

type GuestStatus string

const (
	GUEST_PENDING          GuestStatus = "pending"
	GUEST_INVITED          GuestStatus = "invited"
	GUEST_REGISTERED       GuestStatus = "registered"
	GUEST_APPROVED         GuestStatus = "approved"
	GUEST_DECLINED         GuestStatus = "declined"
	GUEST_CANCELLED        GuestStatus = "cancelled"
	GUEST_PENDING_APPROVAL GuestStatus = "pending_approval"
	GUEST_REJECTED         GuestStatus = "rejected"
)

type PaymentMethod string

const (
	PAYMENT_CARD          PaymentMethod = "card"
	PAYMENT_BANK_TRANSFER PaymentMethod = "bank_transfer"
)

type PaymentStatus string

const (
	PAYMENT_PENDING  PaymentStatus = "pending"
	PAYMENT_PAID     PaymentStatus = "paid"
	PAYMENT_FAILED   PaymentStatus = "failed"
	PAYMENT_REFUNDED PaymentStatus = "refunded"
)

type ScheduledEmailStatus string

const (
	EMAIL_PENDING ScheduledEmailStatus = "pending"
	EMAIL_SENT    ScheduledEmailStatus = "sent"
	EMAIL_FAILED  ScheduledEmailStatus = "failed"
)

// Credential error codes, surfaced to the registrant-facing flow so the
// UI can offer the right remedy.
type CredentialError string

const (
	CREDENTIAL_NOT_FOUND CredentialError = "not_found"
	CREDENTIAL_NO_LINK   CredentialError = "no_link"
	CREDENTIAL_INVALID   CredentialError = "invalid"
	CREDENTIAL_EXPIRED   CredentialError = "expired"
)

// Ticket error codes, surfaced to the staff scanning UI.
type TicketError string

const (
	TICKET_EXPIRED         TicketError = "TICKET_EXPIRED"
	INVALID_TICKET         TicketError = "INVALID_TICKET"
	REGISTRATION_NOT_FOUND TicketError = "REGISTRATION_NOT_FOUND"
	GUEST_NOT_FOUND        TicketError = "GUEST_NOT_FOUND"
	TOKEN_MISMATCH         TicketError = "TOKEN_MISMATCH"
	PAYMENT_REQUIRED       TicketError = "PAYMENT_REQUIRED"
	REGISTRATION_CANCELLED TicketError = "REGISTRATION_CANCELLED"
)

// ALREADY_CHECKED_IN is a result reason, not an error. Duplicate scans
// happen routinely at the door.
const ALREADY_CHECKED_IN = "ALREADY_CHECKED_IN"

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateGuestRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Category string `json:"category" binding:"required,guestcategory"`
}

type UpdateGuestRequestBody struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Category *string `json:"category,omitempty" binding:"omitempty,guestcategory"`
}

type ApplyRequestBody struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type RequestLinkRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

type ValidateLinkRequestBody struct {
	Email string `json:"email" binding:"required,email"`
	Hash  string `json:"hash" binding:"required"`
}

type SubmitRegistrationRequestBody struct {
	Email        string  `json:"email" binding:"required,email"`
	Hash         string  `json:"hash" binding:"required"`
	TicketType   string  `json:"ticket_type" binding:"required"`
	Method       string  `json:"method,omitempty" binding:"omitempty,oneof=card bank_transfer"`
	PartnerName  *string `json:"partner_name,omitempty"`
	PartnerEmail *string `json:"partner_email,omitempty" binding:"omitempty,email"`
}

type GenerateTicketRequestBody struct {
	RegistrationID uint `json:"registration_id" binding:"required"`
	Regenerate     bool `json:"regenerate,omitempty"`
}

type ValidateTicketRequestBody struct {
	Token string `json:"token" binding:"required"`
}

type SubmitCheckinRequestBody struct {
	RegistrationID uint `json:"registration_id" binding:"required"`
	Override       bool `json:"override,omitempty"`
}

type CreateTableRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Capacity uint   `json:"capacity" binding:"required,min=1"`
}

type AssignSeatRequestBody struct {
	GuestID uint  `json:"guest_id" binding:"required"`
	TableID *uint `json:"table_id,omitempty"`
}

type CreateEmailTemplateRequestBody struct {
	Name    string `json:"name" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

type ScheduleEmailRequestBody struct {
	TemplateID uint   `json:"template_id" binding:"required"`
	SendAt     string `json:"send_at" binding:"required" time_format:"2006-01-02 15:04:05 -07:00"`
	Category   string `json:"category,omitempty" binding:"omitempty,guestcategory"`
	Status     string `json:"status,omitempty"`
}

type ConfirmPaymentRequestBody struct {
	Reference string `json:"reference,omitempty"`
}

type StaffLoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GuestSummary is the shape returned to the scanning UI and the
// registration flow; it never carries credential material.
type GuestSummary struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

type CheckinSummary struct {
	ID          uint      `json:"id"`
	CheckedInAt time.Time `json:"checked_in_at"`
	StaffUserID uint      `json:"staff_user_id"`
	IsOverride  bool      `json:"is_override"`
}
