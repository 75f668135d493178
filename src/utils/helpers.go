package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"gala/src/db"
	"gala/src/lib"
	"gala/src/lib/mailer"
	"gala/src/models"
	"gala/src/types"
	"log"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ticket prices in cents by guest category. Paired covers two attendees
// under one registration.
const (
	PRICE_SINGLE_CENTS int64 = 25_000
	PRICE_PAIRED_CENTS int64 = 45_000
	PRICE_CURRENCY           = "usd"
)

func TicketPriceCents(category string) int64 {
	if category == string(types.GUEST_PAYING_PAIRED) {
		return PRICE_PAIRED_CENTS
	}
	return PRICE_SINGLE_CENTS
}

func CreateNewGuest(params *types.CreateGuestRequestBody) (uint, error) {
	guest := models.Guest{
		Name:     params.Name,
		Email:    strings.ToLower(strings.TrimSpace(params.Email)),
		Category: params.Category,
		Status:   string(types.GUEST_PENDING),
	}
	gdb := db.GetDb()
	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&guest).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("a guest with email [%s] already exists", guest.Email)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return guest.ID, nil
}

// GenerateAccessCode returns a short alphanumeric code for the companion
// app. Ambiguous characters are left out of the alphabet.
func GenerateAccessCode(length int) (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		code[i] = alphabet[n.Int64()]
	}
	return string(code), nil
}

// ApproveGuest flips an applicant or registered guest to approved,
// assigns the companion-app access code and leaves an audit trail.
func ApproveGuest(id uint, actor types.SessionIdentity) error {
	code, err := GenerateAccessCode(6)
	if err != nil {
		return err
	}
	gdb := db.GetDb()
	return gdb.Transaction(func(tx *gorm.DB) error {
		var guest models.Guest
		if err := tx.Where(&models.Guest{ID: id}).First(&guest).Error; err != nil {
			return err
		}
		updates := map[string]any{"access_code": code}
		if guest.Status == string(types.GUEST_PENDING_APPROVAL) {
			updates["status"] = string(types.GUEST_INVITED)
		} else {
			updates["status"] = string(types.GUEST_APPROVED)
		}
		if err := tx.Model(&models.Guest{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		trail := models.TrailLog{
			Type:      "guest_approve",
			Initiator: fmt.Sprint(actor.UserID),
			Group:     fmt.Sprintf("guest:%d", id),
		}
		return tx.Create(&trail).Error
	})
}

func RejectGuest(id uint, actor types.SessionIdentity) error {
	gdb := db.GetDb()
	return gdb.Transaction(func(tx *gorm.DB) error {
		var guest models.Guest
		if err := tx.Where(&models.Guest{ID: id}).First(&guest).Error; err != nil {
			return err
		}
		newStatus := string(types.GUEST_DECLINED)
		if guest.Status == string(types.GUEST_PENDING_APPROVAL) {
			newStatus = string(types.GUEST_REJECTED)
		}
		if err := tx.Model(&models.Guest{}).Where("id = ?", id).Update("status", newStatus).Error; err != nil {
			return err
		}
		trail := models.TrailLog{
			Type:      "guest_reject",
			Initiator: fmt.Sprint(actor.UserID),
			Group:     fmt.Sprintf("guest:%d", id),
		}
		return tx.Create(&trail).Error
	})
}

// CancelRegistration cancels a guest's registration, invalidates the
// issued ticket token and marks any payment refunded. Registration and
// Guest are written together in one transaction.
func CancelRegistration(guestId uint, reason string, actor types.SessionIdentity) error {
	now := time.Now()
	gdb := db.GetDb()
	return gdb.Transaction(func(tx *gorm.DB) error {
		var registration models.Registration
		if err := tx.Where(&models.Registration{GuestID: guestId}).First(&registration).Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Registration{}).
			Where("id = ?", registration.ID).
			Updates(map[string]any{
				"ticket_token":  nil,
				"cancelled_at":  now,
				"cancel_reason": reason,
			}).Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Guest{}).
			Where("id = ?", guestId).
			Update("status", string(types.GUEST_CANCELLED)).Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Payment{}).
			Where(&models.Payment{RegistrationID: registration.ID, Status: string(types.PAYMENT_PAID)}).
			Update("status", string(types.PAYMENT_REFUNDED)).Error; err != nil {
			return err
		}
		trail := models.TrailLog{
			Type:      "registration_cancel",
			Initiator: fmt.Sprint(actor.UserID),
			Group:     fmt.Sprintf("guest:%d", guestId),
		}
		return tx.Create(&trail).Error
	})
}

// AssignGuestToTable seats a guest, enforcing table capacity. A nil
// tableId unassigns.
func AssignGuestToTable(guestId uint, tableId *uint) error {
	gdb := db.GetDb()
	return gdb.Transaction(func(tx *gorm.DB) error {
		var guest models.Guest
		if err := tx.Where(&models.Guest{ID: guestId}).First(&guest).Error; err != nil {
			return err
		}
		if tableId == nil {
			return tx.Model(&models.Guest{}).Where("id = ?", guestId).Update("table_id", nil).Error
		}
		var table models.Table
		if err := tx.Where(&models.Table{ID: *tableId}).First(&table).Error; err != nil {
			return err
		}
		var seated int64
		if err := tx.
			Model(&models.Guest{}).
			Where("table_id = ? AND id <> ?", *tableId, guestId).
			Count(&seated).Error; err != nil {
			return err
		}
		if uint(seated) >= table.Capacity {
			return fmt.Errorf("table [%s] is already at capacity", table.Name)
		}
		return tx.Model(&models.Guest{}).Where("id = ?", guestId).Update("table_id", *tableId).Error
	})
}

// SendMagicLinkEmail mails the registration link to a guest.
func SendMagicLinkEmail(guest *models.Guest, hash string, expiresAt *time.Time) error {
	appHost := os.Getenv("APP_HOST")
	link := fmt.Sprintf("%s/register?email=%s&hash=%s", appHost, guest.Email, hash)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You are invited to the CEO Gala. Use the link below to complete your registration:</p>
		<p><a href="%s">%s</a></p>
		<p>The link is valid until %s and can only be used once.</p>
	`, guest.Name, link, link, expiresAt.Format(time.RFC1123))
	return mailer.NewMailerMessage(&lib.SendMailInput{
		FromName: "CEO Gala",
		Subject:  "Your registration link",
		To:       []string{guest.Email},
		Body:     body,
		Html:     true,
	})
}

// IssueAndEmailTicket generates the ticket for a registration and mails
// the QR image to the guest. Called once payment clears, or immediately
// for VIPs.
func IssueAndEmailTicket(registrationId uint) error {
	result, terr, err := GenerateTicket(registrationId, false)
	if err != nil {
		log.Printf("Error generating ticket for Registration [%d]: code=%s error=%s\n", registrationId, terr, err.Error())
		return err
	}
	var registration models.Registration
	gdb := db.GetDb()
	if err := gdb.
		Where(&models.Registration{ID: registrationId}).
		Preload("Guest").
		First(&registration).Error; err != nil {
		return err
	}
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your ticket for the CEO Gala is attached. Present the QR code at the door.</p>
	`, registration.Guest.Name)
	return mailer.NewMailerMessage(&lib.SendMailInput{
		FromName:    "CEO Gala",
		Subject:     "Your CEO Gala ticket",
		To:          []string{registration.Guest.Email},
		Body:        body,
		Html:        true,
		Attachments: []string{result.ImagePath},
	})
}

// MarkPaymentPaid flips a payment to paid by reference and issues the
// ticket. Shared by the stripe webhook and the bank-transfer confirm
// path.
func MarkPaymentPaid(reference uuid.UUID, checkoutSessionId *string) error {
	var payment models.Payment
	gdb := db.GetDb()
	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&models.Payment{ReferenceID: reference}).First(&payment).Error; err != nil {
			return err
		}
		if payment.Status == string(types.PAYMENT_PAID) {
			return nil
		}
		now := time.Now()
		updates := map[string]any{
			"status":  string(types.PAYMENT_PAID),
			"paid_at": now,
		}
		if checkoutSessionId != nil {
			updates["checkout_session_id"] = *checkoutSessionId
		}
		return tx.Model(&models.Payment{}).Where("id = ?", payment.ID).Updates(updates).Error
	})
	if err != nil {
		return err
	}
	go func() {
		if err := IssueAndEmailTicket(payment.RegistrationID); err != nil {
			log.Printf("Error issuing ticket after payment [%s]: %s\n", reference.String(), err.Error())
		}
	}()
	return nil
}

// SweepScheduledEmails sends every pending scheduled email whose send
// time has passed. Runs under the gocron sweep job.
func SweepScheduledEmails() {
	gdb := db.GetDb()
	var due []models.ScheduledEmail
	if err := gdb.
		Where(&models.ScheduledEmail{State: string(types.EMAIL_PENDING)}).
		Where("send_at <= ?", time.Now()).
		Preload("Template").
		Limit(50).
		Find(&due).Error; err != nil {
		log.Printf("Error retrieving scheduled emails: %s\n", err.Error())
		return
	}
	for _, scheduled := range due {
		recipients, err := recipientsForSchedule(gdb, &scheduled)
		if err != nil {
			log.Printf("Error resolving recipients for ScheduledEmail [%d]: %s\n", scheduled.ID, err.Error())
			continue
		}
		failed := false
		for _, guest := range recipients {
			body, err := mailer.RenderTemplate(&scheduled.Template, map[string]any{
				"Name":     guest.Name,
				"Email":    guest.Email,
				"Category": guest.Category,
			})
			if err != nil {
				log.Printf("Error rendering template [%s]: %s\n", scheduled.Template.Slug, err.Error())
				failed = true
				break
			}
			if err := mailer.NewMailerMessage(&lib.SendMailInput{
				FromName: "CEO Gala",
				Subject:  scheduled.Template.Subject,
				To:       []string{guest.Email},
				Body:     body,
				Html:     true,
			}); err != nil {
				log.Printf("Error sending scheduled email to [%s]: %s\n", guest.Email, err.Error())
				failed = true
			}
		}
		state := string(types.EMAIL_SENT)
		if failed {
			state = string(types.EMAIL_FAILED)
		}
		now := time.Now()
		if err := gdb.
			Model(&models.ScheduledEmail{}).
			Where("id = ?", scheduled.ID).
			Updates(map[string]any{"state": state, "sent_at": now}).Error; err != nil {
			log.Printf("Error updating ScheduledEmail [%d]: %s\n", scheduled.ID, err.Error())
		}
	}
}

func recipientsForSchedule(gdb *gorm.DB, scheduled *models.ScheduledEmail) ([]models.Guest, error) {
	var guests []models.Guest
	q := gdb.Model(&models.Guest{})
	if scheduled.Category != nil {
		q = q.Where("category = ?", *scheduled.Category)
	}
	if scheduled.Status != nil {
		q = q.Where("status = ?", *scheduled.Status)
	}
	err := q.Find(&guests).Error
	return guests, err
}
