package main

import (
	"context"
	"errors"
	"fmt"
	"gala/src/db"
	"gala/src/lib"
	"gala/src/lib/mailer"
	"gala/src/models"
	"gala/src/types"
	"gala/src/utils"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func registrationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/registration/validate", func(ctx *gin.Context) {
			var body types.ValidateLinkRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			summary, cerr, err := utils.ValidateCredential(body.Hash, body.Email)
			if err != nil {
				log.Printf("Error validating credential: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if cerr != "" {
				ctx.JSON(http.StatusOK, gin.H{"valid": false, "error": cerr})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"valid": true, "guest": summary})
		}).
		POST("/registration/submit", func(ctx *gin.Context) {
			var body types.SubmitRegistrationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			summary, cerr, err := utils.ValidateCredential(body.Hash, body.Email)
			if err != nil {
				log.Printf("Error validating credential: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if cerr != "" {
				ctx.JSON(http.StatusOK, gin.H{"valid": false, "error": cerr})
				return
			}
			if summary.Category == string(types.GUEST_PAYING_PAIRED) && body.PartnerName == nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "partner details are required for a paired ticket"})
				return
			}

			registration := models.Registration{
				GuestID:      summary.ID,
				TicketType:   body.TicketType,
				PartnerName:  body.PartnerName,
				PartnerEmail: body.PartnerEmail,
			}
			var payment *models.Payment
			gdb := db.GetDb()
			err = gdb.Transaction(func(tx *gorm.DB) error {
				var existing int64
				if err := tx.
					Model(&models.Registration{}).
					Where(&models.Registration{GuestID: summary.ID}).
					Count(&existing).Error; err != nil {
					return err
				}
				if existing > 0 {
					return errors.New("a registration already exists for this guest")
				}
				if err := tx.Create(&registration).Error; err != nil {
					if errors.Is(err, gorm.ErrDuplicatedKey) {
						return errors.New("a registration already exists for this guest")
					}
					return err
				}
				if summary.Category != string(types.GUEST_VIP) {
					method := body.Method
					if method == "" {
						method = string(types.PAYMENT_CARD)
					}
					payment = &models.Payment{
						RegistrationID: registration.ID,
						Amount:         float64(utils.TicketPriceCents(summary.Category)) / 100,
						Currency:       utils.PRICE_CURRENCY,
						Method:         method,
						Status:         string(types.PAYMENT_PENDING),
						ReferenceID:    uuid.New(),
					}
					if err := tx.Create(payment).Error; err != nil {
						return err
					}
				}
				if err := tx.
					Model(&models.Guest{}).
					Where("id = ?", summary.ID).
					Update("status", string(types.GUEST_REGISTERED)).Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				log.Printf("Error submitting registration for guest [%d]: %s\n", summary.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			// The link is burned only after the terminal action succeeded.
			if err := utils.ConsumeCredential(summary.ID); err != nil {
				log.Printf("Error consuming credential for guest [%d]: %s\n", summary.ID, err.Error())
			}

			if summary.Category == string(types.GUEST_VIP) {
				go func() {
					if err := utils.IssueAndEmailTicket(registration.ID); err != nil {
						log.Printf("Error issuing VIP ticket for Registration [%d]: %s\n", registration.ID, err.Error())
					}
				}()
				ctx.JSON(http.StatusOK, gin.H{"registration_id": registration.ID, "ticket": "issued"})
				return
			}

			if payment.Method == string(types.PAYMENT_CARD) {
				session, err := lib.CreateGalaCheckout(
					context.Background(),
					utils.TicketPriceCents(summary.Category),
					payment.Currency,
					payment.ReferenceID.String(),
					summary.Email,
				)
				if err != nil {
					log.Printf("Error creating checkout session: %s\n", err.Error())
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "could not start the payment"})
					return
				}
				if err := gdb.
					Model(&models.Payment{}).
					Where("id = ?", payment.ID).
					Update("checkout_session_id", session.ID).Error; err != nil {
					log.Printf("Error saving checkout session id: %s\n", err.Error())
				}
				ctx.JSON(http.StatusOK, gin.H{"registration_id": registration.ID, "checkout_url": session.URL})
				return
			}

			// Bank transfer: the ticket waits for an admin confirmation.
			go func() {
				body := fmt.Sprintf(`
					<p>Thank you for registering for the CEO Gala.</p>
					<p>Please transfer the ticket amount to the account below and include the reference <b>%s</b>:</p>
					<p>%s</p>
					<p>Your ticket will be emailed once the transfer is confirmed.</p>
				`, payment.ReferenceID.String(), os.Getenv("BANK_TRANSFER_DETAILS"))
				if err := sendRegistrationMail(summary.Email, "Bank transfer instructions", body); err != nil {
					log.Printf("Error sending transfer instructions to [%s]: %s\n", summary.Email, err.Error())
				}
			}()
			ctx.JSON(http.StatusOK, gin.H{"registration_id": registration.ID, "payment_reference": payment.ReferenceID.String()})
		})
	return g
}

func sendRegistrationMail(to, subject, body string) error {
	return mailer.NewMailerMessage(&lib.SendMailInput{
		FromName: "CEO Gala",
		Subject:  subject,
		To:       []string{to},
		Body:     body,
		Html:     true,
	})
}
