package main

import (
	"encoding/json"
	"gala/src/db"
	"gala/src/models"
	"gala/src/types"
	"gala/src/utils"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"
)

func stripeWebhookRoute(g *gin.RouterGroup) *gin.RouterGroup {
	g.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "checkout.session.completed":
			var cs stripe.CheckoutSession
			err := json.Unmarshal(event.Data.Raw, &cs)
			if err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				break
			}
			reference, err := uuid.Parse(cs.Metadata["reference"])
			if err != nil {
				log.Printf("[Stripe] Session %s carries no payment reference: %s\n", cs.ID, err.Error())
				break
			}
			if err := utils.MarkPaymentPaid(reference, &cs.ID); err != nil {
				log.Printf("[Stripe] Error settling payment %s: %s\n", reference, err.Error())
			}
		case "checkout.session.expired":
			var cs stripe.CheckoutSession
			err := json.Unmarshal(event.Data.Raw, &cs)
			if err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				break
			}
			gdb := db.GetDb()
			err = gdb.Transaction(func(tx *gorm.DB) error {
				return tx.
					Model(&models.Payment{}).
					Where("checkout_session_id = ? AND status = ?", cs.ID, string(types.PAYMENT_PENDING)).
					Update("status", string(types.PAYMENT_FAILED)).Error
			})
			if err != nil {
				log.Printf("[Stripe] Error marking payment failed for session %s: %s\n", cs.ID, err.Error())
			}
		}
		ctx.Status(http.StatusOK)
	})
	return g
}
