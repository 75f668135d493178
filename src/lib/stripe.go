package lib

import (
	"context"
	"fmt"
	"os"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// CreateGalaCheckout opens a hosted checkout session for a registration
// payment. The reference id rides along in metadata so the webhook can
// find the payment row.
func CreateGalaCheckout(ctx context.Context, amountCents int64, currency, reference, guestEmail string) (*stripe.CheckoutSession, error) {
	sc := GetStripeClient()
	successUrl := fmt.Sprintf("%s/register/callback/success", os.Getenv("APP_HOST"))
	cancelUrl := fmt.Sprintf("%s/register/callback/cancel", os.Getenv("APP_HOST"))
	params := stripe.CheckoutSessionCreateParams{
		SuccessURL:    stripe.String(successUrl),
		CancelURL:     stripe.String(cancelUrl),
		UIMode:        stripe.String("hosted"),
		Mode:          stripe.String("payment"),
		CustomerEmail: stripe.String(guestEmail),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(amountCents),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String("CEO Gala ticket"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{"reference": reference},
	}
	return sc.V1CheckoutSessions.Create(ctx, &params)
}
