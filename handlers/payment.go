package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// CreatePaymentIntent opens a Stripe PaymentIntent for the session's booking
// so the card form can collect payment client-side. The amount comes from the
// consultant snapshot in the draft; an hour is the standard consultation
// length.
func CreatePaymentIntent(c *gin.Context) {
	sess, err := WizardService.Get(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondWizardError(c, err)
		return
	}
	if sess.Draft.Consultant == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "consultant_missing",
			"message": "a consultant must be selected before payment"})
		return
	}

	currency := strings.ToLower(sess.Draft.Consultant.Currency)
	if currency == "" {
		currency = "eur"
	}
	amount := int64(sess.Draft.Consultant.HourlyRate * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("sessionID", sess.SessionID)
	if sess.Draft.BookingID != "" {
		params.AddMetadata("bookingID", sess.Draft.BookingID)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment_intent_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clientSecret": intent.ClientSecret,
		"amount":       amount,
		"currency":     currency,
	})
}
