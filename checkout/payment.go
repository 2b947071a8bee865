package checkout

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentSession is a placeholder checkout session. A real deployment would
// create this against the payment provider's API and redirect the customer.
type PaymentSession struct {
	SessionID string    `json:"sessionId"`
	URL       string    `json:"url"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func newPaymentSession(orderIDs []string, amount float64) PaymentSession {
	base := os.Getenv("PAYMENT_BASE_URL")
	if base == "" {
		base = "https://pay.example.com"
	}
	id := "cs_" + uuid.NewString()
	return PaymentSession{
		SessionID: id,
		URL:       fmt.Sprintf("%s/session/%s?orders=%s", base, id, strings.Join(orderIDs, ",")),
		Amount:    amount,
		Currency:  "USD",
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
}
