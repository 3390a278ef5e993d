package payments

import (
	"context"
	"errors"
)

// ErrCardDeclined covers any gateway-side rejection of a charge. The caller
// records the failure and lets the user retry; everything else is treated as
// an infrastructure error.
var ErrCardDeclined = errors.New("card declined")

// CardInfo is the display metadata stored alongside a tokenized card.
type CardInfo struct {
	Brand    string
	Last4    string
	ExpMonth int
	ExpYear  int
}

// CardGateway wraps the card processor. Tokenization happens in the browser;
// the server only ever handles opaque payment-method ids.
type CardGateway interface {
	// RegisterCard attaches a tokenized payment method to the user's
	// processor-side customer, creating the customer on first use.
	RegisterCard(ctx context.Context, customerID, email, name, paymentMethodID string) (*CardInfo, string, error)
	// ChargeCard collects amount (in the account currency) off-session.
	// Returns the processor transaction id.
	ChargeCard(ctx context.Context, customerID, paymentMethodID string, amount float64, description string) (string, error)
}

// RedirectGateway wraps an approval-redirect processor: the server creates an
// order, the user approves it on the processor's site, and the server captures
// it afterward.
type RedirectGateway interface {
	CreateOrder(ctx context.Context, amount float64, description string) (orderID, approvalURL string, err error)
	CaptureOrder(ctx context.Context, orderID string) (transactionID string, err error)
}
