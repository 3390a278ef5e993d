package payments

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/paymentmethod"
)

// StripeGateway charges stored cards off-session through the Stripe API.
type StripeGateway struct{}

func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) RegisterCard(
	ctx context.Context,
	customerID, email, name, paymentMethodID string,
) (*CardInfo, string, error) {
	if customerID == "" {
		params := &stripe.CustomerParams{
			Email: stripe.String(email),
		}
		if name != "" {
			params.Name = stripe.String(name)
		}
		params.Context = ctx
		cust, err := customer.New(params)
		if err != nil {
			return nil, "", fmt.Errorf("create customer: %w", err)
		}
		customerID = cust.ID
	}

	attachParams := &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	}
	attachParams.Context = ctx
	pm, err := paymentmethod.Attach(paymentMethodID, attachParams)
	if err != nil {
		return nil, "", fmt.Errorf("attach payment method: %w", err)
	}
	if pm.Card == nil {
		return nil, "", fmt.Errorf("payment method %s is not a card", paymentMethodID)
	}

	return &CardInfo{
		Brand:    string(pm.Card.Brand),
		Last4:    pm.Card.Last4,
		ExpMonth: int(pm.Card.ExpMonth),
		ExpYear:  int(pm.Card.ExpYear),
	}, customerID, nil
}

func (g *StripeGateway) ChargeCard(
	ctx context.Context,
	customerID, paymentMethodID string,
	amount float64,
	description string,
) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(toCents(amount)),
		Currency:      stripe.String(string(stripe.CurrencyUSD)),
		Customer:      stripe.String(customerID),
		PaymentMethod: stripe.String(paymentMethodID),
		Description:   stripe.String(description),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return "", fmt.Errorf("%w: %s", ErrCardDeclined, stripeErr.Msg)
		}
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return "", fmt.Errorf("%w: intent status %s", ErrCardDeclined, intent.Status)
	}

	return intent.ID, nil
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
