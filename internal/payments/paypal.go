package payments

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/plutov/paypal/v4"
)

// PayPalGateway drives the order-approve-capture flow against the PayPal
// Orders API.
type PayPalGateway struct {
	client    *paypal.Client
	returnURL string
	cancelURL string
}

func NewPayPalGateway(clientID, secret string, live bool, returnURL, cancelURL string) (*PayPalGateway, error) {
	base := paypal.APIBaseSandBox
	if live {
		base = paypal.APIBaseLive
	}
	client, err := paypal.NewClient(clientID, secret, base)
	if err != nil {
		return nil, fmt.Errorf("create paypal client: %w", err)
	}
	return &PayPalGateway{
		client:    client,
		returnURL: returnURL,
		cancelURL: cancelURL,
	}, nil
}

func (g *PayPalGateway) CreateOrder(ctx context.Context, amount float64, description string) (string, string, error) {
	if _, err := g.client.GetAccessToken(ctx); err != nil {
		return "", "", fmt.Errorf("paypal access token: %w", err)
	}

	units := []paypal.PurchaseUnitRequest{
		{
			Amount: &paypal.PurchaseUnitAmount{
				Currency: "USD",
				Value:    strconv.FormatFloat(amount, 'f', 2, 64),
			},
			Description: description,
		},
	}
	appCtx := &paypal.ApplicationContext{
		ReturnURL: g.returnURL,
		CancelURL: g.cancelURL,
	}

	order, err := g.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, appCtx)
	if err != nil {
		return "", "", fmt.Errorf("create paypal order: %w", err)
	}

	approvalURL := ""
	for _, link := range order.Links {
		if strings.EqualFold(link.Rel, "approve") {
			approvalURL = link.Href
			break
		}
	}
	if approvalURL == "" {
		return "", "", fmt.Errorf("paypal order %s has no approval link", order.ID)
	}

	return order.ID, approvalURL, nil
}

func (g *PayPalGateway) CaptureOrder(ctx context.Context, orderID string) (string, error) {
	if _, err := g.client.GetAccessToken(ctx); err != nil {
		return "", fmt.Errorf("paypal access token: %w", err)
	}

	capture, err := g.client.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return "", fmt.Errorf("capture paypal order: %w", err)
	}
	if capture.Status != "COMPLETED" {
		return "", fmt.Errorf("%w: capture status %s", ErrCardDeclined, capture.Status)
	}

	return capture.ID, nil
}
