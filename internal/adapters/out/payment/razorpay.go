package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const razorpayDefaultBaseURL = "https://api.razorpay.com"

// RazorpayConfig carries the key pair for the Razorpay orders API. BaseURL
// defaults to the production API host when empty.
type RazorpayConfig struct {
	BaseURL     string
	KeyID       string
	KeySecret   string
	CheckoutURL string
	HTTP        *http.Client
}

// RazorpayGateway implements ports.PaymentGateway against the Razorpay
// orders API. Checkout callbacks carry a signature that is the hex
// HMAC-SHA256 of "<order reference>|<payment id>" under the key secret.
type RazorpayGateway struct {
	cfg  RazorpayConfig
	http *http.Client
}

// NewRazorpayGateway creates a RazorpayGateway.
func NewRazorpayGateway(cfg RazorpayConfig) (*RazorpayGateway, error) {
	if err := errors.Join(
		requireValue("KeyID", cfg.KeyID),
		requireValue("KeySecret", cfg.KeySecret),
	); err != nil {
		return nil, err
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = razorpayDefaultBaseURL
	}

	client := cfg.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &RazorpayGateway{cfg: cfg, http: client}, nil
}

type razorpayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Create registers a Razorpay order for the amount and returns its id as the
// payment reference. The amount is converted to paise.
func (g *RazorpayGateway) Create(ctx context.Context, orderID kernel.UUID, amount float64) (ports.PaymentIntent, error) {
	if amount <= 0 {
		return ports.PaymentIntent{}, errs.NewValueIsInvalidError("amount")
	}

	body, err := json.Marshal(razorpayOrderRequest{
		Amount:   int64(amount*100 + 0.5),
		Currency: "INR",
		Receipt:  orderID.String(),
	})
	if err != nil {
		return ports.PaymentIntent{}, fmt.Errorf("marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return ports.PaymentIntent{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.cfg.KeyID, g.cfg.KeySecret)

	resp, err := g.http.Do(req)
	if err != nil {
		return ports.PaymentIntent{}, fmt.Errorf("razorpay order request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.PaymentIntent{}, fmt.Errorf("razorpay order rejected: %s", resp.Status)
	}

	var out razorpayOrder
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ports.PaymentIntent{}, fmt.Errorf("decode order response: %w", err)
	}
	if out.ID == "" {
		return ports.PaymentIntent{}, fmt.Errorf("razorpay order response missing id")
	}

	return ports.PaymentIntent{
		Reference:   out.ID,
		RedirectURL: g.cfg.CheckoutURL + "/" + out.ID,
	}, nil
}

// Verify fetches the order and maps its settlement state. Razorpay orders
// never report a terminal failure themselves, so anything short of "paid"
// stays pending.
func (g *RazorpayGateway) Verify(ctx context.Context, reference string) (ports.PaymentOutcome, error) {
	if reference == "" {
		return ports.PaymentOutcomePending, errs.NewValueIsRequiredError("reference")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+"/v1/orders/"+reference, nil)
	if err != nil {
		return ports.PaymentOutcomePending, err
	}
	req.SetBasicAuth(g.cfg.KeyID, g.cfg.KeySecret)

	resp, err := g.http.Do(req)
	if err != nil {
		return ports.PaymentOutcomePending, fmt.Errorf("razorpay order lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.PaymentOutcomePending, fmt.Errorf("razorpay order lookup rejected: %s", resp.Status)
	}

	var out razorpayOrder
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ports.PaymentOutcomePending, fmt.Errorf("decode order response: %w", err)
	}

	if out.Status == "paid" {
		return ports.PaymentOutcomeSuccess, nil
	}
	return ports.PaymentOutcomePending, nil
}

// VerifySignature checks the checkout callback signature for the given order
// reference and payment id. A mismatch returns ErrInvalidCallback.
func (g *RazorpayGateway) VerifySignature(orderReference, paymentID, signature string) error {
	if orderReference == "" || paymentID == "" || signature == "" {
		return ErrInvalidCallback
	}

	mac := hmac.New(sha256.New, []byte(g.cfg.KeySecret))
	mac.Write([]byte(orderReference + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidCallback
	}
	return nil
}
