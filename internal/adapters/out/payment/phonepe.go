// Package payment contains outbound adapters for external payment providers.
// Each adapter implements ports.PaymentGateway so the application layer can
// reconcile payments without knowing which provider is wired in.
package payment

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// ErrInvalidCallback means a provider callback payload could not be decoded
// or failed its integrity check. Callers must not treat it as a payment
// failure reported by the provider.
var ErrInvalidCallback = errors.New("payment callback payload is invalid")

const (
	phonePePayPath    = "/pg/v1/pay"
	phonePeStatusPath = "/pg/v1/status"

	phonePeCodeSuccess = "PAYMENT_SUCCESS"
	phonePeCodePending = "PAYMENT_PENDING"
)

// PhonePeConfig carries the merchant credentials and URLs for the PhonePe
// hosted-checkout flow.
type PhonePeConfig struct {
	BaseURL     string
	MerchantID  string
	SaltKey     string
	SaltIndex   string
	RedirectURL string
	CallbackURL string
	HTTP        *http.Client
}

// PhonePeGateway implements ports.PaymentGateway against the PhonePe
// pay-page API. Requests are authenticated with the X-VERIFY checksum:
// SHA256 of the base64 payload, the request path and the salt key, suffixed
// with "###" and the salt index.
type PhonePeGateway struct {
	cfg  PhonePeConfig
	http *http.Client
}

// NewPhonePeGateway creates a PhonePeGateway.
func NewPhonePeGateway(cfg PhonePeConfig) (*PhonePeGateway, error) {
	if err := errors.Join(
		requireValue("BaseURL", cfg.BaseURL),
		requireValue("MerchantID", cfg.MerchantID),
		requireValue("SaltKey", cfg.SaltKey),
		requireValue("SaltIndex", cfg.SaltIndex),
	); err != nil {
		return nil, err
	}

	client := cfg.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &PhonePeGateway{cfg: cfg, http: client}, nil
}

func requireValue(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}

type phonePePayRequest struct {
	MerchantID            string               `json:"merchantId"`
	MerchantTransactionID string               `json:"merchantTransactionId"`
	MerchantUserID        string               `json:"merchantUserId"`
	Amount                int64                `json:"amount"`
	RedirectURL           string               `json:"redirectUrl"`
	RedirectMode          string               `json:"redirectMode"`
	CallbackURL           string               `json:"callbackUrl"`
	PaymentInstrument     phonePePayInstrument `json:"paymentInstrument"`
}

type phonePePayInstrument struct {
	Type string `json:"type"`
}

type phonePePayResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		InstrumentResponse struct {
			RedirectInfo struct {
				URL string `json:"url"`
			} `json:"redirectInfo"`
		} `json:"instrumentResponse"`
	} `json:"data"`
}

type phonePeStatusResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Create registers a pay-page transaction and returns the merchant
// transaction id together with the hosted checkout URL.
func (g *PhonePeGateway) Create(ctx context.Context, orderID kernel.UUID, amount float64) (ports.PaymentIntent, error) {
	if amount <= 0 {
		return ports.PaymentIntent{}, errs.NewValueIsInvalidError("amount")
	}

	reference := newTransactionReference(orderID)
	payload := phonePePayRequest{
		MerchantID:            g.cfg.MerchantID,
		MerchantTransactionID: reference,
		MerchantUserID:        "MUID" + suffix(orderID.String(), 4),
		Amount:                int64(amount*100 + 0.5),
		RedirectURL:           g.cfg.RedirectURL + "/" + reference,
		RedirectMode:          "POST",
		CallbackURL:           g.cfg.CallbackURL,
		PaymentInstrument:     phonePePayInstrument{Type: "PAY_PAGE"},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return ports.PaymentIntent{}, fmt.Errorf("marshal pay request: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	body, err := json.Marshal(map[string]string{"request": encoded})
	if err != nil {
		return ports.PaymentIntent{}, fmt.Errorf("marshal pay envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+phonePePayPath, bytes.NewReader(body))
	if err != nil {
		return ports.PaymentIntent{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-VERIFY", g.checksum(encoded, phonePePayPath))

	resp, err := g.http.Do(req)
	if err != nil {
		return ports.PaymentIntent{}, fmt.Errorf("phonepe pay request: %w", err)
	}
	defer resp.Body.Close()

	var out phonePePayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ports.PaymentIntent{}, fmt.Errorf("decode pay response: %w", err)
	}
	if !out.Success {
		return ports.PaymentIntent{}, fmt.Errorf("phonepe pay rejected: %s %s", out.Code, out.Message)
	}

	redirect := out.Data.InstrumentResponse.RedirectInfo.URL
	if redirect == "" {
		return ports.PaymentIntent{}, fmt.Errorf("phonepe pay response missing redirect url")
	}

	return ports.PaymentIntent{Reference: reference, RedirectURL: redirect}, nil
}

// Verify polls the transaction status endpoint. The provider's answer is
// authoritative over anything a callback claimed.
func (g *PhonePeGateway) Verify(ctx context.Context, reference string) (ports.PaymentOutcome, error) {
	if strings.TrimSpace(reference) == "" {
		return ports.PaymentOutcomePending, errs.NewValueIsRequiredError("reference")
	}

	path := phonePeStatusPath + "/" + g.cfg.MerchantID + "/" + reference

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+path, nil)
	if err != nil {
		return ports.PaymentOutcomePending, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-VERIFY", g.checksum("", path))
	req.Header.Set("X-MERCHANT-ID", g.cfg.MerchantID)

	resp, err := g.http.Do(req)
	if err != nil {
		return ports.PaymentOutcomePending, fmt.Errorf("phonepe status request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.PaymentOutcomePending, fmt.Errorf("read status response: %w", err)
	}

	var out phonePeStatusResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return ports.PaymentOutcomePending, fmt.Errorf("decode status response: %w", err)
	}

	switch out.Code {
	case phonePeCodeSuccess:
		return ports.PaymentOutcomeSuccess, nil
	case phonePeCodePending:
		return ports.PaymentOutcomePending, nil
	default:
		return ports.PaymentOutcomeFailed, nil
	}
}

// DecodeCallback extracts the merchant transaction id from a server-to-server
// callback body of the form {"response": "<base64 json>"}. It only identifies
// the transaction; the caller still verifies the status with the provider.
func (g *PhonePeGateway) DecodeCallback(body []byte) (string, error) {
	var envelope struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Response == "" {
		return "", ErrInvalidCallback
	}

	decoded, err := base64.StdEncoding.DecodeString(envelope.Response)
	if err != nil {
		return "", ErrInvalidCallback
	}

	var payload struct {
		Code                  string `json:"code"`
		MerchantTransactionID string `json:"merchantTransactionId"`
		Data                  struct {
			MerchantTransactionID string `json:"merchantTransactionId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return "", ErrInvalidCallback
	}

	reference := payload.MerchantTransactionID
	if reference == "" {
		reference = payload.Data.MerchantTransactionID
	}
	if reference == "" {
		return "", ErrInvalidCallback
	}
	return reference, nil
}

func (g *PhonePeGateway) checksum(encodedPayload, path string) string {
	sum := sha256.Sum256([]byte(encodedPayload + path + g.cfg.SaltKey))
	return hex.EncodeToString(sum[:]) + "###" + g.cfg.SaltIndex
}

func newTransactionReference(orderID kernel.UUID) string {
	return "MT" + strconv.FormatInt(time.Now().UnixMilli(), 10) + suffix(orderID.String(), 4)
}

func suffix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
