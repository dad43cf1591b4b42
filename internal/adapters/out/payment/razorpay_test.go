package payment_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/adapters/out/payment"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
)

func newRazorpayGateway(t *testing.T, baseURL string) *payment.RazorpayGateway {
	t.Helper()

	gateway, err := payment.NewRazorpayGateway(payment.RazorpayConfig{
		BaseURL:     baseURL,
		KeyID:       "rzp_test_key",
		KeySecret:   "rzp_test_secret",
		CheckoutURL: "https://app.example.com/checkout",
	})
	require.NoError(t, err)
	return gateway
}

func TestNewRazorpayGateway_RequiresKeyPair(t *testing.T) {
	_, err := payment.NewRazorpayGateway(payment.RazorpayConfig{KeyID: "rzp_test_key"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "KeySecret")
}

func TestRazorpayGateway_Create(t *testing.T) {
	orderID := kernel.NewUUID()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_test_secret", pass)

		var request struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Receipt  string `json:"receipt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, int64(25000), request.Amount)
		assert.Equal(t, "INR", request.Currency)
		assert.Equal(t, orderID.String(), request.Receipt)

		io.WriteString(w, `{"id":"order_abc123","status":"created"}`)
	}))
	defer server.Close()

	gateway := newRazorpayGateway(t, server.URL)

	intent, err := gateway.Create(context.Background(), orderID, 250)

	require.NoError(t, err)
	assert.Equal(t, "order_abc123", intent.Reference)
	assert.Equal(t, "https://app.example.com/checkout/order_abc123", intent.RedirectURL)
}

func TestRazorpayGateway_Create_RejectsNonPositiveAmount(t *testing.T) {
	gateway := newRazorpayGateway(t, "https://example.com")

	_, err := gateway.Create(context.Background(), kernel.NewUUID(), 0)

	require.Error(t, err)
}

func TestRazorpayGateway_Verify(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		expected ports.PaymentOutcome
	}{
		{"paid order settles", "paid", ports.PaymentOutcomeSuccess},
		{"created order stays pending", "created", ports.PaymentOutcomePending},
		{"attempted order stays pending", "attempted", ports.PaymentOutcomePending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/orders/order_abc123", r.URL.Path)
				io.WriteString(w, `{"id":"order_abc123","status":"`+tt.status+`"}`)
			}))
			defer server.Close()

			gateway := newRazorpayGateway(t, server.URL)

			outcome, err := gateway.Verify(context.Background(), "order_abc123")

			require.NoError(t, err)
			assert.Equal(t, tt.expected, outcome)
		})
	}
}

func TestRazorpayGateway_VerifySignature(t *testing.T) {
	gateway := newRazorpayGateway(t, "https://example.com")

	mac := hmac.New(sha256.New, []byte("rzp_test_secret"))
	mac.Write([]byte("order_abc123|pay_xyz789"))
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.NoError(t, gateway.VerifySignature("order_abc123", "pay_xyz789", signature))
	assert.ErrorIs(t, gateway.VerifySignature("order_abc123", "pay_other", signature), payment.ErrInvalidCallback)
	assert.ErrorIs(t, gateway.VerifySignature("order_abc123", "pay_xyz789", ""), payment.ErrInvalidCallback)
}
