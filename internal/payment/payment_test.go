package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(url string) *HostedGateway {
	return NewHostedGateway(Config{
		APIURL:     url,
		StoreID:    1234,
		AuthKey:    "key",
		Currency:   "TRY",
		Test:       true,
		SuccessURL: "https://shop.example/ok",
		Timeout:    time.Second,
	}, nil)
}

func TestCreateHostedCheckout(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"order":{"ref":"TX123","url":"https://pay.example/TX123"}}`))
	}))
	defer srv.Close()

	session, err := newGateway(srv.URL).CreateHostedCheckout(context.Background(), CheckoutRequest{
		CartID:      "ORD-1",
		Amount:      59.97,
		Description: "Order ORD-1",
		Customer:    Customer{Name: "Ayşe", City: "İzmir"},
	})
	require.NoError(t, err)
	assert.Equal(t, CheckoutSession{Ref: "TX123", URL: "https://pay.example/TX123"}, session)

	assert.Equal(t, "create", got["method"])
	assert.EqualValues(t, 1234, got["store"])
	order := got["order"].(map[string]interface{})
	assert.Equal(t, "ORD-1", order["cartid"])
	assert.Equal(t, "59.97", order["amount"])
	assert.Equal(t, "TRY", order["currency"])
	assert.EqualValues(t, 1, order["test"])
	returns := got["return"].(map[string]interface{})
	assert.Equal(t, "https://shop.example/ok", returns["authorised"])
}

func TestCreateHostedCheckoutFailures(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"non-200", http.StatusInternalServerError, "boom", "gateway status 500"},
		{"gateway error object", http.StatusOK, `{"error":{"code":"E01","message":"Invalid store"}}`, "Invalid store"},
		{"empty url", http.StatusOK, `{"order":{"ref":"TX1"}}`, "empty payment URL"},
		{"garbage", http.StatusOK, `not json`, "decode gateway response"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := newGateway(srv.URL).CreateHostedCheckout(context.Background(), CheckoutRequest{CartID: "c"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestCreateHostedCheckoutUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newGateway(srv.URL).CreateHostedCheckout(context.Background(), CheckoutRequest{CartID: "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reach payment gateway")
}

func TestCreateHostedCheckoutNotConfigured(t *testing.T) {
	_, err := NewHostedGateway(Config{}, nil).CreateHostedCheckout(context.Background(), CheckoutRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func signedForm(secret string, values map[string]string) url.Values {
	form := url.Values{}
	for k, v := range values {
		form.Set(k, v)
	}
	form.Set("tran_check", Signature(secret, form))
	return form
}

func TestParseWebhook(t *testing.T) {
	cases := map[string]Outcome{"A": OutcomeApproved, "a": OutcomeApproved, "D": OutcomeDeclined, "C": OutcomeDeclined, "H": OutcomePending, "": OutcomePending}
	for status, want := range cases {
		result, err := ParseWebhook(url.Values{"tran_cartid": {" ORD-9 "}, "tran_ref": {"TX9"}, "tran_type": {"Sale"}, "tran_status": {status}})
		require.NoError(t, err)
		assert.Equal(t, "ORD-9", result.CartID)
		assert.Equal(t, "TX9", result.TransactionRef)
		assert.Equal(t, "sale", result.Type)
		assert.Equal(t, want, result.Outcome, "status %q", status)
	}

	_, err := ParseWebhook(url.Values{"tran_status": {"A"}})
	assert.ErrorIs(t, err, ErrMissingCartID)
}

func TestParseWebhookOnlyChargesApprove(t *testing.T) {
	for tranType, want := range map[string]Outcome{
		"auth":    OutcomeApproved,
		"refund":  OutcomePending,
		"void":    OutcomePending,
		"release": OutcomePending,
		"":        OutcomePending,
	} {
		result, err := ParseWebhook(url.Values{"tran_cartid": {"ORD-9"}, "tran_type": {tranType}, "tran_status": {"A"}})
		require.NoError(t, err)
		assert.Equal(t, want, result.Outcome, "type %q", tranType)
	}
}

func TestVerifySignature(t *testing.T) {
	form := signedForm("s3cret", map[string]string{
		"tran_store":  "1234",
		"tran_ref":    "TX9",
		"tran_cartid": "ORD-9",
		"tran_amount": "10.00",
		"tran_status": "A",
	})
	assert.True(t, VerifySignature("s3cret", form))

	upper := url.Values{}
	for k, v := range form {
		upper[k] = v
	}
	upper.Set("tran_check", strings.ToUpper(form.Get("tran_check")))
	assert.True(t, VerifySignature("s3cret", upper))

	assert.False(t, VerifySignature("other", form))

	tampered := url.Values{}
	for k, v := range form {
		tampered[k] = v
	}
	tampered.Set("tran_amount", "1.00")
	assert.False(t, VerifySignature("s3cret", tampered))

	form.Del("tran_check")
	assert.False(t, VerifySignature("s3cret", form))
}
