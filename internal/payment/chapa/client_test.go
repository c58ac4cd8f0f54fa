package chapa_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bereketg/artisan-market/internal/payment/chapa"
	"github.com/stretchr/testify/assert"
)

func TestClient_Initialize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chapa.InitializeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "130.00", req.Amount)
		assert.Equal(t, "ETB", req.Currency)
		assert.Equal(t, "txn-9-1700000000000", req.TxRef)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","message":"Hosted Link","data":{"checkout_url":"https://checkout.chapa.co/checkout/payment/abc123"}}`))
	}))
	defer srv.Close()

	client := chapa.NewClient(srv.URL, "sk-test", 5*time.Second)
	resp, err := client.Initialize(context.Background(), &chapa.InitializeRequest{
		Amount:    "130.00",
		Currency:  "ETB",
		Email:     "abel@example.com",
		FirstName: "Abel",
		LastName:  "Tesfaye",
		TxRef:     "txn-9-1700000000000",
	})
	assert.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "https://checkout.chapa.co/checkout/payment/abc123", resp.Data.CheckoutURL)
}

func TestClient_Initialize_ProviderRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"failed","message":"Invalid currency"}`))
	}))
	defer srv.Close()

	client := chapa.NewClient(srv.URL, "sk-test", 5*time.Second)
	resp, err := client.Initialize(context.Background(), &chapa.InitializeRequest{
		Amount:   "130.00",
		Currency: "XXX",
		TxRef:    "txn-9-1700000000000",
	})
	assert.ErrorIs(t, err, chapa.ErrProviderRejected)
	// the provider body still comes back so handlers can pass it through
	assert.NotNil(t, resp)
	assert.Equal(t, "Invalid currency", resp.Message)
}

func TestClient_Verify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/txn-9-1700000000000", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","message":"verified","data":{"status":"success","tx_ref":"txn-9-1700000000000","amount":130}}`))
	}))
	defer srv.Close()

	client := chapa.NewClient(srv.URL, "sk-test", 5*time.Second)
	resp, err := client.Verify(context.Background(), "txn-9-1700000000000")
	assert.NoError(t, err)
	assert.Equal(t, "success", resp.Data.Status)
	assert.Equal(t, 130.0, resp.Data.Amount)
}

func TestClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status":"failed","message":"boom"}`))
	}))
	defer srv.Close()

	client := chapa.NewClient(srv.URL, "sk-test", 5*time.Second)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = client.Initialize(ctx, &chapa.InitializeRequest{TxRef: "txn-1-1"})
	}

	// once open, the breaker fails fast without reaching the provider
	_, err := client.Initialize(ctx, &chapa.InitializeRequest{TxRef: "txn-1-1"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, chapa.ErrProviderRejected)
}
