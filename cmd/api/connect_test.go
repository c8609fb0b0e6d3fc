package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPayHandlerH2HSuccessEnvelope(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/initialize"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": true, "code": 200, "message": "ok",
				"data": map[string]any{"reference": "init-ref", "amount": 10.5, "currency": "EUR"},
			})
		case strings.HasSuffix(r.URL.Path, "/process"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": true, "code": 200, "message": "ok",
				"data": map[string]any{
					"success": true, "currency": "EUR", "amount": 10.5,
					"orderReference": "order-ref", "status": "SUCCESS",
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	app := newTestApplication(t, upstream.URL, "http://unused.invalid")

	body := map[string]any{
		"processing_url": "https://merchant.example/return",
		"payment": map[string]any{
			"gateway_amount":       1050,
			"gateway_currency":     "EUR",
			"product":              "subscription",
			"token":                "merchant-token",
			"merchant_private_key": "merchant-pk",
		},
		"params": map[string]any{
			"cvv": "123", "expires": "11/2030",
			"pan": "4242424242424242", "holder": "JANE DOE",
		},
		"settings": map[string]any{"client_id": "cid", "secret": "sec", "sandbox": true},
	}
	raw, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/pay", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	app.mount().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var res map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res["result"] != "approved" {
		t.Errorf("result = %v", res["result"])
	}
	if res["gateway_token"] != "order-ref" {
		t.Errorf("gateway_token = %v", res["gateway_token"])
	}
	logs, ok := res["logs"].([]any)
	if !ok || len(logs) != 2 {
		t.Fatalf("logs = %v", res["logs"])
	}

	// Card data in logged requests must be masked.
	processLog := logs[1].(map[string]any)
	params := processLog["request"].(map[string]any)["params"].(map[string]any)
	if params["pan"] != "************4242" || params["cvv"] != "***" {
		t.Errorf("logged card data = %v", params)
	}
}

func TestPayHandlerUpstreamFailureEnvelope(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"responseCode": "400", "responseMessage": "merchant disabled",
			"errors": []map[string]any{},
		})
	}))
	defer upstream.Close()

	app := newTestApplication(t, upstream.URL, "http://unused.invalid")

	body := map[string]any{
		"processing_url": "https://merchant.example/return",
		"payment": map[string]any{
			"gateway_amount":       1050,
			"gateway_currency":     "EUR",
			"product":              "subscription",
			"token":                "merchant-token",
			"merchant_private_key": "merchant-pk",
		},
		"params":   map[string]any{},
		"settings": map[string]any{"client_id": "cid", "secret": "sec", "sandbox": true},
	}
	raw, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/pay", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	app.mount().ServeHTTP(rec, req)

	// Still transport-success; failure lives in the envelope.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var res map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res["result"] != false {
		t.Errorf("result = %v, want false", res["result"])
	}
	if !strings.Contains(res["error"].(string), "merchant disabled") {
		t.Errorf("error = %v", res["error"])
	}
	if logs, ok := res["logs"].([]any); !ok || len(logs) != 1 {
		t.Errorf("logs = %v", res["logs"])
	}
}

func TestPayHandlerMalformedBody(t *testing.T) {
	app := newTestApplication(t, "http://unused.invalid", "http://unused.invalid")

	req := httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	app.mount().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var res map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res["result"] != false || res["error"] == "" {
		t.Errorf("response = %v", res)
	}
	if logs, ok := res["logs"].([]any); !ok || len(logs) != 0 {
		t.Errorf("logs = %v", res["logs"])
	}
}

func TestPayHandlerValidationFailure(t *testing.T) {
	app := newTestApplication(t, "http://unused.invalid", "http://unused.invalid")

	// Missing settings and payment fields.
	req := httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader(`{"processing_url":"https://m.example"}`))
	rec := httptest.NewRecorder()
	app.mount().ServeHTTP(rec, req)

	var res map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res["result"] != false {
		t.Errorf("result = %v", res["result"])
	}
}

func TestStatusHandlerEnvelope(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true, "code": 200, "message": "approved by issuer",
			"data": map[string]any{
				"currency": "EUR", "amount": 1050,
				"paymentReference": "ref-1", "status": "SUCCESS",
			},
		})
	}))
	defer upstream.Close()

	app := newTestApplication(t, upstream.URL, "http://unused.invalid")

	body := `{"payment":{"gateway_token":"ref-1","token":"merchant-token"},"settings":{"client_id":"cid","secret":"sec","sandbox":true}}`
	req := httptest.NewRequest(http.MethodPost, "/status", strings.NewReader(body))
	rec := httptest.NewRecorder()
	app.mount().ServeHTTP(rec, req)

	var res map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res["result"] != true || res["status"] != "approved" {
		t.Errorf("response = %v", res)
	}
	if res["details"] != "approved by issuer" || res["amount"] != float64(1050) {
		t.Errorf("response = %v", res)
	}
	if logs, ok := res["logs"].([]any); !ok || len(logs) != 1 {
		t.Errorf("logs = %v", res["logs"])
	}
}
