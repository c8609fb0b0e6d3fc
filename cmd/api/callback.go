package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"oxygate/internal/callback"
	"oxygate/internal/gateway"
	"oxygate/internal/mask"
	"oxygate/internal/store"
)

// upstreamCallback is the asynchronous outcome the upstream posts back to
// this adapter.
type upstreamCallback struct {
	Currency          string         `json:"currency"`
	Amount            int            `json:"amount"`
	OrderReference    string         `json:"orderReference"`
	PaymentStatus     gateway.Status `json:"paymentStatus"`
	StatusDescription string         `json:"statusDescription"`
}

func (app *application) gatewayCallbackHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1_048_578))
	if err != nil {
		app.logger.Warnw("failed to read callback body", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	var traced any
	if err := json.Unmarshal(raw, &traced); err == nil {
		app.logger.Debugw("received callback from external gateway", "data", mask.Secure(traced))
	}

	var cb upstreamCallback
	if err := json.Unmarshal(raw, &cb); err != nil {
		app.logger.Warnw("failed to deserialize callback body", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	mapping, err := app.store.Mappings.GetByReference(ctx, cb.OrderReference)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.logger.Warnw("gateway id mapping is not found", "reference", cb.OrderReference)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		app.logger.Errorw("failed to retrieve mapping", "reference", cb.OrderReference, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	var payload callback.Payload
	switch cb.PaymentStatus.Normalize() {
	case gateway.StatusPending:
		// Accepted but intentionally never relayed to the merchant.
		app.logger.Warnw("unexpected pending status in callback", "reference", cb.OrderReference)
		w.WriteHeader(http.StatusOK)
		return
	case gateway.StatusSuccess:
		payload = callback.Approved(cb.Currency, cb.Amount)
	case gateway.StatusFailed:
		payload = callback.Declined(cb.StatusDescription, cb.Currency, cb.Amount)
	default:
		app.logger.Warnw("unknown payment status in callback", "status", cb.PaymentStatus)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := app.dispatcher.Dispatch(ctx, mapping.Token, mapping.MerchantPrivateKey, payload); err != nil {
		app.logger.Errorw("failed to send callback to merchant", "reference", cb.OrderReference, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
