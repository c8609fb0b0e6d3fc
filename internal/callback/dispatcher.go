package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	maxAttempts = 3
	retryDelay  = 3 * time.Second
)

// Dispatcher posts signed notifications to the merchant's webhook receiver.
// Delivery is best effort: a fixed-delay sequential retry, then one
// aggregated error back to the callback invoker. Anything beyond that is the
// upstream's responsibility via its own callback retries.
type Dispatcher struct {
	client      *http.Client
	signer      *Signer
	businessURL string
	delay       time.Duration
	logger      *zap.SugaredLogger
}

func NewDispatcher(signer *Signer, businessURL string, logger *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		client:      &http.Client{Timeout: 30 * time.Second},
		signer:      signer,
		businessURL: businessURL,
		delay:       retryDelay,
		logger:      logger,
	}
}

// Dispatch signs the payload for the given merchant and delivers it to the
// merchant-specific webhook URL, retrying on failure.
func (d *Dispatcher) Dispatch(ctx context.Context, token, merchantKey string, payload Payload) error {
	signed, err := d.signer.Sign(payload, merchantKey)
	if err != nil {
		return fmt.Errorf("sign callback: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal callback payload: %w", err)
	}

	url := fmt.Sprintf("%s/callbacks/v2/gateway_callbacks/%s", d.businessURL, token)

	var attempts []error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := d.post(ctx, url, signed, body)
		if err == nil {
			d.logger.Infow("merchant callback delivered", "url", url, "attempt", attempt)
			return nil
		}
		d.logger.Errorw("merchant callback delivery failed", "url", url, "attempt", attempt, "error", err)
		attempts = append(attempts, err)

		if attempt < maxAttempts {
			select {
			case <-time.After(d.delay):
			case <-ctx.Done():
				return fmt.Errorf("callback delivery canceled: %w", errors.Join(append(attempts, ctx.Err())...))
			}
		}
	}

	return fmt.Errorf("callback delivery failed after %d attempts: %w", maxAttempts, errors.Join(attempts...))
}

func (d *Dispatcher) post(ctx context.Context, url, bearer string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")

	res, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("merchant webhook answered %d", res.StatusCode)
	}
	return nil
}
