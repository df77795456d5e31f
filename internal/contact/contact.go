// Package contact relays contact-form submissions to the configured delivery
// channels. Delivery is best-effort by product decision: the end user is
// always told the message was accepted so a transient outage never scares a
// lead away. Failures are loud in the logs instead.
package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"inmofeed/internal/httputil"
	"inmofeed/internal/models"
)

// Relay posts messages to webhook channels in order.
type Relay struct {
	webhooks []string
	client   *http.Client
	log      *zap.SugaredLogger
}

func New(webhooks []string, client *http.Client, log *zap.SugaredLogger) *Relay {
	if client == nil {
		client = httputil.NewClient(0)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Relay{webhooks: webhooks, client: client, log: log}
}

// Send attempts every channel and returns how many accepted the message.
// Zero deliveries is not an error to the caller; it is logged with the
// contact_delivery_failed marker that alerting keys on.
func (r *Relay) Send(ctx context.Context, msg models.ContactMessage) int {
	payload, err := json.Marshal(msg)
	if err != nil {
		r.log.Errorw("contact_delivery_failed", "reason", "marshal", "error", err)
		return 0
	}

	delivered := 0
	for _, hook := range r.webhooks {
		if err := r.post(ctx, hook, payload); err != nil {
			r.log.Errorw("contact_delivery_failed", "channel", hook, "error", err)
			continue
		}
		delivered++
	}
	if delivered == 0 {
		r.log.Errorw("contact_delivery_failed", "reason", "all channels failed",
			"channels", len(r.webhooks), "from", msg.Email)
	}
	return delivered
}

func (r *Relay) post(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(r.client, req, 1)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &httputil.StatusError{Code: resp.StatusCode}
	}
	return nil
}
