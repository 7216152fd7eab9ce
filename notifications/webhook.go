// Package notifications delivers alerts for the conditions §7 calls out
// as worth surfacing: a session whose validation failed, and large
// algorithmically-detected synthetic orders.
package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"

	"capflow/core/types"
	"capflow/helpers"
)

// Payload is the JSON body posted to the configured webhook endpoint.
type Payload struct {
	Kind      string    `json:"kind"`
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Detail    any       `json:"detail"`
}

// WebhookManager posts alerts to one configured endpoint, retrying
// transient failures via resty's built-in backoff (§7 — delivery failure
// is logged, never fatal to the session that triggered it).
type WebhookManager struct {
	url    string
	secret string
	http   *resty.Client
}

// NewWebhookManager creates a manager for the given endpoint. If url is
// empty, SendX calls become no-ops — webhook delivery is optional.
func NewWebhookManager(url, secret string) *WebhookManager {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json")

	return &WebhookManager{url: url, secret: secret, http: client}
}

// SendValidationAlert fires when a session's result validates INVALID — the
// weighted cost estimate disagreed with where the chip distribution says
// volume actually traded.
func (wm *WebhookManager) SendValidationAlert(ctx context.Context, result types.DayResult) {
	if wm.url == "" {
		return
	}
	message := fmt.Sprintf("⚠️  %s %s validation %s | weighted cost %s",
		result.Symbol, result.Date.Format("2006-01-02"), result.ValidationStatus,
		helpers.FormatRupiah(result.WeightedCost))

	wm.deliver(ctx, Payload{
		Kind:      "validation_failed",
		Symbol:    result.Symbol,
		Timestamp: time.Now(),
		Message:   message,
		Detail:    result,
	})
}

// SendSyntheticOrderAlert fires on an algo-detected synthetic order over
// threshold, surfacing probable split-order execution as it happens.
func (wm *WebhookManager) SendSyntheticOrderAlert(ctx context.Context, order types.SyntheticOrder, threshold float64) {
	if wm.url == "" || order.TotalAmount < threshold {
		return
	}
	if order.OrderType != types.OrderTypeAlgoTWAP && order.OrderType != types.OrderTypeAlgoVWAP {
		return
	}

	message := fmt.Sprintf("🔹 %s %s %s synthetic order | %s over %d ticks",
		order.Symbol, order.Direction, order.OrderType,
		helpers.FormatRupiah(order.TotalAmount), order.TickCount)

	wm.deliver(ctx, Payload{
		Kind:      "synthetic_order",
		Symbol:    order.Symbol,
		Timestamp: time.Now(),
		Message:   message,
		Detail:    order,
	})
}

func (wm *WebhookManager) deliver(ctx context.Context, payload Payload) {
	req := wm.http.R().SetContext(ctx).SetBody(payload)
	if wm.secret != "" {
		req.SetHeader("Authorization", "Bearer "+wm.secret)
	}

	resp, err := req.Post(wm.url)
	if err != nil {
		log.Printf("⚠️  webhook delivery to %s failed: %v", wm.url, err)
		return
	}
	if resp.StatusCode() >= 300 {
		log.Printf("⚠️  webhook delivery to %s returned status %d", wm.url, resp.StatusCode())
		return
	}
	log.Printf("🔹 webhook delivered to %s (%s)", wm.url, payload.Kind)
}
