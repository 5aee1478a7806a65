package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// pushRequest is the JSON body posted to the external push gateway.
type pushRequest struct {
	Token   string `json:"token"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// WebhookSink delivers pushes by POSTing to an HTTP gateway.
// The base URL is injected from config so tests can point to a local mock.
type WebhookSink struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewWebhookSink(baseURL string, timeout time.Duration, logger *zap.Logger) *WebhookSink {
	return &WebhookSink{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Deliver posts one push to the gateway and treats anything other than
// 202 Accepted as a failed delivery. Errors are logged, not returned:
// the drain cycle only needs the boolean outcome.
func (s *WebhookSink) Deliver(ctx context.Context, title, message, token string) bool {
	body, err := json.Marshal(pushRequest{Token: token, Title: title, Message: message})
	if err != nil {
		s.logger.Error("marshal push request", zap.Error(err))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		s.logger.Error("create push request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("push gateway request failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		s.logger.Warn("push gateway rejected delivery",
			zap.Int("status", resp.StatusCode))
		return false
	}
	return true
}

// compile-time check that WebhookSink implements Sink
var _ Sink = (*WebhookSink)(nil)
