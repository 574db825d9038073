package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/rs/zerolog/log"
)

const defaultTweetEndpoint = "https://api.twitter.com/2/tweets"

// DeliveryError reports a notification send that was not confirmed
// successful. Callers must not record the game as notified when they see
// this; the next scheduled run retries it.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("notification delivery failed with status %d: %s", e.StatusCode, e.Body)
}

// TwitterClient posts announcements with OAuth1 user-context signing.
type TwitterClient struct {
	httpClient *http.Client
	endpoint   string
}

// NewTwitterClient builds a client from the four OAuth1 user credentials.
func NewTwitterClient(apiKey, apiSecret, accessToken, accessSecret string, timeout time.Duration) *TwitterClient {
	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	httpClient.Timeout = timeout

	return &TwitterClient{
		httpClient: httpClient,
		endpoint:   defaultTweetEndpoint,
	}
}

// Post publishes one tweet. Any non-2xx response is a DeliveryError.
func (c *TwitterClient) Post(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to marshal tweet payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create tweet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tweet request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &DeliveryError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	log.Info().Int("status", resp.StatusCode).Msg("Tweet posted")
	return nil
}

// LogNotifier logs announcements instead of posting them. Used for dry runs
// and local development.
type LogNotifier struct{}

func (LogNotifier) Post(_ context.Context, text string) error {
	log.Info().Str("text", text).Msg("Dry run: notification suppressed")
	return nil
}
