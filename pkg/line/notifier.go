// Package line delivers chart images to a LINE group through the Messaging
// API push endpoint.
package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"riverwatch/pkg/config"
)

// Notifier pushes image messages to one LINE group.
type Notifier struct {
	url     string
	groupID string
	apiKey  string

	// HTTPClient exists for tests.
	HTTPClient *http.Client
}

// NewNotifier builds a notifier from the configured endpoint and
// credentials.
func NewNotifier(cfg config.LineConfig) *Notifier {
	return &Notifier{
		url:        cfg.URL,
		groupID:    cfg.GroupID,
		apiKey:     cfg.APIKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type pushMessage struct {
	Type               string `json:"type"`
	OriginalContentURL string `json:"originalContentUrl"`
	PreviewImageURL    string `json:"previewImageUrl"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []pushMessage `json:"messages"`
}

// Notify pushes the image URL as a LINE image message. Each call carries a
// fresh retry key so the API can deduplicate network-level retries without
// collapsing distinct cycles.
func (n *Notifier) Notify(ctx context.Context, imageURL string) error {
	payload, err := json.Marshal(pushRequest{
		To: n.groupID,
		Messages: []pushMessage{{
			Type:               "image",
			OriginalContentURL: imageURL,
			PreviewImageURL:    imageURL,
		}},
	})
	if err != nil {
		return fmt.Errorf("encode push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("X-Line-Retry-Key", uuid.NewString())

	resp, err := n.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("push to line: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("line push rejected with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
