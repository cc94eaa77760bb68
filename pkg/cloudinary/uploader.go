// Package cloudinary publishes chart images through the Cloudinary upload
// API using a signed multipart request.
package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"riverwatch/pkg/config"
)

const defaultEndpoint = "https://api.cloudinary.com"

// Uploader pushes image files to one Cloudinary account. Uploads reuse the
// same public ID per file name, so each station keeps a single hosted image
// that newer charts replace.
type Uploader struct {
	cloudName string
	apiKey    string
	apiSecret string

	// Endpoint and HTTPClient exist for tests.
	Endpoint   string
	HTTPClient *http.Client
}

// NewUploader builds an uploader from credentials.
func NewUploader(cfg config.CloudinaryConfig) *Uploader {
	return &Uploader{
		cloudName:  cfg.CloudName,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		Endpoint:   defaultEndpoint,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends the file and returns its public HTTPS URL.
func (u *Uploader) Upload(ctx context.Context, path string) (string, error) {
	publicID := PublicID(path)
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	body, contentType, err := u.buildRequestBody(path, publicID, timestamp)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1_1/%s/image/upload", u.Endpoint, u.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filepath.Base(path), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}

	var parsed uploadResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode upload response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := parsed.Error.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return "", fmt.Errorf("upload rejected with status %d: %s", resp.StatusCode, msg)
	}
	if parsed.SecureURL == "" {
		return "", fmt.Errorf("upload response has no secure_url")
	}
	return parsed.SecureURL, nil
}

// buildRequestBody assembles the signed multipart form: the file itself plus
// public_id, timestamp, api_key and the SHA-1 signature over the signed
// parameters.
func (u *Uploader) buildRequestBody(path, publicID, timestamp string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open chart file: %w", err)
	}
	defer f.Close()

	var buf strings.Builder
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read chart file: %w", err)
	}

	fields := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
		"api_key":   u.apiKey,
		"signature": u.sign(publicID, timestamp),
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("build multipart form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("build multipart form: %w", err)
	}
	return strings.NewReader(buf.String()), w.FormDataContentType(), nil
}

// sign produces the Cloudinary request signature: hex SHA-1 of the signed
// parameters in alphabetical order with the API secret appended.
func (u *Uploader) sign(publicID, timestamp string) string {
	toSign := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, u.apiSecret)
	sum := sha1.Sum([]byte(toSign))
	return hex.EncodeToString(sum[:])
}

// PublicID derives the hosted asset name from a chart file path, e.g.
// graphs/station_STN06.png becomes water_level_station_STN06.
func PublicID(path string) string {
	base := filepath.Base(path)
	return "water_level_" + strings.TrimSuffix(base, filepath.Ext(base))
}
