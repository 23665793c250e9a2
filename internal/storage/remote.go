package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"mailroom/internal/services"
)

const defaultRemoteTimeout = 60 * time.Second

// RemoteSource talks to the hosted document service over HTTP with a bearer
// token.
type RemoteSource struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// RemoteOption customizes the remote source.
type RemoteOption func(*RemoteSource)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(s *RemoteSource) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout. Non-positive values keep the
// default.
func WithTimeout(timeout time.Duration) RemoteOption {
	return func(s *RemoteSource) {
		if timeout > 0 {
			s.httpClient.Timeout = timeout
		}
	}
}

// NewRemoteSource constructs a client for the document service at baseURL.
func NewRemoteSource(baseURL, token string, opts ...RemoteOption) (*RemoteSource, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("remote storage: base url required")
	}
	source := &RemoteSource{
		baseURL:    baseURL,
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: defaultRemoteTimeout},
	}
	for _, opt := range opts {
		opt(source)
	}
	return source, nil
}

type remoteListResponse struct {
	Documents []struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		MimeType    string `json:"mime_type"`
	} `json:"documents"`
}

// List returns the documents available at a remote location.
func (s *RemoteSource) List(ctx context.Context, location string) ([]Entry, error) {
	endpoint := s.baseURL + "/documents"
	if strings.TrimSpace(location) != "" {
		endpoint += "?location=" + url.QueryEscape(location)
	}
	body, err := s.do(ctx, http.MethodGet, endpoint, nil, "list")
	if err != nil {
		return nil, err
	}
	var parsed remoteListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("remote storage: decode listing: %w", err)
	}
	entries := make([]Entry, 0, len(parsed.Documents))
	for _, doc := range parsed.Documents {
		if strings.TrimSpace(doc.ID) == "" {
			continue
		}
		entries = append(entries, Entry{
			ID:          doc.ID,
			DisplayName: doc.DisplayName,
			MimeHint:    doc.MimeType,
		})
	}
	return entries, nil
}

// Fetch downloads the raw bytes of one document.
func (s *RemoteSource) Fetch(ctx context.Context, id string) ([]byte, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("remote storage: document id required")
	}
	endpoint := s.baseURL + "/documents/" + url.PathEscape(id) + "/content"
	return s.do(ctx, http.MethodGet, endpoint, nil, "fetch")
}

type remoteUploadRequest struct {
	Destination string `json:"destination"`
	Filename    string `json:"filename"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
}

type remoteUploadResponse struct {
	ID string `json:"id"`
}

// Upload stores a document and returns the service-assigned ID.
func (s *RemoteSource) Upload(ctx context.Context, content []byte, destination, filename, description string) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", fmt.Errorf("remote storage: filename required")
	}
	encoded, err := json.Marshal(remoteUploadRequest{
		Destination: destination,
		Filename:    filename,
		Description: strings.TrimSpace(description),
		Content:     base64.StdEncoding.EncodeToString(content),
	})
	if err != nil {
		return "", fmt.Errorf("remote storage: encode upload: %w", err)
	}
	body, err := s.do(ctx, http.MethodPost, s.baseURL+"/documents", encoded, "upload")
	if err != nil {
		return "", err
	}
	var parsed remoteUploadResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("remote storage: decode confirmation: %w", err)
	}
	if strings.TrimSpace(parsed.ID) == "" {
		return "", fmt.Errorf("remote storage: upload confirmation missing id")
	}
	return parsed.ID, nil
}

func (s *RemoteSource) do(ctx context.Context, method, endpoint string, payload []byte, operation string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("remote storage: build request: %w", err)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "storage", operation, "request failed", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "storage", operation, "read response", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, remoteStatusError(resp.StatusCode, operation, body)
	}
	return body, nil
}

func remoteStatusError(status int, operation string, body []byte) error {
	detail := strings.TrimSpace(string(body))
	if len(detail) > 200 {
		detail = detail[:200]
	}
	message := fmt.Sprintf("http %d", status)
	if detail != "" {
		message = fmt.Sprintf("http %d: %s", status, detail)
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return services.Wrap(services.ErrUnauthorized, "storage", operation, message, nil)
	case status == http.StatusTooManyRequests:
		return services.Wrap(services.ErrRateLimited, "storage", operation, message, nil)
	case status == http.StatusNotFound:
		return services.Wrap(services.ErrInvalidInput, "storage", operation, message, nil)
	case status >= http.StatusInternalServerError:
		return services.Wrap(services.ErrUnavailable, "storage", operation, message, nil)
	default:
		return services.Wrap(services.ErrTransient, "storage", operation, message, nil)
	}
}
