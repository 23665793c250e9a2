package extraction

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"mailroom/internal/classify"
	"mailroom/internal/services"
)

const (
	defaultMaxAttempts    = 6
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 30 * time.Second
	defaultRequestTimeout = 120 * time.Second
	maxResponseTokens     = 4096
)

// Config captures the runtime settings required to talk to the model.
type Config struct {
	APIKey         string
	Model          string
	MaxAttempts    int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	Timeout        time.Duration
}

// AnthropicClient analyzes documents through the Anthropic Messages API.
type AnthropicClient struct {
	cfg     Config
	send    sendFunc
	sleeper func(time.Duration)
	jitter  func(max time.Duration) time.Duration
}

// sendFunc issues one model request and returns the raw text payload.
// Indirection keeps the retry loop testable without network access.
type sendFunc func(ctx context.Context, content []byte, mimeType string, meta Metadata) (string, error)

// Option customizes the client.
type Option func(*AnthropicClient)

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *AnthropicClient) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// WithJitter overrides the backoff jitter source (useful for tests).
func WithJitter(jitter func(max time.Duration) time.Duration) Option {
	return func(c *AnthropicClient) {
		if jitter != nil {
			c.jitter = jitter
		}
	}
}

// withSendFunc substitutes the network call in tests.
func withSendFunc(send sendFunc) Option {
	return func(c *AnthropicClient) {
		if send != nil {
			c.send = send
		}
	}
}

// NewAnthropicClient constructs a document analysis client.
func NewAnthropicClient(cfg Config, opts ...Option) (*AnthropicClient, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = defaultRetryBaseDelay
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = defaultRetryMaxDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRequestTimeout
	}

	client := &AnthropicClient{
		cfg:     cfg,
		sleeper: func(d time.Duration) { time.Sleep(d) },
		jitter: func(max time.Duration) time.Duration {
			if max <= 0 {
				return 0
			}
			return time.Duration(rand.Int63n(int64(max)))
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.send == nil {
		if cfg.APIKey == "" {
			return nil, services.Wrap(services.ErrUnauthorized, "extraction", "configure", "api key required", nil)
		}
		client.send = newAnthropicSend(cfg)
	}
	return client, nil
}

// Analyze sends a document to the model and returns the extracted records.
// The mime allow-list is enforced before any network call.
func (c *AnthropicClient) Analyze(ctx context.Context, content []byte, mimeType string, meta Metadata, onProgress ProgressFunc) ([]classify.RawRecord, error) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if !SupportedMimeType(mimeType) {
		return nil, services.Wrap(services.ErrInvalidInput, "extraction", "analyze",
			fmt.Sprintf("unsupported mime type %q", mimeType), nil)
	}
	if len(content) == 0 {
		return nil, services.Wrap(services.ErrInvalidInput, "extraction", "analyze", "empty content", nil)
	}
	progress := onProgress
	if progress == nil {
		progress = func(string) {}
	}

	attempts := c.cfg.MaxAttempts
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt == 1 {
			progress("Uploading document…")
		} else {
			progress(fmt.Sprintf("Retrying analysis (attempt %d of %d)…", attempt, attempts))
		}

		payload, err := c.send(ctx, content, mimeType, meta)
		if err == nil {
			progress("Reading extracted fields…")
			return parseRecords(payload)
		}

		classified := classifyFailure(err)
		lastErr = classified
		if !retryableInClient(classified) || attempt == attempts {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.sleeper(c.backoffDelay(attempt))
	}

	if errors.Is(lastErr, services.ErrRateLimited) ||
		errors.Is(lastErr, services.ErrUnavailable) ||
		errors.Is(lastErr, services.ErrTimeout) {
		return nil, fmt.Errorf("analysis failed after %d attempts: %w", attempts, lastErr)
	}
	return nil, lastErr
}

// retryableInClient is broader than services.Retryable: the client also
// retries timeouts until its budget is spent, after which they surface as
// terminal.
func retryableInClient(err error) bool {
	return services.Retryable(err) || errors.Is(err, services.ErrTimeout)
}

// backoffDelay implements base × 2^(attempt-1) plus jitter, capped.
func (c *AnthropicClient) backoffDelay(attempt int) time.Duration {
	base := c.cfg.RetryBaseDelay
	maxDelay := c.cfg.RetryMaxDelay
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay + c.jitter(base/2)
}

// classifyFailure translates transport and API errors into the shared error
// taxonomy.
func classifyFailure(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "extraction", "analyze", "request deadline exceeded", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 400 || apiErr.StatusCode == 413 || apiErr.StatusCode == 422:
			return services.Wrap(services.ErrInvalidInput, "extraction", "analyze", "model rejected document", err)
		case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
			return services.Wrap(services.ErrUnauthorized, "extraction", "analyze", "credentials rejected", err)
		case apiErr.StatusCode == 429:
			return services.Wrap(services.ErrRateLimited, "extraction", "analyze", "upstream throttled", err)
		case apiErr.StatusCode == 408:
			return services.Wrap(services.ErrTimeout, "extraction", "analyze", "upstream timeout", err)
		case apiErr.StatusCode >= 500:
			return services.Wrap(services.ErrUnavailable, "extraction", "analyze", "upstream outage", err)
		default:
			return services.Wrap(services.ErrTransient, "extraction", "analyze", "unexpected api failure", err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return services.Wrap(services.ErrTimeout, "extraction", "analyze", "network timeout", err)
	}

	return services.Wrap(services.ErrUnavailable, "extraction", "analyze", "transport failure", err)
}

func newAnthropicSend(cfg Config) sendFunc {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		// The retry loop above owns backoff; the SDK must not add its own.
		option.WithMaxRetries(0),
	)

	return func(ctx context.Context, content []byte, mimeType string, meta Metadata) (string, error) {
		encoded := base64.StdEncoding.EncodeToString(content)

		var documentBlock anthropic.ContentBlockParamUnion
		if mimeType == "application/pdf" {
			documentBlock = anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{Data: encoded})
		} else {
			documentBlock = anthropic.NewImageBlockBase64(mimeType, encoded)
		}

		message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(cfg.Model),
			MaxTokens: maxResponseTokens,
			System: []anthropic.TextBlockParam{
				{Text: extractionSystemPrompt},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					documentBlock,
					anthropic.NewTextBlock(userPrompt(meta)),
				),
			},
		})
		if err != nil {
			return "", err
		}
		for _, block := range message.Content {
			if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
				return block.Text, nil
			}
		}
		return "", services.Wrap(services.ErrInvalidInput, "extraction", "analyze", "model returned no text content", nil)
	}
}

func userPrompt(meta Metadata) string {
	name := strings.TrimSpace(meta.DisplayName)
	if name == "" {
		name = "scanned document"
	}
	return fmt.Sprintf("Extract every mail piece from %q. Respond with the JSON array only.", name)
}
