package extraction

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"mailroom/internal/services"
)

// apiError builds an SDK error the way the transport layer would, with the
// request and response populated so Error() can format them.
func apiError(t *testing.T, status int) *anthropic.Error {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil)
	if err != nil {
		t.Fatalf("http.NewRequest: %v", err)
	}
	return &anthropic.Error{
		StatusCode: status,
		Request:    req,
		Response:   &http.Response{StatusCode: status, Request: req},
	}
}

const validPayload = `[{
  "recipient_name": "Senga Dougall",
  "delivery_address": "10 Uist Wynd, Ayr KA8 0SS",
  "sender": "Scottish Power",
  "document_type": "bill",
  "document_date": "2025-07-08",
  "account_or_reference": "96279",
  "raw_reference_text": "Account 96279",
  "importance": "HIGH_FORWARD",
  "auto_action": "none",
  "confidence": 0.92
}]`

func testClient(t *testing.T, send sendFunc, opts ...Option) *AnthropicClient {
	t.Helper()
	base := []Option{
		withSendFunc(send),
		WithSleeper(func(time.Duration) {}),
		WithJitter(func(time.Duration) time.Duration { return 0 }),
	}
	client, err := NewAnthropicClient(Config{
		Model:          "claude-sonnet-4-5-20250929",
		MaxAttempts:    6,
		RetryBaseDelay: time.Second,
		RetryMaxDelay:  30 * time.Second,
	}, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewAnthropicClient: %v", err)
	}
	return client
}

func TestNewAnthropicClientRequiresAPIKey(t *testing.T) {
	_, err := NewAnthropicClient(Config{})
	if !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestAnalyzeRejectsUnsupportedMimeBeforeSending(t *testing.T) {
	calls := 0
	client := testClient(t, func(context.Context, []byte, string, Metadata) (string, error) {
		calls++
		return validPayload, nil
	})

	_, err := client.Analyze(context.Background(), []byte("data"), "application/zip", Metadata{}, nil)
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("send called %d times for unsupported mime type", calls)
	}
}

func TestAnalyzeRejectsEmptyContent(t *testing.T) {
	client := testClient(t, func(context.Context, []byte, string, Metadata) (string, error) {
		t.Fatal("send should not be called")
		return "", nil
	})

	_, err := client.Analyze(context.Background(), nil, "application/pdf", Metadata{}, nil)
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestAnalyzeRetriesThrottlingThenSucceeds(t *testing.T) {
	var sleeps []time.Duration
	attempts := 0
	send := func(context.Context, []byte, string, Metadata) (string, error) {
		attempts++
		if attempts <= 2 {
			return "", apiError(t, 429)
		}
		return validPayload, nil
	}
	client := testClient(t, send, WithSleeper(func(d time.Duration) {
		sleeps = append(sleeps, d)
	}))

	records, err := client.Analyze(context.Background(), []byte("pdf"), "application/pdf", Metadata{DisplayName: "bill.pdf"}, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if len(records) != 1 || records[0].Sender != "Scottish Power" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if len(sleeps) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(sleeps))
	}
	if sleeps[1] < sleeps[0] {
		t.Fatalf("backoff shrank between attempts: %v then %v", sleeps[0], sleeps[1])
	}
}

func TestAnalyzeDoesNotRetryTerminalErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		marker error
	}{
		{"unauthorized", 401, services.ErrUnauthorized},
		{"forbidden", 403, services.ErrUnauthorized},
		{"bad request", 400, services.ErrInvalidInput},
		{"too large", 413, services.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			attempts := 0
			var sleeps int
			client := testClient(t, func(context.Context, []byte, string, Metadata) (string, error) {
				attempts++
				return "", apiError(t, tc.status)
			}, WithSleeper(func(time.Duration) { sleeps++ }))

			_, err := client.Analyze(context.Background(), []byte("pdf"), "application/pdf", Metadata{}, nil)
			if !errors.Is(err, tc.marker) {
				t.Fatalf("expected %v, got %v", tc.marker, err)
			}
			if attempts != 1 {
				t.Fatalf("terminal error retried: %d attempts", attempts)
			}
			if sleeps != 0 {
				t.Fatalf("terminal error slept %d times", sleeps)
			}
		})
	}
}

func TestAnalyzeExhaustsRetryBudget(t *testing.T) {
	attempts := 0
	client := testClient(t, func(context.Context, []byte, string, Metadata) (string, error) {
		attempts++
		return "", apiError(t, 503)
	})

	_, err := client.Analyze(context.Background(), []byte("pdf"), "application/pdf", Metadata{}, nil)
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if attempts != 6 {
		t.Fatalf("expected 6 attempts, got %d", attempts)
	}
	if !strings.Contains(err.Error(), "after 6 attempts") {
		t.Fatalf("error does not mention attempt budget: %v", err)
	}
}

func TestAnalyzeRetriesTimeoutsUntilBudget(t *testing.T) {
	attempts := 0
	client := testClient(t, func(context.Context, []byte, string, Metadata) (string, error) {
		attempts++
		return "", context.DeadlineExceeded
	})

	_, err := client.Analyze(context.Background(), []byte("pdf"), "application/pdf", Metadata{}, nil)
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if attempts != 6 {
		t.Fatalf("expected 6 attempts, got %d", attempts)
	}
}

func TestAnalyzeStopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	client := testClient(t, func(context.Context, []byte, string, Metadata) (string, error) {
		attempts++
		cancel()
		return "", apiError(t, 429)
	})

	_, err := client.Analyze(ctx, []byte("pdf"), "application/pdf", Metadata{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt after cancel, got %d", attempts)
	}
}

func TestAnalyzeReportsProgress(t *testing.T) {
	attempts := 0
	var messages []string
	client := testClient(t, func(context.Context, []byte, string, Metadata) (string, error) {
		attempts++
		if attempts == 1 {
			return "", apiError(t, 429)
		}
		return validPayload, nil
	})

	_, err := client.Analyze(context.Background(), []byte("pdf"), "application/pdf", Metadata{}, func(msg string) {
		messages = append(messages, msg)
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	want := []string{
		"Uploading document…",
		"Retrying analysis (attempt 2 of 6)…",
		"Reading extracted fields…",
	}
	if len(messages) != len(want) {
		t.Fatalf("progress messages = %v", messages)
	}
	for i, msg := range want {
		if messages[i] != msg {
			t.Fatalf("progress[%d] = %q, want %q", i, messages[i], msg)
		}
	}
}

func TestBackoffDelayGrowsAndCaps(t *testing.T) {
	client := testClient(t, func(context.Context, []byte, string, Metadata) (string, error) {
		return validPayload, nil
	})

	var prev time.Duration
	for attempt := 1; attempt <= 8; attempt++ {
		delay := client.backoffDelay(attempt)
		if delay < prev {
			t.Fatalf("delay shrank at attempt %d: %v < %v", attempt, delay, prev)
		}
		if delay > 30*time.Second {
			t.Fatalf("delay exceeded cap at attempt %d: %v", attempt, delay)
		}
		prev = delay
	}
	if client.backoffDelay(1) != time.Second {
		t.Fatalf("first delay = %v, want 1s", client.backoffDelay(1))
	}
}
