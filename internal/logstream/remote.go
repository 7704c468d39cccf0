package logstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/openclaw-molt/clawlog/internal/timeutil"
	"github.com/valyala/fastjson"
)

// HTTPFetcherConfig configures an HTTPFetcher
type HTTPFetcherConfig struct {
	Timeout    time.Duration // Per attempt. Default: 30s
	Attempts   uint          // Default: 2 (one retry on network errors)
	RetryDelay time.Duration // Default: 100ms
	HTTPClient *http.Client  // Overrides Timeout when set
}

// HTTPFetcher reads entries from a log API that answers
// GET <source>?tail=N with {"entries": [...]}
type HTTPFetcher struct {
	httpClient *http.Client
	attempts   uint
	retryDelay time.Duration
	parsers    fastjson.ParserPool
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates an HTTP fetcher
func NewHTTPFetcher(cfg HTTPFetcherConfig) *HTTPFetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 2
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 100 * time.Millisecond
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &HTTPFetcher{
		httpClient: httpClient,
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
	}
}

// Fetch requests the last tail entries from source. Network errors are
// retried; a non-2xx status or an unexpected body is not.
func (f *HTTPFetcher) Fetch(ctx context.Context, source string, tail int) ([]Entry, error) {
	reqURL, err := tailURL(source, tail)
	if err != nil {
		return nil, err
	}

	var body []byte
	attempt := 0

	err = retry.Do(
		func() error {
			attempt++
			slog.Debug("Log source request", "url", reqURL, "attempt", attempt)

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
			}
			req.Header.Set("Accept", "application/json")

			resp, err := f.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close() //nolint:errcheck // Deferred close, error not actionable

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return retry.Unrecoverable(fmt.Errorf("HTTP %d", resp.StatusCode))
			}

			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	return f.parse(body)
}

// tailURL sets the tail query parameter on source, keeping any other parameters
func tailURL(source string, tail int) (string, error) {
	if source == "" {
		return "", errors.New("no log source configured")
	}

	u, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("invalid log source %q: %w", source, err)
	}

	params := u.Query()
	params.Set("tail", strconv.Itoa(tail))
	u.RawQuery = params.Encode()
	return u.String(), nil
}

func (f *HTTPFetcher) parse(body []byte) ([]Entry, error) {
	p := f.parsers.Get()
	defer f.parsers.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}

	return entriesFromPayload(v)
}

// entriesFromPayload reads the entries array of a response. A missing or null
// entries field is an empty result.
func entriesFromPayload(v *fastjson.Value) ([]Entry, error) {
	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("unexpected response: expected a JSON object, got %s", v.Type())
	}

	list := v.Get("entries")
	if list == nil || list.Type() == fastjson.TypeNull {
		return []Entry{}, nil
	}

	items, err := list.Array()
	if err != nil {
		return nil, fmt.Errorf("unexpected response: entries is %s, not an array", list.Type())
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, entryFromRecord(item))
	}
	return entries, nil
}

// entryFromRecord applies defaults to one loosely-typed server record
func entryFromRecord(v *fastjson.Value) Entry {
	raw := string(v.MarshalTo(nil))

	if v.Type() != fastjson.TypeObject {
		message := raw
		if v.Type() == fastjson.TypeString {
			message = string(v.GetStringBytes())
		}
		return Entry{Level: "INFO", Message: message}
	}

	e := Entry{
		Level:   "INFO",
		Message: raw,
	}
	if level, ok := field(v, "level"); ok {
		e.Level = level
	}
	if msg, ok := field(v, "msg"); ok {
		e.Message = msg
	}
	e.Tool, _ = field(v, "tool")
	e.Operation, _ = field(v, "operation")
	e.ErrorKind, _ = field(v, "error_type")

	if ts := v.Get("ts"); ts != nil && ts.Type() == fastjson.TypeString {
		e.RawTimestamp = string(ts.GetStringBytes())
		if parsed, ok := timeutil.ParseTimestamp(e.RawTimestamp); ok {
			e.Timestamp = parsed
		}
	}

	return e
}

// field returns a record field as text. Absent and null fields are reported
// as missing; non-string values are rendered as JSON.
func field(v *fastjson.Value, key string) (string, bool) {
	f := v.Get(key)
	if f == nil || f.Type() == fastjson.TypeNull {
		return "", false
	}
	if f.Type() == fastjson.TypeString {
		return string(f.GetStringBytes()), true
	}
	return string(f.MarshalTo(nil)), true
}
