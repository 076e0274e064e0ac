/*
Package dynwire – shared test infrastructure.

scripted is an http.RoundTripper that replays canned responses and records
every request it saw, so tests can assert on exact wire payloads without a
network.
*/
package dynwire

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/require"
)

type wireCall struct {
	Target string
	Body   string
}

type scripted struct {
	mu    sync.Mutex
	steps []wireStep
	calls []wireCall
}

type wireStep struct {
	status int
	body   string
}

func (s *scripted) respond(status int, body string) *scripted {
	s.steps = append(s.steps, wireStep{status: status, body: body})
	return s
}

func (s *scripted) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	s.calls = append(s.calls, wireCall{
		Target: req.Header.Get("X-Amz-Target"),
		Body:   string(body),
	})

	step := wireStep{status: http.StatusOK, body: "{}"}
	if len(s.steps) > 0 {
		step = s.steps[0]
		s.steps = s.steps[1:]
	}
	return &http.Response{
		StatusCode: step.status,
		Status:     fmt.Sprintf("%d %s", step.status, http.StatusText(step.status)),
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(step.body)),
		Request:    req,
	}, nil
}

// payload unmarshals the nth recorded request body.
func (s *scripted) payload(t *testing.T, n int) map[string]any {
	t.Helper()
	require.Greater(t, len(s.calls), n, "request %d was never sent", n)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(s.calls[n].Body), &out))
	return out
}

// newTestClient builds a client over the scripted transport with delays
// recorded instead of slept.
func newTestClient(t *testing.T, rt *scripted, cfg Config) (*Client, *[]time.Duration) {
	t.Helper()
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Credentials == nil {
		cfg.Credentials = credentials.NewStaticCredentialsProvider("AKID", "SECRET", "")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:8000"
	}
	cfg.HTTPClient = &http.Client{Transport: rt}
	if cfg.Logger == nil {
		nop := nopLogger()
		cfg.Logger = &nop
	}

	c, err := New(cfg)
	require.NoError(t, err)

	delays := &[]time.Duration{}
	c.delay = func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return c, delays
}

func bg() context.Context { return context.Background() }
