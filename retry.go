/*
Package dynwire – retry orchestration.

One exchange per attempt: build, sign, send, classify. 5xx and
throughput-exceeded responses retry with exponential backoff; every other
failure is fatal. This is the only place that decides retry versus fatal.
*/
package dynwire

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

const backoffUnit = 50 * time.Millisecond

// serviceFault is the structured body of an HTTP 400 error response.
// The "__type" field is namespace#ErrorName.
type serviceFault struct {
	Type     string `json:"__type"`
	Message  string `json:"message"`
	MessageU string `json:"Message"`
}

func (f serviceFault) shortType() string {
	if i := strings.LastIndex(f.Type, "#"); i >= 0 {
		return f.Type[i+1:]
	}
	return f.Type
}

func (f serviceFault) text() string {
	if f.Message != "" {
		return f.Message
	}
	return f.MessageU
}

// throttled reports a capacity-exceeded admission rejection.
func throttled(shortType string) bool {
	switch shortType {
	case "ProvisionedThroughputExceededException", "ThrottlingException":
		return true
	}
	return false
}

// classify maps a non-2xx outcome to a ServiceError.
func classify(status int, statusLine string, body []byte) *ServiceError {
	if status >= 500 {
		return NewServiceError(ErrTransient, "service unavailable",
			WithStatus(status), WithBody(string(body)))
	}
	if status == 400 {
		var fault serviceFault
		if err := json.Unmarshal(body, &fault); err == nil && fault.Type != "" {
			code := ErrRejected
			if throttled(fault.shortType()) {
				code = ErrThrottled
			}
			return NewServiceError(code, fault.text(),
				WithType(fault.shortType()), WithStatus(status), WithBody(string(body)))
		}
	}
	// no structured body available: surface the raw status line
	return NewServiceError(ErrTransport, statusLine, WithStatus(status), WithBody(string(body)))
}

// do runs one logical operation through the attempt loop and returns the raw
// response body. Payload validation has already happened; every error from
// here on came back from the service or the transport.
func (c *Client) do(ctx context.Context, op string, payload map[string]any) (json.RawMessage, error) {
	attempts := 0
	for {
		req, reqBody, err := c.newRequest(ctx, op, payload)
		if err != nil {
			return nil, err
		}
		attempts++
		if c.debug {
			logDump(c.log, op, "request", string(reqBody))
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, NewServiceError(ErrTransport, fmt.Sprintf("sending %s request", op), WithCause(err))
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, NewServiceError(ErrTransport, fmt.Sprintf("reading %s response", op),
				WithStatus(resp.StatusCode), WithCause(readErr))
		}
		if c.debug {
			logDump(c.log, op, "response", string(body))
		}
		logExchange(c.log, op, attempts, resp.StatusCode)

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}

		serr := classify(resp.StatusCode, resp.Status, body)
		if !serr.Retryable() {
			return nil, serr
		}
		if c.maxRetries > 0 && attempts > c.maxRetries {
			return nil, serr
		}
		if err := c.delay(ctx, time.Duration(1<<attempts)*backoffUnit); err != nil {
			return nil, err
		}
	}
}

// sleep waits out a backoff or poll delay without blocking other operations.
// Zero duration resolves immediately.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
