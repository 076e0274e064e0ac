/*
Package dynwire – request builder.

Assembles a signed, transport-ready HTTP request from an operation name and a
validated payload. No retry or I/O happens here.
*/
package dynwire

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	"github.com/cloudxsgmbh/dynamodb-wire-go/internal/uid"
)

const (
	targetPrefix = "DynamoDB_20120810"
	contentType  = "application/x-amz-json-1.0"
	serviceName  = "dynamodb"
	amzDateForm  = "20060102T150405Z"
)

// Signer computes the Authorization header over a canonical request. The
// default implementation wraps the SDK's SigV4 signer; tests substitute a
// no-op.
type Signer interface {
	Sign(ctx context.Context, req *http.Request, payloadHash string, signingTime time.Time) error
}

// sigv4Signer signs with scope region/dynamodb/aws4_request.
type sigv4Signer struct {
	signer *v4.Signer
	creds  aws.CredentialsProvider
	region string
}

func newSigV4Signer(creds aws.CredentialsProvider, region string) *sigv4Signer {
	return &sigv4Signer{signer: v4.NewSigner(), creds: creds, region: region}
}

func (s *sigv4Signer) Sign(ctx context.Context, req *http.Request, payloadHash string, signingTime time.Time) error {
	creds, err := s.creds.Retrieve(ctx)
	if err != nil {
		return NewServiceError(ErrTransport, "resolving credentials", WithCause(err))
	}
	return s.signer.SignHTTP(ctx, creds, req, payloadHash, serviceName, s.region, signingTime)
}

// newRequest serializes the payload, stamps the operation-identifying
// headers and delegates to the signer. The returned request is immutable
// from the caller's point of view: retries build a fresh one.
func (c *Client) newRequest(ctx context.Context, op string, payload map[string]any) (*http.Request, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, argErrorf("marshaling %s payload: %s", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/", bytes.NewReader(body))
	if err != nil {
		return nil, nil, NewServiceError(ErrTransport, fmt.Sprintf("building %s request", op), WithCause(err))
	}

	now := time.Now().UTC()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Amz-Target", targetPrefix+"."+op)
	req.Header.Set("X-Amz-Date", now.Format(amzDateForm))
	req.Header.Set("Amz-Sdk-Invocation-Id", uid.UUID())

	sum := sha256.Sum256(body)
	if err := c.signer.Sign(ctx, req, hex.EncodeToString(sum[:]), now); err != nil {
		return nil, nil, err
	}
	return req, body, nil
}
