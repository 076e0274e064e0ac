/*
Package dynwire – client and operation surface.

A low-level DynamoDB client that speaks the wire protocol directly: typed
request construction, SigV4 signing, retry with exponential backoff, and
pagination over item and table operations.
*/
package dynwire

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// TableStatusActive is the default status WaitForTable polls for.
const TableStatusActive = "ACTIVE"

const defaultWaitInterval = time.Second

// Config configures a Client. Immutable once passed to New.
type Config struct {
	Region      string                  `validate:"required"`
	Credentials aws.CredentialsProvider `validate:"required"`

	// Endpoint overrides the derived https://dynamodb.<region>.amazonaws.com,
	// e.g. for a local emulator.
	Endpoint string

	// MaxRetries bounds retries per exchange. Zero = retry indefinitely.
	MaxRetries int

	// Debug additionally logs raw request/response text. Propagation of
	// errors is unchanged.
	Debug bool

	Logger *zerolog.Logger

	// HTTPClient supplies the transport collaborator. Its Transport may be
	// wrapped with NewBreakerTransport.
	HTTPClient *http.Client

	// WaitInterval is the WaitForTable poll interval (default 1s).
	WaitInterval time.Duration

	// Signer overrides the default SigV4 signer.
	Signer Signer
}

// Client is safe for concurrent use; all configuration is read-only after New.
type Client struct {
	endpoint     string
	http         *http.Client
	signer       Signer
	log          zerolog.Logger
	maxRetries   int
	debug        bool
	waitInterval time.Duration

	// delay is swapped out by tests to observe backoff without sleeping
	delay func(ctx context.Context, d time.Duration) error
}

var validate = validator.New()

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, argErrorf("invalid config: %s", err)
	}
	c := &Client{
		endpoint:     cfg.Endpoint,
		http:         cfg.HTTPClient,
		maxRetries:   cfg.MaxRetries,
		debug:        cfg.Debug,
		waitInterval: cfg.WaitInterval,
		delay:        sleep,
	}
	if c.endpoint == "" {
		c.endpoint = fmt.Sprintf("https://%s.%s.amazonaws.com", serviceName, cfg.Region)
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.waitInterval <= 0 {
		c.waitInterval = defaultWaitInterval
	}
	if cfg.Signer != nil {
		c.signer = cfg.Signer
	} else {
		c.signer = newSigV4Signer(cfg.Credentials, cfg.Region)
	}
	if cfg.Logger != nil {
		c.log = *cfg.Logger
	} else if cfg.Debug {
		c.log = defaultLogger().Level(zerolog.DebugLevel)
	} else {
		c.log = defaultLogger()
	}
	return c, nil
}

// call validates args against the schema table and runs one exchange through
// the retry orchestrator, returning the raw response body.
func (c *Client) call(ctx context.Context, op string, args Item, fields ...string) (json.RawMessage, error) {
	payload, err := buildPayload(args, fields...)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, op, payload)
}

// ─── table administration ─────────────────────────────────────────────────────

// tableResponse covers every table-administration response body.
type tableResponse struct {
	Table            Item `json:"Table"`
	TableDescription Item `json:"TableDescription"`
}

// CreateTable accepts TableName, AttributeDefinitions, KeySchema,
// ProvisionedThroughput and optional secondary index definitions, and
// returns the raw TableDescription.
func (c *Client) CreateTable(ctx context.Context, args Item) (Item, error) {
	body, err := c.call(ctx, "CreateTable", args,
		"TableName", "AttributeDefinitions", "KeySchema", "ProvisionedThroughput",
		"GlobalSecondaryIndexes", "LocalSecondaryIndexes")
	if err != nil {
		return nil, err
	}
	return tableDescription(body, "CreateTable")
}

// DescribeTable returns the raw table description.
func (c *Client) DescribeTable(ctx context.Context, table string) (Item, error) {
	body, err := c.call(ctx, "DescribeTable", Item{"TableName": table}, "TableName")
	if err != nil {
		return nil, err
	}
	return tableDescription(body, "DescribeTable")
}

// DeleteTable deletes the table and returns its final description.
func (c *Client) DeleteTable(ctx context.Context, table string) (Item, error) {
	body, err := c.call(ctx, "DeleteTable", Item{"TableName": table}, "TableName")
	if err != nil {
		return nil, err
	}
	return tableDescription(body, "DeleteTable")
}

// UpdateTable adjusts provisioned throughput or index updates.
func (c *Client) UpdateTable(ctx context.Context, args Item) (Item, error) {
	body, err := c.call(ctx, "UpdateTable", args,
		"TableName", "ProvisionedThroughput", "GlobalSecondaryIndexUpdates")
	if err != nil {
		return nil, err
	}
	return tableDescription(body, "UpdateTable")
}

func tableDescription(body json.RawMessage, op string) (Item, error) {
	var out tableResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, NewServiceError(ErrTransport, "decoding "+op+" response", WithCause(err))
	}
	if out.Table != nil {
		return out.Table, nil
	}
	return out.TableDescription, nil
}

// WaitForTable polls DescribeTable until the table reaches the desired
// status (default ACTIVE). Polling is unbounded by default; bound it with a
// context deadline.
func (c *Client) WaitForTable(ctx context.Context, table, status string) error {
	if status == "" {
		status = TableStatusActive
	}
	for {
		desc, err := c.DescribeTable(ctx, table)
		if err != nil {
			return err
		}
		if s, _ := desc["TableStatus"].(string); s == status {
			return nil
		}
		if err := c.delay(ctx, c.waitInterval); err != nil {
			return err
		}
	}
}

// TableExists reports whether the named table is present.
func (c *Client) TableExists(ctx context.Context, table string) (bool, error) {
	found := false
	err := c.ListTables(ctx, func(name string) error {
		if name == table {
			found = true
		}
		return nil
	})
	return found, err
}

// ─── single-item operations ───────────────────────────────────────────────────

// itemResponse covers every single-item response body.
type itemResponse struct {
	Item       wireItem `json:"Item"`
	Attributes wireItem `json:"Attributes"`
}

// PutItem writes one item. Returns the decoded previous attributes when
// ReturnValues requests them, else nil.
func (c *Client) PutItem(ctx context.Context, args Item) (Item, error) {
	body, err := c.call(ctx, "PutItem", args,
		"TableName", "Item", "Expected", "ReturnValues", "ReturnConsumedCapacity")
	if err != nil {
		return nil, err
	}
	return decodeAttributes(body)
}

// GetItem reads one item by key. Returns nil when the item does not exist.
func (c *Client) GetItem(ctx context.Context, args Item) (Item, error) {
	body, err := c.call(ctx, "GetItem", args,
		"TableName", "Key", "AttributesToGet", "ConsistentRead", "ReturnConsumedCapacity")
	if err != nil {
		return nil, err
	}
	var out itemResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, NewServiceError(ErrTransport, "decoding GetItem response", WithCause(err))
	}
	if out.Item == nil {
		return nil, nil
	}
	return DecodeItem(out.Item)
}

// UpdateItem applies attribute updates to one item.
func (c *Client) UpdateItem(ctx context.Context, args Item) (Item, error) {
	body, err := c.call(ctx, "UpdateItem", args,
		"TableName", "Key", "AttributeUpdates", "Expected", "ReturnValues", "ReturnConsumedCapacity")
	if err != nil {
		return nil, err
	}
	return decodeAttributes(body)
}

// DeleteItem removes one item by key.
func (c *Client) DeleteItem(ctx context.Context, args Item) (Item, error) {
	body, err := c.call(ctx, "DeleteItem", args,
		"TableName", "Key", "Expected", "ReturnValues", "ReturnConsumedCapacity")
	if err != nil {
		return nil, err
	}
	return decodeAttributes(body)
}

func decodeAttributes(body json.RawMessage) (Item, error) {
	var out itemResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, NewServiceError(ErrTransport, "decoding response attributes", WithCause(err))
	}
	if out.Attributes == nil {
		return nil, nil
	}
	return DecodeItem(out.Attributes)
}
