/*
Package dynwire – pagination engine for scan, query and list-tables.

Pages are strictly sequential: the next page's request is not built until the
previous response resolves, because the continuation token depends on it. A
fatal failure on any page aborts the whole operation.
*/
package dynwire

import (
	"context"
	"encoding/json"
)

// ItemFunc consumes one decoded item per invocation. A non-nil error aborts
// the paginated operation.
type ItemFunc func(item Item) error

// itemPage is one scan/query response page.
type itemPage struct {
	Items            []wireItem      `json:"Items"`
	Count            int             `json:"Count"`
	LastEvaluatedKey json.RawMessage `json:"LastEvaluatedKey"`
}

// Query runs a key-condition query, invoking fn once per decoded item across
// all pages. Args: TableName and KeyConditions required; optional IndexName,
// AttributesToGet, ConsistentRead, ScanIndexForward, Select, Limit (caps
// total items yielded) and ExclusiveStartKey.
func (c *Client) Query(ctx context.Context, args Item, fn ItemFunc) error {
	payload, err := buildPayload(args,
		"TableName", "KeyConditions", "IndexName", "AttributesToGet", "ConsistentRead",
		"ScanIndexForward", "Select", "Limit", "ExclusiveStartKey")
	if err != nil {
		return err
	}
	return c.itemPages(ctx, "Query", payload, resultLimit(args), fn)
}

// Scan runs a full-table scan with optional filter predicates. Args:
// TableName required; optional ScanFilter, AttributesToGet, Select, Limit,
// Segment, TotalSegments and ExclusiveStartKey.
func (c *Client) Scan(ctx context.Context, args Item, fn ItemFunc) error {
	payload, err := buildPayload(args,
		"TableName", "ScanFilter", "AttributesToGet", "Select", "Limit",
		"Segment", "TotalSegments", "ExclusiveStartKey")
	if err != nil {
		return err
	}
	return c.itemPages(ctx, "Scan", payload, resultLimit(args), fn)
}

// itemPages drives the shared cursor loop for Query and Scan. Once limit
// items have been yielded the loop terminates without issuing another page
// request, even if more pages exist.
func (c *Client) itemPages(ctx context.Context, op string, payload map[string]any, limit int, fn ItemFunc) error {
	yielded := 0
	for {
		body, err := c.do(ctx, op, payload)
		if err != nil {
			return err
		}
		var page itemPage
		if err := json.Unmarshal(body, &page); err != nil {
			return NewServiceError(ErrTransport, "decoding "+op+" page", WithCause(err))
		}
		for _, raw := range page.Items {
			item, err := DecodeItem(raw)
			if err != nil {
				return err
			}
			if err := fn(item); err != nil {
				return err
			}
			yielded++
			if limit > 0 && yielded >= limit {
				return nil
			}
		}
		if !moreToken(page.LastEvaluatedKey) {
			return nil
		}
		payload["ExclusiveStartKey"] = page.LastEvaluatedKey
	}
}

// ListTables invokes fn once per table name, following the name cursor until
// the service stops supplying one.
func (c *Client) ListTables(ctx context.Context, fn func(name string) error) error {
	payload := map[string]any{}
	for {
		body, err := c.do(ctx, "ListTables", payload)
		if err != nil {
			return err
		}
		var page struct {
			TableNames             []string `json:"TableNames"`
			LastEvaluatedTableName string   `json:"LastEvaluatedTableName"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return NewServiceError(ErrTransport, "decoding ListTables page", WithCause(err))
		}
		for _, name := range page.TableNames {
			if err := fn(name); err != nil {
				return err
			}
		}
		if page.LastEvaluatedTableName == "" {
			return nil
		}
		payload["ExclusiveStartTableName"] = page.LastEvaluatedTableName
	}
}

// resultLimit extracts the caller's total-result cap from args.
func resultLimit(args Item) int {
	if n, ok := integerValue(args["Limit"]); ok {
		return int(n)
	}
	return 0
}

// moreToken reports whether a continuation token is present.
func moreToken(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
