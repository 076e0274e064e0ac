/*
Package dynwire – batch get/write engine.

Batch callers accumulate a queue of per-table records which is drained in
bounded slices per wire round-trip (25 for writes, 100 for gets). Entries the
service reports as unprocessed are pushed back onto the queue for the next
round. A fatal failure discards the remaining queue.
*/
package dynwire

import (
	"context"
	"encoding/json"
)

const (
	maxBatchWriteRecords = 25
	maxBatchGetKeys      = 100
)

// WriteRequest is one batch-write record: exactly one of Put or DeleteKey.
type WriteRequest struct {
	Put       Item
	DeleteKey Item
}

// GetRequest holds the keys and read flags for one table in a batch get.
// The flags are captured at call start and applied to every round.
type GetRequest struct {
	Keys            []Item
	ConsistentRead  bool
	AttributesToGet []string
}

// BatchParams carries optional batch settings.
type BatchParams struct {
	// Limit caps the total items yielded across all rounds.
	Limit int
}

// BatchItemFunc consumes one found item per invocation.
type BatchItemFunc func(table string, item Item) error

// batchEntry is one queued record. body is either a freshly encoded payload
// fragment or a raw unprocessed remainder from a previous response.
type batchEntry struct {
	table string
	body  any
}

// ─── batch write ──────────────────────────────────────────────────────────────

// BatchWriteItem writes and deletes items across tables, resubmitting
// unprocessed entries until the queue drains. Encoding and record validation
// happen before the first round-trip.
func (c *Client) BatchWriteItem(ctx context.Context, writes map[string][]WriteRequest) error {
	var queue []batchEntry
	for table, reqs := range writes {
		for _, r := range reqs {
			entry, err := encodeWriteRequest(table, r)
			if err != nil {
				return err
			}
			queue = append(queue, entry)
		}
	}
	if len(queue) == 0 {
		return NewArgError("batch write has no records")
	}

	for len(queue) > 0 {
		round := queue
		if len(round) > maxBatchWriteRecords {
			round = round[:maxBatchWriteRecords]
		}
		queue = queue[len(round):]

		body, err := c.batchCall(ctx, "BatchWriteItem", groupWrites(round))
		if err != nil {
			return err
		}
		var resp struct {
			UnprocessedItems map[string][]json.RawMessage `json:"UnprocessedItems"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return NewServiceError(ErrTransport, "decoding BatchWriteItem response", WithCause(err))
		}
		for table, raws := range resp.UnprocessedItems {
			for _, raw := range raws {
				queue = append(queue, batchEntry{table: table, body: raw})
			}
		}
	}
	return nil
}

func encodeWriteRequest(table string, r WriteRequest) (batchEntry, error) {
	if (r.Put == nil) == (r.DeleteKey == nil) {
		return batchEntry{}, argErrorf("table %q: batch write record needs exactly one of Put or DeleteKey", table)
	}
	if r.Put != nil {
		item, err := EncodeItem(r.Put)
		if err != nil {
			return batchEntry{}, err
		}
		return batchEntry{table: table, body: map[string]any{
			"PutRequest": map[string]any{"Item": item},
		}}, nil
	}
	key, err := EncodeKey(r.DeleteKey)
	if err != nil {
		return batchEntry{}, err
	}
	return batchEntry{table: table, body: map[string]any{
		"DeleteRequest": map[string]any{"Key": key},
	}}, nil
}

func groupWrites(round []batchEntry) map[string]any {
	grouped := map[string]any{}
	for _, e := range round {
		list, _ := grouped[e.table].([]any)
		grouped[e.table] = append(list, e.body)
	}
	return grouped
}

// ─── batch get ────────────────────────────────────────────────────────────────

// BatchGetItem fetches items by key across tables, invoking fn once per
// found item and resubmitting unprocessed keys until the queue drains or the
// optional result limit is reached.
func (c *Client) BatchGetItem(ctx context.Context, gets map[string]GetRequest, params *BatchParams, fn BatchItemFunc) error {
	if params == nil {
		params = &BatchParams{}
	}
	var queue []batchEntry
	for table, req := range gets {
		if len(req.Keys) == 0 {
			return argErrorf("table %q: batch get has no keys", table)
		}
		for _, k := range req.Keys {
			key, err := EncodeKey(k)
			if err != nil {
				return err
			}
			queue = append(queue, batchEntry{table: table, body: key})
		}
	}
	if len(queue) == 0 {
		return NewArgError("batch get has no keys")
	}

	yielded := 0
	for len(queue) > 0 {
		round := queue
		if len(round) > maxBatchGetKeys {
			round = round[:maxBatchGetKeys]
		}
		queue = queue[len(round):]

		body, err := c.batchCall(ctx, "BatchGetItem", groupGets(round, gets))
		if err != nil {
			return err
		}
		var resp struct {
			Responses       map[string][]wireItem `json:"Responses"`
			UnprocessedKeys map[string]struct {
				Keys []json.RawMessage `json:"Keys"`
			} `json:"UnprocessedKeys"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return NewServiceError(ErrTransport, "decoding BatchGetItem response", WithCause(err))
		}
		for table, raws := range resp.Responses {
			for _, raw := range raws {
				item, err := DecodeItem(raw)
				if err != nil {
					return err
				}
				if err := fn(table, item); err != nil {
					return err
				}
				yielded++
				if params.Limit > 0 && yielded >= params.Limit {
					return nil
				}
			}
		}
		for table, unp := range resp.UnprocessedKeys {
			for _, raw := range unp.Keys {
				queue = append(queue, batchEntry{table: table, body: raw})
			}
		}
	}
	return nil
}

// groupGets groups one round's keys by table and merges in the per-table
// read flags captured at call start.
func groupGets(round []batchEntry, gets map[string]GetRequest) map[string]any {
	grouped := map[string]any{}
	for _, e := range round {
		entry, _ := grouped[e.table].(map[string]any)
		if entry == nil {
			entry = map[string]any{}
			req := gets[e.table]
			if req.ConsistentRead {
				entry["ConsistentRead"] = true
			}
			if len(req.AttributesToGet) > 0 {
				entry["AttributesToGet"] = req.AttributesToGet
			}
			grouped[e.table] = entry
		}
		keys, _ := entry["Keys"].([]any)
		entry["Keys"] = append(keys, e.body)
	}
	return grouped
}

// batchCall shapes one batch round through the schema choke point and the
// retry orchestrator.
func (c *Client) batchCall(ctx context.Context, op string, grouped map[string]any) (json.RawMessage, error) {
	payload, err := buildPayload(Item{"RequestItems": grouped}, "RequestItems")
	if err != nil {
		return nil, err
	}
	return c.do(ctx, op, payload)
}
