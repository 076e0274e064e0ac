package dynwire

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchWrite_ResubmitsUnprocessed(t *testing.T) {
	rt := &scripted{}
	rt.respond(200, `{"UnprocessedItems":{"widgets":[
		{"PutRequest":{"Item":{"id":{"N":"2"}}}},
		{"PutRequest":{"Item":{"id":{"N":"3"}}}}
	]}}`)
	rt.respond(200, `{}`)

	c, _ := newTestClient(t, rt, Config{})
	err := c.BatchWriteItem(bg(), map[string][]WriteRequest{
		"widgets": {
			{Put: Item{"id": 1}},
			{Put: Item{"id": 2}},
			{Put: Item{"id": 3}},
		},
	})
	require.NoError(t, err)
	require.Len(t, rt.calls, 2, "no requests after a clean response")

	// second round carries exactly the two unprocessed records
	p := rt.payload(t, 1)
	reqs := p["RequestItems"].(map[string]any)["widgets"].([]any)
	require.Len(t, reqs, 2)
	ids := map[string]bool{}
	for _, r := range reqs {
		item := r.(map[string]any)["PutRequest"].(map[string]any)["Item"].(map[string]any)
		ids[item["id"].(map[string]any)["N"].(string)] = true
	}
	assert.Equal(t, map[string]bool{"2": true, "3": true}, ids)
}

func TestBatchWrite_BoundedSlices(t *testing.T) {
	rt := &scripted{}
	c, _ := newTestClient(t, rt, Config{})

	var reqs []WriteRequest
	for i := 0; i < 60; i++ {
		reqs = append(reqs, WriteRequest{Put: Item{"id": i}})
	}
	err := c.BatchWriteItem(bg(), map[string][]WriteRequest{"widgets": reqs})
	require.NoError(t, err)
	require.Len(t, rt.calls, 3, "60 records drain in 25/25/10")

	first := rt.payload(t, 0)["RequestItems"].(map[string]any)["widgets"].([]any)
	assert.Len(t, first, 25)
	last := rt.payload(t, 2)["RequestItems"].(map[string]any)["widgets"].([]any)
	assert.Len(t, last, 10)
}

func TestBatchWrite_RecordValidation(t *testing.T) {
	rt := &scripted{}
	c, _ := newTestClient(t, rt, Config{})

	err := c.BatchWriteItem(bg(), map[string][]WriteRequest{
		"widgets": {{Put: Item{"id": 1}, DeleteKey: Item{"id": 1}}},
	})
	require.Error(t, err, "both put and delete")

	err = c.BatchWriteItem(bg(), map[string][]WriteRequest{
		"widgets": {{}},
	})
	require.Error(t, err, "neither put nor delete")

	err = c.BatchWriteItem(bg(), map[string][]WriteRequest{})
	require.Error(t, err, "empty batch")

	assert.Empty(t, rt.calls, "validation fails before any exchange")
}

func TestBatchWrite_FatalDiscardsQueue(t *testing.T) {
	rt := &scripted{}
	rt.respond(400, `{"__type":"com.amazonaws.dynamodb.v20120810#ResourceNotFoundException","message":"gone"}`)

	c, _ := newTestClient(t, rt, Config{})
	var reqs []WriteRequest
	for i := 0; i < 40; i++ {
		reqs = append(reqs, WriteRequest{DeleteKey: Item{"id": i}})
	}
	err := c.BatchWriteItem(bg(), map[string][]WriteRequest{"widgets": reqs})
	require.Error(t, err)
	assert.Len(t, rt.calls, 1, "remaining rounds abandoned")
}

func TestBatchGet_FoundAndUnprocessed(t *testing.T) {
	rt := &scripted{}
	rt.respond(200, `{
		"Responses":{"widgets":[{"id":{"N":"1"},"name":{"S":"one"}}]},
		"UnprocessedKeys":{"widgets":{"Keys":[{"id":{"N":"2"}}]}}
	}`)
	rt.respond(200, `{"Responses":{"widgets":[{"id":{"N":"2"},"name":{"S":"two"}}]}}`)

	c, _ := newTestClient(t, rt, Config{})
	var names []string
	err := c.BatchGetItem(bg(), map[string]GetRequest{
		"widgets": {Keys: []Item{{"id": 1}, {"id": 2}}, ConsistentRead: true},
	}, nil, func(table string, item Item) error {
		require.Equal(t, "widgets", table)
		names = append(names, item["name"].(string))
		return nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"one", "two"}, names)
	require.Len(t, rt.calls, 2)

	// read flags captured at call start apply to the resubmission too
	second := rt.payload(t, 1)["RequestItems"].(map[string]any)["widgets"].(map[string]any)
	assert.Equal(t, true, second["ConsistentRead"])
	keys := second["Keys"].([]any)
	require.Len(t, keys, 1)
	assert.Equal(t, map[string]any{"N": "2"}, keys[0].(map[string]any)["id"])
}

func TestBatchGet_Limit(t *testing.T) {
	rt := &scripted{}
	rt.respond(200, `{
		"Responses":{"widgets":[{"id":{"N":"1"}},{"id":{"N":"2"}}]},
		"UnprocessedKeys":{"widgets":{"Keys":[{"id":{"N":"3"}}]}}
	}`)

	c, _ := newTestClient(t, rt, Config{})
	count := 0
	err := c.BatchGetItem(bg(), map[string]GetRequest{
		"widgets": {Keys: []Item{{"id": 1}, {"id": 2}, {"id": 3}}},
	}, &BatchParams{Limit: 2}, func(string, Item) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, rt.calls, 1, "limit reached, unprocessed keys abandoned")
}

func TestBatchGet_BoundedSlices(t *testing.T) {
	rt := &scripted{}
	c, _ := newTestClient(t, rt, Config{})

	keys := make([]Item, 130)
	for i := range keys {
		keys[i] = Item{"id": fmt.Sprintf("k%d", i)}
	}
	err := c.BatchGetItem(bg(), map[string]GetRequest{"widgets": {Keys: keys}},
		nil, func(string, Item) error { return nil })
	require.NoError(t, err)
	require.Len(t, rt.calls, 2, "130 keys drain in 100/30")

	first := rt.payload(t, 0)["RequestItems"].(map[string]any)["widgets"].(map[string]any)
	assert.Len(t, first["Keys"], 100)
}
