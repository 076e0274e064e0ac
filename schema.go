/*
Package dynwire – parameter schema.

A static, read-only table of every request field the library will put on the
wire, with per-field validation and encoding rules. buildPayload is the single
choke point for request shaping: no field reaches the wire without an entry
here.
*/
package dynwire

import (
	"encoding/json"
	"math"
	"reflect"
)

// valueShape constrains the native container shape of a field.
type valueShape int

const (
	shapeAny valueShape = iota
	shapeString
	shapeBool
	shapeMap
	shapeList
)

// paramDef is the static metadata for one request field. Initialized once at
// load, never mutated.
type paramDef struct {
	Required bool
	Allowed  []string // closed enumeration; empty = unconstrained
	Shape    valueShape
	Integer  bool
	Encode   func(any) (any, error)
}

var paramTable = map[string]*paramDef{
	"TableName":                   {Required: true, Shape: shapeString},
	"AttributeDefinitions":        {Required: true, Shape: shapeList},
	"KeySchema":                   {Required: true, Shape: shapeList, Encode: encodeKeySchemaField},
	"ProvisionedThroughput":       {Required: true, Shape: shapeMap, Encode: encodeThroughputField},
	"GlobalSecondaryIndexes":      {Shape: shapeList},
	"LocalSecondaryIndexes":       {Shape: shapeList},
	"GlobalSecondaryIndexUpdates": {Shape: shapeList},
	"Item":                        {Required: true, Shape: shapeMap, Encode: encodeItemField},
	"Key":                         {Required: true, Shape: shapeMap, Encode: encodeKeyField},
	"Expected":                    {Shape: shapeMap, Encode: encodeExpectedField},
	"AttributeUpdates":            {Required: true, Shape: shapeMap, Encode: encodeUpdatesField},
	"ReturnValues":                {Allowed: []string{"NONE", "ALL_OLD", "UPDATED_OLD", "ALL_NEW", "UPDATED_NEW"}},
	"ReturnConsumedCapacity":      {Allowed: []string{"INDEXES", "TOTAL", "NONE"}},
	"AttributesToGet":             {Shape: shapeList},
	"ConsistentRead":              {Shape: shapeBool},
	"Limit":                       {Integer: true},
	"ExclusiveStartKey":           {Encode: encodeCursorField},
	"ExclusiveStartTableName":     {Shape: shapeString},
	"KeyConditions":               {Required: true, Shape: shapeMap, Encode: encodeConditionsField},
	"ScanFilter":                  {Shape: shapeMap, Encode: encodeConditionsField},
	"ScanIndexForward":            {Shape: shapeBool},
	"IndexName":                   {Shape: shapeString},
	"Select":                      {Allowed: []string{"ALL_ATTRIBUTES", "ALL_PROJECTED_ATTRIBUTES", "SPECIFIC_ATTRIBUTES", "COUNT"}},
	"Segment":                     {Integer: true},
	"TotalSegments":               {Integer: true},
	"RequestItems":                {Required: true, Shape: shapeMap},
}

// buildPayload assembles the wire payload for one operation from caller args.
// Only the named fields are considered; requesting a field with no table
// entry is a programmer error. Fields whose value resolves to nil are
// omitted entirely.
func buildPayload(args Item, names ...string) (map[string]any, error) {
	payload := make(map[string]any, len(names))
	for _, name := range names {
		def, ok := paramTable[name]
		if !ok {
			return nil, argErrorf("unknown request field %q", name)
		}
		v, present := args[name]
		if !present || v == nil {
			if def.Required {
				return nil, argErrorf("missing required field %q", name)
			}
			continue
		}
		if err := checkShape(name, def, v); err != nil {
			return nil, err
		}
		if len(def.Allowed) > 0 {
			s, ok := v.(string)
			if !ok || !contains(def.Allowed, s) {
				return nil, argErrorf("field %q: value %v not in %v", name, v, def.Allowed)
			}
		}
		if def.Integer {
			n, ok := integerValue(v)
			if !ok {
				return nil, argErrorf("field %q must be an integer", name)
			}
			v = n
		}
		if def.Encode != nil {
			encoded, err := def.Encode(v)
			if err != nil {
				return nil, argErrorf("field %q: %s", name, err)
			}
			v = encoded
		}
		if v == nil {
			continue
		}
		payload[name] = v
	}
	return payload, nil
}

func checkShape(name string, def *paramDef, v any) error {
	switch def.Shape {
	case shapeAny:
		return nil
	case shapeString:
		if _, ok := v.(string); !ok {
			return argErrorf("field %q must be a string", name)
		}
	case shapeBool:
		if _, ok := v.(bool); !ok {
			return argErrorf("field %q must be a bool", name)
		}
	case shapeMap:
		if k := reflect.ValueOf(v).Kind(); k != reflect.Map && k != reflect.Struct && k != reflect.Pointer {
			return argErrorf("field %q must be a mapping", name)
		}
	case shapeList:
		if reflect.ValueOf(v).Kind() != reflect.Slice {
			return argErrorf("field %q must be a list", name)
		}
	}
	return nil
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// integerValue accepts any Go numeric whose value is integral.
func integerValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// ─── table-schema types ───────────────────────────────────────────────────────

// AttributeDefinition declares the type of a key attribute.
type AttributeDefinition struct {
	AttributeName string `json:"AttributeName"`
	AttributeType string `json:"AttributeType"` // S | N | B
}

// KeySchemaElement names one key attribute and its role.
type KeySchemaElement struct {
	AttributeName string `json:"AttributeName"`
	KeyType       string `json:"KeyType"` // HASH | RANGE
}

// ProvisionedThroughput carries the table capacity settings.
type ProvisionedThroughput struct {
	ReadCapacityUnits  int64 `json:"ReadCapacityUnits"`
	WriteCapacityUnits int64 `json:"WriteCapacityUnits"`
}

// KeySchemaFor builds the attribute definitions and key schema for a table
// with the given hash key and optional range key. Attribute types are wire
// tags: "S", "N" or "B".
func KeySchemaFor(hashName, hashType, rangeName, rangeType string) ([]AttributeDefinition, []KeySchemaElement) {
	defs := []AttributeDefinition{{AttributeName: hashName, AttributeType: hashType}}
	keys := []KeySchemaElement{{AttributeName: hashName, KeyType: "HASH"}}
	if rangeName != "" {
		defs = append(defs, AttributeDefinition{AttributeName: rangeName, AttributeType: rangeType})
		keys = append(keys, KeySchemaElement{AttributeName: rangeName, KeyType: "RANGE"})
	}
	return defs, keys
}

// ─── field encoders ───────────────────────────────────────────────────────────

func encodeItemField(v any) (any, error) {
	item, err := asItem(v)
	if err != nil {
		return nil, err
	}
	return EncodeItem(item)
}

func encodeKeyField(v any) (any, error) {
	key, err := asItem(v)
	if err != nil {
		return nil, err
	}
	return EncodeKey(key)
}

// encodeCursorField passes a service-supplied continuation token through
// untouched and encodes a caller-supplied key map.
func encodeCursorField(v any) (any, error) {
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return encodeKeyField(v)
}

func encodeKeySchemaField(v any) (any, error) {
	switch keys := v.(type) {
	case []KeySchemaElement:
		for _, k := range keys {
			if k.AttributeName == "" {
				return nil, NewArgError("key schema element missing AttributeName")
			}
			if k.KeyType != "HASH" && k.KeyType != "RANGE" {
				return nil, argErrorf("key schema element %q: bad KeyType %q", k.AttributeName, k.KeyType)
			}
		}
		return keys, nil
	default:
		// already wire-shaped (e.g. decoded from a DescribeTable response)
		return v, nil
	}
}

func encodeThroughputField(v any) (any, error) {
	switch tp := v.(type) {
	case ProvisionedThroughput:
		if tp.ReadCapacityUnits <= 0 || tp.WriteCapacityUnits <= 0 {
			return nil, NewArgError("throughput capacity units must be positive integers")
		}
		return tp, nil
	case *ProvisionedThroughput:
		return encodeThroughputField(*tp)
	case map[string]any:
		for _, field := range []string{"ReadCapacityUnits", "WriteCapacityUnits"} {
			n, ok := integerValue(tp[field])
			if !ok || n <= 0 {
				return nil, argErrorf("throughput %s must be a positive integer", field)
			}
		}
		return tp, nil
	}
	return nil, NewArgError("bad ProvisionedThroughput shape")
}

func asItem(v any) (Item, error) {
	switch m := v.(type) {
	case Item:
		return m, nil
	case map[string]any:
		return Item(m), nil
	}
	return nil, NewArgError("value must be a mapping of attribute names")
}
