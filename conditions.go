/*
Package dynwire – condition and update encoding.

Converts comparison predicates (query key conditions, scan filters, expected
clauses) and update records into their wire form.
*/
package dynwire

// Condition is one comparison predicate against an attribute.
type Condition struct {
	Operator string // see comparisonOperands
	Values   []any  // operand values, encoded via the attribute codec
}

// comparisonOperands maps each valid operator to its required operand count
// (-1 = one or more).
var comparisonOperands = map[string]int{
	"EQ": 1, "NE": 1, "LE": 1, "LT": 1, "GE": 1, "GT": 1,
	"BEGINS_WITH": 1, "CONTAINS": 1, "NOT_CONTAINS": 1,
	"BETWEEN": 2, "IN": -1, "NULL": 0, "NOT_NULL": 0,
}

// encodeCondition produces {"ComparisonOperator": ..., "AttributeValueList": [...]}.
func encodeCondition(name string, c Condition) (map[string]any, error) {
	want, ok := comparisonOperands[c.Operator]
	if !ok {
		return nil, argErrorf("condition %q: unknown operator %q", name, c.Operator)
	}
	if want >= 0 && len(c.Values) != want {
		return nil, argErrorf("condition %q: operator %s takes %d operand(s), got %d",
			name, c.Operator, want, len(c.Values))
	}
	if want == -1 && len(c.Values) == 0 {
		return nil, argErrorf("condition %q: operator %s takes at least one operand", name, c.Operator)
	}
	out := map[string]any{"ComparisonOperator": c.Operator}
	if len(c.Values) > 0 {
		list := make([]AttributeValue, len(c.Values))
		for i, v := range c.Values {
			av, err := encodeAttribute(v)
			if err != nil {
				return nil, argErrorf("condition %q operand %d: %s", name, i, err)
			}
			list[i] = av
		}
		out["AttributeValueList"] = list
	}
	return out, nil
}

// encodeConditionsField encodes a map of attribute name → Condition.
// A bare value is shorthand for an EQ condition on that value.
func encodeConditionsField(v any) (any, error) {
	conds, err := asConditions(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(conds))
	for name, c := range conds {
		enc, err := encodeCondition(name, c)
		if err != nil {
			return nil, err
		}
		out[name] = enc
	}
	return out, nil
}

func asConditions(v any) (map[string]Condition, error) {
	switch m := v.(type) {
	case map[string]Condition:
		return m, nil
	case Item:
		return asConditions(map[string]any(m))
	case map[string]any:
		out := make(map[string]Condition, len(m))
		for name, raw := range m {
			if c, ok := raw.(Condition); ok {
				out[name] = c
			} else {
				out[name] = Condition{Operator: "EQ", Values: []any{raw}}
			}
		}
		return out, nil
	}
	return nil, NewArgError("conditions must map attribute names to Condition values")
}

// Expect states a precondition on one attribute for a conditional write.
// Exactly one of Value or Exists=false is meaningful.
type Expect struct {
	Value  any
	Exists *bool
}

func encodeExpectedField(v any) (any, error) {
	expects, err := asExpects(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(expects))
	for name, e := range expects {
		entry := map[string]any{}
		if e.Exists != nil && !*e.Exists {
			if e.Value != nil {
				return nil, argErrorf("expected %q: cannot combine a value with Exists=false", name)
			}
			entry["Exists"] = false
		} else {
			av, err := encodeAttribute(e.Value)
			if err != nil {
				return nil, argErrorf("expected %q: %s", name, err)
			}
			entry["Value"] = av
		}
		out[name] = entry
	}
	return out, nil
}

func asExpects(v any) (map[string]Expect, error) {
	switch m := v.(type) {
	case map[string]Expect:
		return m, nil
	case Item:
		return asExpects(map[string]any(m))
	case map[string]any:
		out := make(map[string]Expect, len(m))
		for name, raw := range m {
			if e, ok := raw.(Expect); ok {
				out[name] = e
			} else {
				out[name] = Expect{Value: raw}
			}
		}
		return out, nil
	}
	return nil, NewArgError("expected clause must map attribute names to Expect values")
}

// Update is one attribute update record. A zero Action means PUT.
type Update struct {
	Action string // PUT | ADD | DELETE
	Value  any
}

func encodeUpdatesField(v any) (any, error) {
	updates, err := asUpdates(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(updates))
	for name, u := range updates {
		action := u.Action
		if action == "" {
			action = "PUT"
		}
		switch action {
		case "PUT", "ADD", "DELETE":
		default:
			return nil, argErrorf("update %q: unknown action %q", name, u.Action)
		}
		entry := map[string]any{"Action": action}
		if u.Value != nil {
			av, err := encodeAttribute(u.Value)
			if err != nil {
				return nil, argErrorf("update %q: %s", name, err)
			}
			entry["Value"] = av
		} else if action != "DELETE" {
			return nil, argErrorf("update %q: action %s requires a value", name, action)
		}
		out[name] = entry
	}
	return out, nil
}

func asUpdates(v any) (map[string]Update, error) {
	switch m := v.(type) {
	case map[string]Update:
		return m, nil
	case Item:
		return asUpdates(map[string]any(m))
	case map[string]any:
		out := make(map[string]Update, len(m))
		for name, raw := range m {
			if u, ok := raw.(Update); ok {
				out[name] = u
			} else {
				out[name] = Update{Action: "PUT", Value: raw}
			}
		}
		return out, nil
	}
	return nil, NewArgError("updates must map attribute names to Update values")
}
