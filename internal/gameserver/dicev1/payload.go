package dicev1

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Request field names.
const (
	FieldGroups     = "groups"
	FieldCount      = "count"
	FieldSides      = "sides"
	FieldExpression = "expression"
	FieldPreset     = "preset"
	FieldSwing      = "swing"
	FieldScriptSet  = "script_set"
	FieldTrials     = "trials"
)

// PoolRequest selects the pool for Roll and Simulate. Exactly one of Groups,
// Expression and Preset should be set. A nil Swing defers to the preset, then to
// the server default.
type PoolRequest struct {
	Groups     [][2]int // {count, sides}
	Expression string
	Preset     string
	Swing      *float64
	ScriptSet  string
	Trials     int
}

// Struct encodes r as a request payload. Zero-valued fields are omitted.
func (r PoolRequest) Struct() (*structpb.Struct, error) {
	m := make(map[string]interface{})
	if len(r.Groups) > 0 {
		groups := make([]interface{}, len(r.Groups))
		for i, g := range r.Groups {
			groups[i] = map[string]interface{}{FieldCount: g[0], FieldSides: g[1]}
		}
		m[FieldGroups] = groups
	}
	if r.Expression != "" {
		m[FieldExpression] = r.Expression
	}
	if r.Preset != "" {
		m[FieldPreset] = r.Preset
	}
	if r.Swing != nil {
		m[FieldSwing] = *r.Swing
	}
	if r.ScriptSet != "" {
		m[FieldScriptSet] = r.ScriptSet
	}
	if r.Trials != 0 {
		m[FieldTrials] = r.Trials
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	return s, nil
}
