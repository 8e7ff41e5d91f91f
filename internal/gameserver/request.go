package gameserver

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/swingdice/internal/game/dice"
	"github.com/cory-johannsen/swingdice/internal/game/preset"
	dicev1 "github.com/cory-johannsen/swingdice/internal/gameserver/dicev1"
)

// errBadRequest marks payloads that cannot be decoded into a pool request.
var errBadRequest = errors.New("bad request")

// maxExactInt is the largest integer a protobuf number carries exactly.
const maxExactInt = 1 << 53

// poolRequest is a decoded Roll or Simulate payload.
type poolRequest struct {
	groups    []dice.Group
	swing     float64
	preset    *preset.Preset
	scriptSet string
	trials    int
}

// decodePool resolves the pool and swing of req.
//
// Precondition: presets must be non-nil.
// Postcondition: Returns a request with groups and swing set, or an error wrapping
// errBadRequest, preset.ErrNotFound or a dice parse error.
func decodePool(req *structpb.Struct, presets *preset.Registry, defaultSwing float64) (poolRequest, error) {
	fields := req.GetFields()
	var out poolRequest

	sources := 0
	for _, name := range []string{dicev1.FieldGroups, dicev1.FieldExpression, dicev1.FieldPreset} {
		if _, ok := fields[name]; ok {
			sources++
		}
	}
	if sources > 1 {
		return out, fmt.Errorf("%w: set only one of groups, expression and preset", errBadRequest)
	}

	switch {
	case fields[dicev1.FieldGroups] != nil:
		groups, err := decodeGroups(fields[dicev1.FieldGroups])
		if err != nil {
			return out, err
		}
		out.groups = groups
	case fields[dicev1.FieldExpression] != nil:
		expr, err := stringField(fields, dicev1.FieldExpression)
		if err != nil {
			return out, err
		}
		groups, err := dice.ParsePool(expr)
		if err != nil {
			return out, err
		}
		out.groups = groups
	case fields[dicev1.FieldPreset] != nil:
		id, err := stringField(fields, dicev1.FieldPreset)
		if err != nil {
			return out, err
		}
		p, err := presets.Get(id)
		if err != nil {
			return out, err
		}
		groups, err := p.Groups()
		if err != nil {
			return out, err
		}
		out.groups = groups
		out.preset = p
	}

	out.swing = defaultSwing
	if out.preset != nil && out.preset.Swing != nil {
		out.swing = *out.preset.Swing
	}
	if v, ok := fields[dicev1.FieldSwing]; ok {
		n, isNum := v.GetKind().(*structpb.Value_NumberValue)
		if !isNum {
			return out, fmt.Errorf("%w: swing must be a number", errBadRequest)
		}
		out.swing = n.NumberValue
	}

	if _, ok := fields[dicev1.FieldScriptSet]; ok {
		set, err := stringField(fields, dicev1.FieldScriptSet)
		if err != nil {
			return out, err
		}
		out.scriptSet = set
	}
	if v, ok := fields[dicev1.FieldTrials]; ok {
		trials, err := intValue(v, dicev1.FieldTrials)
		if err != nil {
			return out, err
		}
		out.trials = trials
	}
	return out, nil
}

func decodeGroups(v *structpb.Value) ([]dice.Group, error) {
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: groups must be a list", errBadRequest)
	}
	groups := make([]dice.Group, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		obj := item.GetStructValue()
		if obj == nil {
			return nil, fmt.Errorf("%w: groups[%d] must be an object", errBadRequest, i)
		}
		count, err := intValue(obj.GetFields()[dicev1.FieldCount], fmt.Sprintf("groups[%d].count", i))
		if err != nil {
			return nil, err
		}
		sides, err := intValue(obj.GetFields()[dicev1.FieldSides], fmt.Sprintf("groups[%d].sides", i))
		if err != nil {
			return nil, err
		}
		groups = append(groups, dice.Group{Count: count, Sides: sides})
	}
	return groups, nil
}

func stringField(fields map[string]*structpb.Value, name string) (string, error) {
	s, ok := fields[name].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", errBadRequest, name)
	}
	return s.StringValue, nil
}

func intValue(v *structpb.Value, name string) (int, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number", errBadRequest, name)
	}
	f := n.NumberValue
	if math.IsNaN(f) || math.Trunc(f) != f || math.Abs(f) > maxExactInt {
		return 0, fmt.Errorf("%w: %s must be an integer, got %v", errBadRequest, name, f)
	}
	return int(f), nil
}
