package dice

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parse parses a single group expression into a Group.
// Supported forms: "d20", "2d6", "1000000D6".
//
// Precondition: expr must be a non-empty string.
// Postcondition: Returns a Group with Count >= 1 and Sides >= 2, or a descriptive error.
func Parse(expr string) (Group, error) {
	raw := expr
	s := strings.ToLower(strings.TrimSpace(expr))
	if s == "" {
		return Group{}, fmt.Errorf("dice: empty expression")
	}

	dIdx := strings.Index(s, "d")
	if dIdx < 0 {
		return Group{}, fmt.Errorf("dice: missing 'd' in expression %q", raw)
	}

	// Count defaults to 1 when omitted.
	count := 1
	if countStr := s[:dIdx]; countStr != "" {
		var err error
		count, err = strconv.Atoi(countStr)
		if err != nil {
			return Group{}, fmt.Errorf("dice: invalid die count in %q: %w", raw, err)
		}
		if count <= 0 {
			return Group{}, fmt.Errorf("dice: invalid die count in %q: must be >= 1", raw)
		}
	}

	sides, err := strconv.Atoi(s[dIdx+1:])
	if err != nil {
		return Group{}, fmt.Errorf("dice: invalid die sides in %q: %w", raw, err)
	}
	if sides < 2 {
		return Group{}, fmt.Errorf("dice: invalid die sides in %q: must be >= 2", raw)
	}

	return Group{Count: count, Sides: sides}, nil
}

// ParsePool parses one or more group expressions separated by '+', ',' or
// whitespace, e.g. "500d20 + 500d4". Group order is preserved.
//
// Postcondition: Returns at least one Group, or an error naming the first bad term.
func ParsePool(expr string) ([]Group, error) {
	terms := strings.FieldsFunc(expr, func(r rune) bool {
		return r == '+' || r == ',' || unicode.IsSpace(r)
	})
	if len(terms) == 0 {
		return nil, fmt.Errorf("dice: empty pool expression")
	}
	groups := make([]Group, 0, len(terms))
	for _, term := range terms {
		g, err := Parse(term)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// MustParsePool parses expr and panics on error. Useful for package-level fixtures.
//
// Precondition: expr must be a valid pool expression.
func MustParsePool(expr string) []Group {
	groups, err := ParsePool(expr)
	if err != nil {
		panic("dice: MustParsePool failed for expression " + expr + ": " + err.Error())
	}
	return groups
}

// FormatPool renders groups as "500d20+500d4". An empty pool renders as "".
func FormatPool(groups []Group) string {
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = g.String()
	}
	return strings.Join(parts, "+")
}
