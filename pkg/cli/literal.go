package cli

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/funvibe/mop/internal/dispatch"
	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
)

// parseLiteral turns a command-line argument into a value.
//
//	null, true, false
//	42 (Integer, widened to Long or BigInteger when it does not fit)
//	42L  42G  3.5 (BigDecimal)  3.5f  3.5d  3.5G
//	"text" or bare words (String), 'c' (Character)
//	[1, "a", null] (Object[])
//	(Number)42 pins the value to a class for dispatch
func parseLiteral(s string, u *typesystem.Universe, d object.Dispatcher) (object.Object, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "null":
		return object.NULL, nil
	case "true", "false":
		return &object.Boolean{Value: s == "true"}, nil
	case "":
		return &object.String{}, nil
	}

	if s[0] == '(' {
		end := strings.IndexByte(s, ')')
		if end < 0 {
			return nil, fmt.Errorf("unterminated cast in %q", s)
		}
		cls, err := u.Lookup(strings.TrimSpace(s[1:end]))
		if err != nil {
			return nil, err
		}
		inner, err := parseLiteral(s[end+1:], u, d)
		if err != nil {
			return nil, err
		}
		return dispatch.Wrap(inner, cls, d), nil
	}

	if s[0] == '[' {
		if !strings.HasSuffix(s, "]") {
			return nil, fmt.Errorf("unterminated array in %q", s)
		}
		body := strings.TrimSpace(s[1 : len(s)-1])
		var elements []object.Object
		if body != "" {
			for _, part := range strings.Split(body, ",") {
				el, err := parseLiteral(part, u, d)
				if err != nil {
					return nil, err
				}
				elements = append(elements, el)
			}
		}
		return object.NewArray(typesystem.Object, elements...), nil
	}

	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		v, err := strconv.Unquote(s)
		if err != nil {
			return nil, fmt.Errorf("bad string literal %s: %w", s, err)
		}
		return &object.String{Value: v}, nil
	}
	if len(s) >= 3 && s[0] == '\'' && s[len(s)-1] == '\'' {
		body := s[1 : len(s)-1]
		r, size := utf8.DecodeRuneInString(body)
		if size != len(body) {
			return nil, fmt.Errorf("bad char literal %s", s)
		}
		return &object.Char{Value: r}, nil
	}

	if n, ok, err := parseNumber(s); ok {
		return n, err
	}
	return &object.String{Value: s}, nil
}

// parseNumber reports ok=false when s does not look like a number at all.
func parseNumber(s string) (object.Object, bool, error) {
	c := s[0]
	if !(c >= '0' && c <= '9') && !((c == '-' || c == '+') && len(s) > 1 && s[1] >= '0' && s[1] <= '9') {
		return nil, false, nil
	}

	body, suffix := s, byte(0)
	switch last := s[len(s)-1]; last {
	case 'L', 'l', 'G', 'g', 'F', 'f', 'D', 'd':
		body, suffix = s[:len(s)-1], last|0x20
	}
	fractional := strings.ContainsAny(body, ".eE")

	switch {
	case suffix == 'f' || suffix == 'd' || (fractional && suffix == 0):
		if suffix == 0 {
			d, err := object.NewDecimal(body)
			return d, true, err
		}
		f, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return nil, true, fmt.Errorf("bad number %s: %w", s, err)
		}
		if suffix == 'f' {
			return &object.Float{Value: float32(f)}, true, nil
		}
		return &object.Double{Value: f}, true, nil
	case suffix == 'g':
		if fractional {
			d, err := object.NewDecimal(body)
			return d, true, err
		}
		b, ok := new(big.Int).SetString(body, 10)
		if !ok {
			return nil, true, fmt.Errorf("bad number %s", s)
		}
		return &object.BigInt{Value: b}, true, nil
	case fractional:
		return nil, true, fmt.Errorf("bad number %s", s)
	}

	b, ok := new(big.Int).SetString(body, 10)
	if !ok {
		return nil, true, fmt.Errorf("bad number %s", s)
	}
	switch {
	case suffix == 'l':
		if !b.IsInt64() {
			return nil, true, fmt.Errorf("%s overflows long", s)
		}
		return &object.Long{Value: b.Int64()}, true, nil
	case b.IsInt64() && b.Int64() >= math.MinInt32 && b.Int64() <= math.MaxInt32:
		return &object.Int{Value: int32(b.Int64())}, true, nil
	case b.IsInt64():
		return &object.Long{Value: b.Int64()}, true, nil
	}
	return &object.BigInt{Value: b}, true, nil
}
