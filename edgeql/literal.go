package edgeql

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

func literal(t Type, v any) *LiteralExpr {
	return &LiteralExpr{exprBase: newBase(t, One), val: v}
}

// Str builds a std::str literal.
func Str(v string) *LiteralExpr { return literal(StrType, v) }

// Bool builds a std::bool literal.
func Bool(v bool) *LiteralExpr { return literal(BoolType, v) }

// Int16 builds a std::int16 literal.
func Int16(v int16) *LiteralExpr { return literal(Int16Type, v) }

// Int32 builds a std::int32 literal.
func Int32(v int32) *LiteralExpr { return literal(Int32Type, v) }

// Int64 builds a std::int64 literal.
func Int64(v int64) *LiteralExpr { return literal(Int64Type, v) }

// Float32 builds a std::float32 literal.
func Float32(v float32) *LiteralExpr { return literal(Float32Type, v) }

// Float64 builds a std::float64 literal.
func Float64(v float64) *LiteralExpr { return literal(Float64Type, v) }

// BigInt builds a std::bigint literal from its decimal digits.
func BigInt(digits string) *LiteralExpr {
	if !validDigits(digits) {
		raise(TypeMismatch, "bigint literal %q is not an integer", digits)
	}
	return literal(BigIntType, digits)
}

// Decimal builds a std::decimal literal from its decimal form.
func Decimal(digits string) *LiteralExpr {
	if !validDecimal(digits) {
		raise(TypeMismatch, "decimal literal %q is not a number", digits)
	}
	return literal(DecimalType, digits)
}

// UUID builds a std::uuid literal.
func UUID(v uuid.UUID) *LiteralExpr { return literal(UUIDType, v) }

// Bytes builds a std::bytes literal.
func Bytes(v []byte) *LiteralExpr {
	return literal(BytesType, append([]byte(nil), v...))
}

// JSON builds a std::json literal from already-encoded JSON text.
func JSON(raw json.RawMessage) *LiteralExpr {
	if !json.Valid(raw) {
		raise(TypeMismatch, "json literal is not valid JSON")
	}
	return literal(JSONType, append(json.RawMessage(nil), raw...))
}

// Datetime builds a std::datetime literal. The zone is normalized to
// UTC so rendering is deterministic.
func Datetime(v time.Time) *LiteralExpr {
	return literal(DatetimeType, v.UTC())
}

// Duration builds a std::duration literal.
func Duration(v time.Duration) *LiteralExpr {
	return literal(DurationType, v)
}

func validDigits(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' || s[0] == '+' {
		i = 1
		if len(s) == 1 {
			return false
		}
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func validDecimal(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' || s[0] == '+' {
		i = 1
	}
	digits, dot := 0, false
	for ; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			digits++
		case s[i] == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}
