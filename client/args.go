package client

import (
	"sort"
	"time"

	"github.com/gelq/gelq/edgeql/compile"
	"github.com/google/uuid"
)

// validateArgs checks the given arguments against the compiled
// parameter list: every required parameter present, no undeclared
// extras, and Go values that can stand in for the declared EdgeQL type.
// The render layer never validates; this is the only gate before the
// wire.
func validateArgs(params []compile.ParamDesc, args map[string]any) error {
	declared := make(map[string]compile.ParamDesc, len(params))
	for _, p := range params {
		declared[p.Name] = p
		v, ok := args[p.Name]
		if !ok {
			if p.Optional {
				continue
			}
			return InvalidArgumentf("missing required argument $%s (%s)", p.Name, p.Type)
		}
		if err := checkArgType(p, v); err != nil {
			return err
		}
	}

	extras := make([]string, 0, len(args))
	for name := range args {
		if _, ok := declared[name]; !ok {
			extras = append(extras, name)
		}
	}
	if len(extras) > 0 {
		sort.Strings(extras)
		return InvalidArgumentf("undeclared argument $%s", extras[0])
	}
	return nil
}

// checkArgType accepts the Go values whose JSON encoding the server can
// coerce into the declared type. Collection and custom scalar types are
// passed through unchecked.
func checkArgType(p compile.ParamDesc, v any) error {
	if v == nil {
		if p.Optional {
			return nil
		}
		return InvalidArgumentf("argument $%s (%s) must not be nil", p.Name, p.Type)
	}

	ok := true
	switch p.Type {
	case "std::int16", "std::int32", "std::int64":
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		default:
			ok = false
		}
	case "std::float32", "std::float64":
		switch v.(type) {
		case float32, float64, int, int32, int64:
		default:
			ok = false
		}
	case "std::bigint", "std::decimal":
		switch v.(type) {
		case int, int32, int64, uint, uint32, uint64, string:
		default:
			ok = false
		}
	case "std::str":
		_, ok = v.(string)
	case "std::bool":
		_, ok = v.(bool)
	case "std::uuid":
		switch v.(type) {
		case string, uuid.UUID:
		default:
			ok = false
		}
	case "std::datetime":
		switch v.(type) {
		case string, time.Time:
		default:
			ok = false
		}
	case "std::duration":
		// Durations travel as ISO 8601 strings; time.Duration would
		// encode as a bare nanosecond count.
		_, ok = v.(string)
	case "std::json":
		// Anything JSON-encodable goes.
	}
	if !ok {
		return InvalidArgumentf("argument $%s: expected %s, got %T", p.Name, p.Type, v)
	}
	return nil
}
