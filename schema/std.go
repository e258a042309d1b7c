package schema

import "strings"

// stdScalars lists the std and cal scalar types the builder accepts as
// property targets.
var stdScalars = make(map[string]bool)

func init() {
	for _, name := range []string{
		"std::str",
		"std::bool",
		"std::int16",
		"std::int32",
		"std::int64",
		"std::float32",
		"std::float64",
		"std::bigint",
		"std::decimal",
		"std::uuid",
		"std::json",
		"std::bytes",
		"std::datetime",
		"std::duration",
		"cal::local_date",
		"cal::local_time",
		"cal::local_datetime",
		"cal::relative_duration",
	} {
		stdScalars[name] = true
	}
}

// IsStdScalar reports whether name denotes a built-in scalar type.
// Unqualified names are checked against the std module.
func IsStdScalar(name string) bool {
	if stdScalars[name] {
		return true
	}
	if !strings.Contains(name, "::") {
		return stdScalars["std::"+name]
	}
	return false
}
