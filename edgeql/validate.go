package edgeql

import (
	"regexp"
	"strings"
)

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validIdent reports whether name is usable as a bare EdgeQL
// identifier. Names with both leading and trailing double underscores
// are reserved by the language.
func validIdent(name string) bool {
	if !identRe.MatchString(name) {
		return false
	}
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return false
	}
	return true
}
