package codegen

import "strings"

// goKeywords guards CamelCase output: a pointer or type named "type"
// must not produce an unusable identifier.
var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true,
	"continue": true, "default": true, "defer": true, "else": true,
	"fallthrough": true, "for": true, "func": true, "go": true,
	"goto": true, "if": true, "import": true, "interface": true,
	"map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true,
	"var": true,
}

// PascalCase converts a snake_case schema name to an exported Go
// identifier: "release_year" becomes "ReleaseYear". Empty segments
// from doubled underscores are dropped, so "__type__" becomes "Type".
func PascalCase(s string) string {
	var b strings.Builder
	for _, part := range strings.Split(s, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// CamelCase converts a schema name to an unexported Go identifier,
// suffixing Go keywords with an underscore: "type" becomes "type_".
func CamelCase(s string) string {
	p := PascalCase(s)
	if p == "" {
		return ""
	}
	c := strings.ToLower(p[:1]) + p[1:]
	if goKeywords[c] {
		return c + "_"
	}
	return c
}
