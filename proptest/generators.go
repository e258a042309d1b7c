package proptest

import "math"

// Charsets for string generation
const (
	CharsetAlpha      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	CharsetAlphaLower = "abcdefghijklmnopqrstuvwxyz"
	CharsetDigits     = "0123456789"
	CharsetAlphaNum   = CharsetAlpha + CharsetDigits
	CharsetPrintable  = CharsetAlphaNum + " !\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
	CharsetIdentStart = CharsetAlpha + "_"
	CharsetIdentBody  = CharsetAlphaNum + "_"
)

// =============================================================================
// Integer Generators
// =============================================================================

// IntRange returns a random int in [min, max].
// Panics if min > max.
func (g *Generator) IntRange(min, max int) int {
	if min > max {
		panic("proptest: IntRange min > max")
	}
	if min == max {
		return min
	}
	return min + g.rng.Intn(max-min+1)
}

// Int64 returns a random int64 (can be negative).
func (g *Generator) Int64() int64 {
	n := g.rng.Int63()
	if g.Bool() {
		n = -n
	}
	return n
}

// Int64Range returns a random int64 in [min, max].
// Panics if min > max.
func (g *Generator) Int64Range(min, max int64) int64 {
	if min > max {
		panic("proptest: Int64Range min > max")
	}
	if min == max {
		return min
	}
	return min + g.rng.Int63n(max-min+1)
}

// =============================================================================
// Float Generators
// =============================================================================

// Float64Range returns a random float64 in [min, max).
func (g *Generator) Float64Range(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}

// =============================================================================
// String Generators
// =============================================================================

// String returns a random printable ASCII string of length [0, maxLen].
func (g *Generator) String(maxLen int) string {
	return g.StringFrom(CharsetPrintable, maxLen)
}

// StringAlpha returns a random alphabetic string (a-zA-Z) of length [0, maxLen].
func (g *Generator) StringAlpha(maxLen int) string {
	return g.StringFrom(CharsetAlpha, maxLen)
}

// StringAlphaLower returns a random lowercase alphabetic string of length [0, maxLen].
func (g *Generator) StringAlphaLower(maxLen int) string {
	return g.StringFrom(CharsetAlphaLower, maxLen)
}

// StringAlphaNum returns a random alphanumeric string of length [0, maxLen].
func (g *Generator) StringAlphaNum(maxLen int) string {
	return g.StringFrom(CharsetAlphaNum, maxLen)
}

// StringFrom returns a random string using characters from the given charset,
// with length [0, maxLen].
func (g *Generator) StringFrom(charset string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	return g.stringOfLen(charset, g.Intn(maxLen+1))
}

// stringOfLen returns a string of exactly the given length from charset.
func (g *Generator) stringOfLen(charset string, length int) string {
	if length == 0 {
		return ""
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[g.Intn(len(charset))]
	}
	return string(b)
}

// Identifier returns a valid identifier (starts with letter or underscore,
// followed by alphanumeric or underscore) of length [1, maxLen].
func (g *Generator) Identifier(maxLen int) string {
	if maxLen <= 0 {
		maxLen = 1
	}
	length := g.IntRange(1, maxLen)
	b := make([]byte, length)
	b[0] = CharsetIdentStart[g.Intn(len(CharsetIdentStart))]
	for i := 1; i < length; i++ {
		b[i] = CharsetIdentBody[g.Intn(len(CharsetIdentBody))]
	}
	return string(b)
}

// IdentifierLower returns a valid lowercase identifier of length [1, maxLen].
func (g *Generator) IdentifierLower(maxLen int) string {
	if maxLen <= 0 {
		maxLen = 1
	}
	length := g.IntRange(1, maxLen)

	const startChars = CharsetAlphaLower + "_"
	const bodyChars = CharsetAlphaLower + CharsetDigits + "_"

	b := make([]byte, length)
	b[0] = startChars[g.Intn(len(startChars))]
	for i := 1; i < length; i++ {
		b[i] = bodyChars[g.Intn(len(bodyChars))]
	}
	return string(b)
}

// =============================================================================
// Byte Generators
// =============================================================================

// Bytes returns a random byte slice of length [0, maxLen].
func (g *Generator) Bytes(maxLen int) []byte {
	if maxLen <= 0 {
		return nil
	}
	length := g.Intn(maxLen + 1)
	b := make([]byte, length)
	for i := range b {
		b[i] = byte(g.Intn(256))
	}
	return b
}

// =============================================================================
// Edge Case Generators (for fuzzing)
// =============================================================================

// EdgeCaseInt returns an int that's likely to trigger edge cases.
func (g *Generator) EdgeCaseInt() int {
	edgeCases := []int{
		0,
		1,
		-1,
		math.MaxInt32,
		math.MinInt32,
		math.MaxInt,
		math.MinInt,
		127,
		-128,
		255,
		256,
		65535,
		65536,
	}
	// 50% chance of edge case, 50% chance of random
	if g.Bool() {
		return edgeCases[g.Intn(len(edgeCases))]
	}
	return g.IntRange(math.MinInt32, math.MaxInt32)
}

// EdgeCaseString returns a string that's likely to trigger quoting and
// escaping edge cases.
func (g *Generator) EdgeCaseString() string {
	edgeCases := []string{
		"",             // empty
		" ",            // single space
		"\t",           // tab
		"\n",           // newline
		"\r\n",         // CRLF
		"'",            // single quote
		"''",           // doubled single quote
		`"`,            // double quote
		`\`,            // backslash
		`\\`,           // escaped backslash
		"it's",         // apostrophe
		"line1\nline2", // multiline
		"col1\tcol2",   // tabs
		"\x00",         // NUL
		"\x1b[0m",      // ANSI escape
		"0",            // numeric string
		"-1",           // negative numeric
		"123.456",      // decimal string
		"日本語",          // Japanese
		"🎉",            // emoji
		"hello🎉world",  // mixed with emoji
		"select",       // keyword
		"filter",       // keyword
		"__type__",     // reserved dunder
	}
	// 70% chance of edge case, 30% chance of random
	if g.Float64() < 0.7 {
		return edgeCases[g.Intn(len(edgeCases))]
	}
	return g.String(50)
}
