package compile

import "strings"

// Layout controls the whitespace shape of rendered EdgeQL. The emitted
// tokens are identical across layouts; only line breaks and indentation
// differ, so both layouts parse to the same query.
type Layout interface {
	// Name returns the layout name for debugging/logging.
	Name() string

	// Break writes a clause separator at the given depth: a newline
	// plus indentation for Pretty, a single space for Compact.
	Break(b *strings.Builder, depth int)

	// Open writes the separator that follows an opening brace, and
	// Close the one that precedes the closing brace.
	Open(b *strings.Builder, depth int)
	Close(b *strings.Builder, depth int)
}

// PrettyLayout renders multi-line EdgeQL indented with two spaces,
// matching the shape the server reports queries in.
type PrettyLayout struct{}

func (PrettyLayout) Name() string { return "pretty" }

func (PrettyLayout) Break(b *strings.Builder, depth int) {
	b.WriteByte('\n')
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

func (l PrettyLayout) Open(b *strings.Builder, depth int)  { l.Break(b, depth+1) }
func (l PrettyLayout) Close(b *strings.Builder, depth int) { l.Break(b, depth) }

// CompactLayout renders the whole query on a single line.
type CompactLayout struct{}

func (CompactLayout) Name() string { return "compact" }

func (CompactLayout) Break(b *strings.Builder, depth int) { b.WriteByte(' ') }
func (CompactLayout) Open(b *strings.Builder, depth int)  { b.WriteByte(' ') }
func (CompactLayout) Close(b *strings.Builder, depth int) { b.WriteByte(' ') }

var (
	// Pretty is the singleton multi-line layout, the default.
	Pretty Layout = PrettyLayout{}

	// Compact is the singleton single-line layout.
	Compact Layout = CompactLayout{}
)
