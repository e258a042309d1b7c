package edgeql

import (
	"fmt"
	"sort"
	"sync"
)

// queries holds expressions registered under a name, for tooling that
// wants to enumerate an application's queries (codegen, describe).
var queries sync.Map

// Define registers an expression under a name. Names are global to
// the process; defining an empty or duplicate name panics, since that
// is a wiring mistake rather than a runtime condition.
func Define(name string, e Expr) {
	if name == "" {
		panic("edgeql: Define with empty name")
	}
	if e == nil {
		panic(fmt.Sprintf("edgeql: Define %q with nil expression", name))
	}
	if _, loaded := queries.LoadOrStore(name, e); loaded {
		panic(fmt.Sprintf("edgeql: query %q defined twice", name))
	}
}

// Defined reports whether a name is registered.
func Defined(name string) bool {
	_, ok := queries.Load(name)
	return ok
}

// Lookup returns the expression registered under name.
func Lookup(name string) (Expr, bool) {
	v, ok := queries.Load(name)
	if !ok {
		return nil, false
	}
	return v.(Expr), true
}

// Registered returns the sorted names of all registered queries.
func Registered() []string {
	var names []string
	queries.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	return names
}
