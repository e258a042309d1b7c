package compile

import (
	"fmt"
	"sort"

	"github.com/gelq/gelq/edgeql"
)

// binding is one generated with-binding, name := expr.
type binding struct {
	name string
	expr edgeql.Expr
	seq  int
}

// groupKey is one by-clause key of a group statement. Keys that are
// plain paths on the group's own scope render directly as grouping
// atoms and carry no name; every other key is declared in the using
// clause under a generated name.
type groupKey struct {
	name string
	key  edgeql.Expr
}

// plan records every hoisting decision for one compilation: which
// nodes become named bindings, what each is called, and where each
// binding is introduced.
type plan struct {
	root   []binding                        // root preamble, dependency order
	clause map[edgeql.Expr][]binding        // clause expression -> bindings wrapped around it
	owner  map[edgeql.Expr]*edgeql.Scope    // clause anchor -> scope its leading dots resolve to
	with   map[*edgeql.WithExpr][]binding   // explicit with positions, in declaration order
	iter   map[*edgeql.Scope]string         // for-iterator names
	using  map[*edgeql.GroupExpr][]groupKey // group by keys
	scopes map[*edgeql.Scope]scopeInfo
}

// forcedRef identifies one occurrence group of a scope-rooted path
// referenced outside its own statement. The binding for the group is
// introduced around anchor, where the path's leading dots are valid.
type forcedRef struct {
	expr   edgeql.Expr
	anchor edgeql.Expr
}

type scopeInfo struct {
	kind    scopeKind
	subject edgeql.Expr // statement subject, nil for iterators and nested shapes
}

type scopeKind int

const (
	scopeStatement scopeKind = iota
	scopeIterator
	scopeNested
)

// chainElem is one enclosing clause expression on the way down to an
// occurrence: the clause itself, the scope its leading dots resolve
// to, and the iterator bindings visible inside it.
type chainElem struct {
	expr  edgeql.Expr
	owner *edgeql.Scope
	iters []*edgeql.Scope
}

// analysis is the working state shared by the counting and placement
// passes.
type analysis struct {
	counts map[edgeql.Expr]int
	seq    map[edgeql.Expr]int
	order  []edgeql.Expr // first-appearance order over the structural walk
	nextSq int

	claimed map[edgeql.Expr]*edgeql.WithExpr
	aliases []*edgeql.AliasExpr
	scopes  map[*edgeql.Scope]scopeInfo

	chains map[edgeql.Expr][][]chainElem

	// forceSubject marks statement subjects that need a name of their
	// own because the statement's scope is referenced bare and the
	// subject is not a schema set.
	forceSubject map[edgeql.Expr]bool

	forcedSeen  map[forcedRef]int
	forcedOwner map[forcedRef]*edgeql.Scope
	forcedOrder []forcedRef

	err error
}

// buildPlan runs both analysis passes over root and assembles the
// hoisting plan.
func buildPlan(root edgeql.Expr) (*plan, error) {
	a := &analysis{
		counts:       map[edgeql.Expr]int{root: 1},
		seq:          map[edgeql.Expr]int{},
		claimed:      map[edgeql.Expr]*edgeql.WithExpr{},
		scopes:       map[*edgeql.Scope]scopeInfo{},
		chains:       map[edgeql.Expr][][]chainElem{},
		forceSubject: map[edgeql.Expr]bool{},
		forcedSeen:   map[forcedRef]int{},
		forcedOwner:  map[forcedRef]*edgeql.Scope{},
	}
	a.countFrom(root, map[edgeql.Expr]bool{})
	a.structural(root, nil, nil, nil)
	if a.err != nil {
		return nil, a.err
	}
	return a.assemble()
}

// countFrom counts parent edges per node. A node referenced from two
// places counts 2 even when those places are themselves shared, since
// hoisting renders every shared parent once.
func (a *analysis) countFrom(e edgeql.Expr, seen map[edgeql.Expr]bool) {
	if seen[e] {
		return
	}
	seen[e] = true
	switch n := e.(type) {
	case *edgeql.AliasExpr:
		a.aliases = append(a.aliases, n)
	case *edgeql.SelectExpr:
		a.noteScope(n.Scope(), n.Subject())
	case *edgeql.UpdateExpr:
		a.noteScope(n.Scope(), n.Subject())
	case *edgeql.DeleteExpr:
		a.noteScope(n.Scope(), n.Subject())
	case *edgeql.GroupExpr:
		a.noteScope(n.Scope(), n.Subject())
	case *edgeql.ForExpr:
		a.scopes[n.Scope()] = scopeInfo{kind: scopeIterator}
	case *edgeql.WithExpr:
		for _, b := range n.Bindings() {
			a.claimed[b] = n
		}
	}
	a.noteNestedScopes(e)
	for _, c := range edgeql.Children(e) {
		a.counts[c]++
		a.countFrom(c, seen)
	}
}

func (a *analysis) noteScope(s *edgeql.Scope, subject edgeql.Expr) {
	if s == nil {
		return
	}
	a.scopes[s] = scopeInfo{kind: scopeStatement, subject: subject}
}

func (a *analysis) noteNestedScopes(e edgeql.Expr) {
	sh := shapeOf(e)
	if sh == nil {
		return
	}
	var walk func(sh *edgeql.Shape)
	walk = func(sh *edgeql.Shape) {
		for _, f := range sh.FieldList() {
			if f.Kind() == edgeql.FieldNested {
				a.scopes[f.Scope()] = scopeInfo{kind: scopeNested}
				walk(f.Shape())
			}
		}
	}
	walk(sh)
}

func shapeOf(e edgeql.Expr) *edgeql.Shape {
	switch n := e.(type) {
	case *edgeql.SelectExpr:
		return n.Shape()
	case *edgeql.InsertExpr:
		return n.Shape()
	case *edgeql.UpdateExpr:
		return n.Shape()
	case *edgeql.DeleteExpr:
		return n.Shape()
	case *edgeql.GroupExpr:
		return n.Shape()
	}
	return nil
}

// note records one occurrence of e: its first-appearance sequence and
// the clause chain above it.
func (a *analysis) note(e edgeql.Expr, chain []chainElem) {
	if _, ok := a.seq[e]; !ok {
		a.seq[e] = a.nextSq
		a.nextSq++
		a.order = append(a.order, e)
	}
	a.chains[e] = append(a.chains[e], append([]chainElem(nil), chain...))
}

// structural mirrors the renderer's traversal. It records occurrence
// chains, detects scope references that cannot render as leading dots
// where they occur, and assigns the first-appearance sequence used for
// naming.
func (a *analysis) structural(e edgeql.Expr, chain []chainElem, dot *edgeql.Scope, iters []*edgeql.Scope) {
	if e == nil || a.err != nil {
		return
	}
	a.note(e, chain)

	switch n := e.(type) {
	case *edgeql.Scope:
		a.checkBareScope(n, dot)
		return
	case *edgeql.PathExpr, *edgeql.BacklinkExpr, *edgeql.TypeIntersection:
		a.pathOccurrence(e, chain, dot, iters)
		return
	case *edgeql.WithExpr:
		for _, b := range n.Bindings() {
			a.structural(b, chain, dot, iters)
		}
		a.structural(n.Body(), chain, dot, iters)
		return
	case *edgeql.ParamsExpr:
		a.structural(n.Body(), chain, dot, iters)
		return
	case *edgeql.ForExpr:
		a.clauseInto(n.Set(), chain, dot, iters)
		a.clauseInto(n.Body(), chain, nil, append(append([]*edgeql.Scope(nil), iters...), n.Scope()))
		return
	case *edgeql.SelectExpr:
		a.structural(n.Subject(), chain, dot, iters)
		a.statementShape(n.Shape(), n.Scope(), chain, iters)
		return
	case *edgeql.UpdateExpr:
		a.structural(n.Subject(), chain, dot, iters)
		a.statementShape(n.Shape(), n.Scope(), chain, iters)
		return
	case *edgeql.DeleteExpr:
		a.structural(n.Subject(), chain, dot, iters)
		a.statementShape(n.Shape(), n.Scope(), chain, iters)
		return
	case *edgeql.GroupExpr:
		a.structural(n.Subject(), chain, dot, iters)
		a.statementShape(n.Shape(), n.Scope(), chain, iters)
		return
	case *edgeql.InsertExpr:
		if n.Shape() != nil {
			for _, f := range n.Shape().SetList() {
				a.clauseInto(f.Expr(), chain, nil, iters)
			}
		}
		if n.ConflictElse() != nil {
			a.clauseInto(n.ConflictElse(), chain, nil, iters)
		}
		return
	}
	for _, c := range edgeql.Children(e) {
		a.structural(c, chain, dot, iters)
	}
}

// clauseInto pushes expr as a clause root owned by owner and descends.
func (a *analysis) clauseInto(expr edgeql.Expr, chain []chainElem, owner *edgeql.Scope, iters []*edgeql.Scope) {
	if expr == nil {
		return
	}
	elem := chainElem{expr: expr, owner: owner, iters: iters}
	inner := append(append([]chainElem(nil), chain...), elem)
	a.structural(expr, inner, owner, iters)
}

func (a *analysis) statementShape(sh *edgeql.Shape, scope *edgeql.Scope, chain []chainElem, iters []*edgeql.Scope) {
	if sh == nil {
		return
	}
	a.shapeFields(sh, scope, chain, iters)
	for _, c := range clauseExprs(sh) {
		a.clauseInto(c, chain, scope, iters)
	}
	for _, v := range sh.SetList() {
		a.clauseInto(v.Expr(), chain, scope, iters)
	}
	for _, k := range sh.ByList() {
		if byAtom(k, scope) {
			a.structural(k, chain, scope, iters)
		} else {
			a.clauseInto(k, chain, scope, iters)
		}
	}
}

func (a *analysis) shapeFields(sh *edgeql.Shape, scope *edgeql.Scope, chain []chainElem, iters []*edgeql.Scope) {
	for _, f := range sh.FieldList() {
		switch f.Kind() {
		case edgeql.FieldComputed:
			a.clauseInto(f.Expr(), chain, scope, iters)
		case edgeql.FieldNested:
			a.shapeFields(f.Shape(), f.Scope(), chain, iters)
			for _, c := range clauseExprs(f.Shape()) {
				a.clauseInto(c, chain, f.Scope(), iters)
			}
		}
	}
}

// clauseExprs lists a shape's trailing clause expressions in rendering
// order. Set entries and by keys are listed separately because their
// rendering differs.
func clauseExprs(sh *edgeql.Shape) []edgeql.Expr {
	var out []edgeql.Expr
	if sh.FilterExpr() != nil {
		out = append(out, sh.FilterExpr())
	}
	if sh.FilterSingleExpr() != nil {
		out = append(out, sh.FilterSingleExpr())
	}
	for _, o := range sh.OrderList() {
		out = append(out, o.Key())
	}
	if sh.OffsetExpr() != nil {
		out = append(out, sh.OffsetExpr())
	}
	if sh.LimitExpr() != nil {
		out = append(out, sh.LimitExpr())
	}
	return out
}

// pathOccurrence handles a path node: scope-rooted paths are checked
// for dot validity at this site, full-set paths have their prefix
// segments recorded so shared prefixes can still hoist.
func (a *analysis) pathOccurrence(e edgeql.Expr, chain []chainElem, dot *edgeql.Scope, iters []*edgeql.Scope) {
	if root := pathRoot(e); root != nil {
		a.checkPathRoot(e, root, chain, dot)
		return
	}
	cur := e
	for {
		src := pathSrc(cur)
		if src == nil {
			a.structural(cur, chain, dot, iters)
			return
		}
		if pathSrc(src) != nil {
			a.note(src, chain)
		}
		cur = src
	}
}

// pathSrc returns the source of a path segment, or nil when cur is not
// a path segment.
func pathSrc(cur edgeql.Expr) edgeql.Expr {
	switch n := cur.(type) {
	case *edgeql.PathExpr:
		return n.Src()
	case *edgeql.BacklinkExpr:
		return n.Src()
	case *edgeql.TypeIntersection:
		return n.Src()
	}
	return nil
}

// checkBareScope classifies a direct reference to a scope binding.
// Iterator scopes render as their generated name anywhere. A statement
// scope referenced inside its own clauses renders as the subject's
// schema name, or as a hoisted subject binding when the subject is not
// a schema set. Anything else has no EdgeQL spelling.
func (a *analysis) checkBareScope(s *edgeql.Scope, dot *edgeql.Scope) {
	info := a.scopes[s]
	switch info.kind {
	case scopeIterator:
		return
	case scopeNested:
		a.err = fmt.Errorf("compile: a nested shape element cannot be referenced as a value; compute the link with an explicit subquery instead")
		return
	}
	if dot != s {
		a.err = fmt.Errorf("compile: the subject of a statement over %s is referenced inside another statement; bind it with For to name it", typeName(s))
		return
	}
	if _, ok := info.subject.(*edgeql.TypeSet); !ok && info.subject != nil {
		a.forceSubject[info.subject] = true
	}
}

// checkPathRoot hoists a scope-rooted path that is referenced where
// its leading dots would resolve against a different subject. The
// binding is anchored at the innermost enclosing clause of the path's
// own statement.
func (a *analysis) checkPathRoot(p edgeql.Expr, root *edgeql.Scope, chain []chainElem, dot *edgeql.Scope) {
	if a.scopes[root].kind == scopeIterator || dot == root {
		return
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].owner == root {
			ref := forcedRef{expr: p, anchor: chain[i].expr}
			if _, ok := a.forcedSeen[ref]; !ok {
				a.forcedSeen[ref] = a.nextSq
				a.nextSq++
				a.forcedOrder = append(a.forcedOrder, ref)
				a.forcedOwner[ref] = chain[i].owner
			}
			return
		}
	}
	a.err = fmt.Errorf("compile: a path on %s is referenced where its subject is out of reach; compute the link with an explicit subquery instead", typeName(root))
}

// pathRoot follows a path's source chain and reports the scope it is
// rooted at, or nil for paths rooted at full sets.
func pathRoot(e edgeql.Expr) *edgeql.Scope {
	for {
		src := pathSrc(e)
		if src == nil {
			if s, ok := e.(*edgeql.Scope); ok {
				return s
			}
			return nil
		}
		e = src
	}
}

func typeName(e edgeql.Expr) string { return e.Type().Name() }

// hoistExempt reports node kinds that repeat freely in rendered
// EdgeQL: schema set references, scope bindings, parameters, and paths
// rooted at a scope. Literals are not exempt.
func hoistExempt(e edgeql.Expr) bool {
	switch e.(type) {
	case *edgeql.TypeSet, *edgeql.Scope, *edgeql.ParamExpr:
		return true
	case *edgeql.PathExpr, *edgeql.BacklinkExpr, *edgeql.TypeIntersection:
		return pathRoot(e) != nil
	}
	return false
}

// placement is one hoisted node's resolved position.
type placement struct {
	expr   edgeql.Expr
	anchor edgeql.Expr // nil means the root preamble
	owner  *edgeql.Scope
	seq    int
}

// assemble turns the analysis into a plan: select the hoist set, place
// every binding, assign names in first-appearance order, and order
// each binding list by dependency.
func (a *analysis) assemble() (*plan, error) {
	p := &plan{
		clause: map[edgeql.Expr][]binding{},
		owner:  map[edgeql.Expr]*edgeql.Scope{},
		with:   map[*edgeql.WithExpr][]binding{},
		iter:   map[*edgeql.Scope]string{},
		using:  map[*edgeql.GroupExpr][]groupKey{},
		scopes: a.scopes,
	}

	// The hoist set: shared non-exempt nodes, alias bases, the aliases
	// themselves, and force-named statement subjects. Claimed nodes are
	// rendered at their With and need no placement.
	picked := map[edgeql.Expr]bool{}
	var forced []edgeql.Expr
	pick := func(e edgeql.Expr, must bool) {
		if picked[e] {
			return
		}
		if _, ok := a.claimed[e]; ok {
			return
		}
		picked[e] = true
		if must {
			forced = append(forced, e)
		}
	}
	for _, e := range a.order {
		if a.counts[e] > 1 && !hoistExempt(e) {
			pick(e, false)
		}
	}
	for _, al := range a.aliases {
		if !hoistExempt(al.Base()) {
			pick(al.Base(), true)
		}
		pick(al, true)
	}
	for _, e := range a.order {
		if a.forceSubject[e] {
			pick(e, true)
		}
	}
	mustBind := map[edgeql.Expr]bool{}
	for _, e := range forced {
		mustBind[e] = true
	}

	// Place every picked node, dropping droppable candidates whose
	// occurrences admit no single binding position.
	var placed []placement
	for _, e := range a.order {
		if !picked[e] {
			continue
		}
		pl, ok, err := a.place(e, mustBind[e])
		if err != nil {
			return nil, err
		}
		if ok {
			placed = append(placed, pl)
		}
	}

	// Name everything in first-appearance order: placed bindings,
	// claimed bindings, forced path groups, iterator variables, and
	// group keys share one counter.
	type event struct {
		seq  int
		name func(string)
	}
	var events []event
	names := map[edgeql.Expr]string{}
	for i := range placed {
		pl := &placed[i]
		events = append(events, event{pl.seq, func(n string) { names[pl.expr] = n }})
	}
	for _, e := range a.order {
		if _, ok := a.claimed[e]; ok {
			e := e
			events = append(events, event{a.seq[e], func(n string) { names[e] = n }})
		}
	}
	forcedNames := map[forcedRef]string{}
	for _, ref := range a.forcedOrder {
		ref := ref
		events = append(events, event{a.forcedSeen[ref], func(n string) { forcedNames[ref] = n }})
	}
	for _, e := range a.order {
		switch n := e.(type) {
		case *edgeql.ForExpr:
			sc := n.Scope()
			events = append(events, event{a.seq[e], func(nm string) { p.iter[sc] = nm }})
		case *edgeql.GroupExpr:
			g := n
			keys := g.Shape().ByList()
			lst := make([]groupKey, len(keys))
			for i, k := range keys {
				lst[i] = groupKey{key: k}
			}
			p.using[g] = lst
			for i, k := range keys {
				if byAtom(k, g.Scope()) {
					continue
				}
				i := i
				events = append(events, event{a.seq[e], func(nm string) { lst[i].name = nm }})
			}
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].seq < events[j].seq })
	for i, ev := range events {
		ev.name(fmt.Sprintf("__v%d", i))
	}

	// Fill the plan positions.
	for _, pl := range placed {
		b := binding{name: names[pl.expr], expr: pl.expr, seq: pl.seq}
		if pl.anchor == nil {
			p.root = append(p.root, b)
			continue
		}
		if prev, ok := p.owner[pl.anchor]; ok && prev != pl.owner {
			return nil, fmt.Errorf("compile: conflicting binding positions for a shared clause expression")
		}
		p.owner[pl.anchor] = pl.owner
		p.clause[pl.anchor] = append(p.clause[pl.anchor], b)
	}
	for _, ref := range a.forcedOrder {
		if prev, ok := p.owner[ref.anchor]; ok && prev != a.forcedOwner[ref] {
			return nil, fmt.Errorf("compile: conflicting binding positions for a shared clause expression")
		}
		p.owner[ref.anchor] = a.forcedOwner[ref]
		p.clause[ref.anchor] = append(p.clause[ref.anchor], binding{
			name: forcedNames[ref], expr: ref.expr, seq: a.forcedSeen[ref],
		})
	}
	for _, e := range a.order {
		if w, ok := e.(*edgeql.WithExpr); ok {
			for _, b := range w.Bindings() {
				p.with[w] = append(p.with[w], binding{name: names[b], expr: b, seq: a.seq[b]})
			}
		}
	}

	p.root = topoBindings(p.root)
	for anchor, list := range p.clause {
		p.clause[anchor] = topoBindings(list)
	}
	return p, nil
}

// place decides where one hoisted node's binding goes. Nodes without
// free scope bindings go to the root preamble. Correlated nodes bind
// at the deepest clause expression common to all occurrences where
// their leading dots and iterator names remain valid; when no such
// position exists the node renders inline at each site, unless the
// binding is mandatory.
func (a *analysis) place(e edgeql.Expr, must bool) (placement, bool, error) {
	fs := edgeql.FreeScopes(e)
	if len(fs) == 0 {
		return placement{expr: e, seq: a.seq[e]}, true, nil
	}
	var stmtFS, iterFS []*edgeql.Scope
	for _, s := range fs {
		if a.scopes[s].kind == scopeIterator {
			iterFS = append(iterFS, s)
		} else {
			stmtFS = append(stmtFS, s)
		}
	}
	chains := a.chains[e]
	if len(stmtFS) <= 1 && len(chains) > 0 {
		prefix := commonPrefix(chains)
		for i := len(prefix) - 1; i >= 0; i-- {
			el := prefix[i]
			if len(stmtFS) == 1 && el.owner != stmtFS[0] {
				continue
			}
			if !containsAll(el.iters, iterFS) {
				continue
			}
			return placement{expr: e, anchor: el.expr, owner: el.owner, seq: a.seq[e]}, true, nil
		}
	}
	if must {
		return placement{}, false, fmt.Errorf("compile: no position can bind %s; it mixes elements of sibling statements", typeName(e))
	}
	return placement{}, false, nil
}

func commonPrefix(chains [][]chainElem) []chainElem {
	prefix := chains[0]
	for _, c := range chains[1:] {
		n := len(prefix)
		if len(c) < n {
			n = len(c)
		}
		i := 0
		for i < n && c[i].expr == prefix[i].expr && c[i].owner == prefix[i].owner {
			i++
		}
		prefix = prefix[:i]
	}
	return prefix
}

func containsAll(have, want []*edgeql.Scope) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// byAtom reports whether a group key can render directly as a grouping
// atom: a dotted path on the group's own scope.
func byAtom(k edgeql.Expr, scope *edgeql.Scope) bool {
	for {
		p, ok := k.(*edgeql.PathExpr)
		if !ok {
			return k == edgeql.Expr(scope)
		}
		if p.IsLinkProperty() {
			return false
		}
		k = p.Src()
	}
}

// topoBindings orders bindings so every binding precedes the ones
// whose expressions contain it, keeping first-appearance order among
// independent bindings.
func topoBindings(list []binding) []binding {
	sort.SliceStable(list, func(i, j int) bool { return list[i].seq < list[j].seq })
	reach := make([]map[edgeql.Expr]bool, len(list))
	for i, b := range list {
		set := map[edgeql.Expr]bool{}
		edgeql.Walk(b.expr, func(n edgeql.Expr) { set[n] = true })
		reach[i] = set
	}
	out := make([]binding, 0, len(list))
	emitted := make([]bool, len(list))
	for len(out) < len(list) {
		progress := false
		for i := range list {
			if emitted[i] {
				continue
			}
			ready := true
			for j := range list {
				if i == j || emitted[j] {
					continue
				}
				if reach[i][list[j].expr] {
					ready = false
					break
				}
			}
			if ready {
				emitted[i] = true
				out = append(out, list[i])
				progress = true
			}
		}
		if !progress {
			for i := range list {
				if !emitted[i] {
					emitted[i] = true
					out = append(out, list[i])
				}
			}
		}
	}
	return out
}
