package checker

import (
	"sync"

	"github.com/chir-lang/chir/internal/chir/diag"
	"github.com/chir-lang/chir/internal/chir/ir"
)

// identSet is the checker's mutex-guarded identifier-uniqueness set,
// per §5 ("the identifier-uniqueness set inside the checker is
// protected by a mutex (insertion is the only operation)") and §3.3's
// "every function identifier is globally unique within a package".
type identSet struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newIdentSet() *identSet {
	return &identSet{seen: make(map[string]bool)}
}

// insert reports whether ident was already present (i.e. a collision).
func (s *identSet) insert(ident string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[ident] {
		return true
	}
	s.seen[ident] = true
	return false
}

// checkIdentUnique enforces identifier uniqueness for a function's own
// mangled identifier across every global value and custom-def
// identifier in the package (§4.9 first bullet).
func checkIdentUnique(fn *ir.Func, ids *identSet, sink *diag.Sink) {
	ident := fn.MangledName
	if ident == "" {
		ident = fn.Ident()
	}
	if ident == "" {
		return
	}
	if ids.insert(ident) {
		sink.Errorf(diag.KindIRInvariant, diag.Location{}, "duplicate identifier %q (function %s)", ident, dump(fn))
	}
}

// checkDefIdentUnique does the same for a custom def's mangled name.
func checkDefIdentUnique(def *ir.CustomDef, ids *identSet, sink *diag.Sink) {
	ident := def.MangledName
	if ident == "" {
		ident = def.Name
	}
	if ident == "" {
		return
	}
	if ids.insert(ident) {
		sink.Errorf(diag.KindIRInvariant, diag.Location{}, "duplicate identifier %q (%s %s)", ident, def.Kind, def.Name)
	}
}
