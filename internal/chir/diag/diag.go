// Package diag is the checker and analyses' diagnostic sink (§6
// "Diagnostics", §7 "Error handling design"), generalizing
// internal/errors/errors.go's caret-formatted CompilerError from one
// front-end position type to the CHIR graph's (file_id, line, col)
// locations.
package diag

import (
	"fmt"
	"strings"
	"sync"

	"github.com/chir-lang/chir/internal/chir/ir"
)

// Severity orders diagnostics the way internal/errors' color/plain
// Format split does, but as a level rather than a formatting toggle.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Kind enumerates §7's error kinds. Only IRInvariant aborts the
// pipeline by itself; the rest are reported and compilation continues
// with a failure flag raised upstream (see Sink.Failed).
type Kind string

const (
	KindIRInvariant              Kind = "IRInvariant"
	KindUseBeforeInit             Kind = "UseBeforeInit"
	KindIllegalReassignToLet      Kind = "IllegalReassignToLet"
	KindIllegalMemberFunCallInCtor Kind = "IllegalMemberFunCallInCtor"
	KindAnalysisAborted           Kind = "AnalysisAborted"
)

// Fatal reports whether a diagnostic of this kind aborts the pipeline
// outright per §7 ("Always surfaced; aborts the pipeline").
func (k Kind) Fatal() bool {
	return k == KindIRInvariant
}

// Location is §6's (file_id, begin_line, begin_col) triple. FileID is
// opaque to this package — it's whatever index the surrounding
// compiler's source-file table assigns.
type Location struct {
	FileID int
	Pos    ir.Pos
}

func (l Location) String() string {
	if l.Pos.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("file#%d:%s", l.FileID, l.Pos)
}

// Diagnostic is one (location, severity, message) tuple plus the §7
// Kind driving abort/continue policy.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Location Location
	Message  string
}

// Format renders d the way internal/errors.CompilerError.Format does:
// a one-line header, no source-line/caret rendering since diag has no
// access to the original source text (the CHIR graph only carries
// positions, not source buffers).
func (d Diagnostic) Format() string {
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Severity, d.Message)
}

// Sink collects diagnostics emitted by the checker (§4.9) and the
// var-init checker (§4.7), safe for concurrent use by the parallel
// per-definition checker workers (§5).
type Sink struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
	failed      bool
}

// NewSink returns an empty, ready-to-use Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Report appends d and raises the sink's Failed flag for anything that
// isn't a pure Note.
func (s *Sink) Report(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagnostics = append(s.diagnostics, d)
	if d.Severity != SeverityNote {
		s.failed = true
	}
}

// Errorf is a convenience wrapper building a Diagnostic from a
// printf-style message.
func (s *Sink) Errorf(kind Kind, loc Location, format string, args ...any) {
	s.Report(Diagnostic{Kind: kind, Severity: SeverityError, Location: loc, Message: fmt.Sprintf(format, args...)})
}

// Diagnostics returns a snapshot of everything reported so far.
func (s *Sink) Diagnostics() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.diagnostics))
	copy(out, s.diagnostics)
	return out
}

// Failed reports whether any diagnostic above SeverityNote was
// reported — §7's "failure flag is raised upstream" for non-aborting
// kinds, and the checker's own false-return trigger for IRInvariant.
func (s *Sink) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// HasFatal reports whether any reported diagnostic's Kind aborts the
// pipeline outright (currently only IRInvariant).
func (s *Sink) HasFatal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.diagnostics {
		if d.Kind.Fatal() {
			return true
		}
	}
	return false
}

// Format renders every collected diagnostic, one per line, the way
// internal/errors.FormatErrors renders multiple CompilerErrors.
func (s *Sink) Format() string {
	diags := s.Diagnostics()
	if len(diags) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, d := range diags {
		sb.WriteString(d.Format())
		if i < len(diags)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
