package diag_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/chir-lang/chir/internal/chir/diag"
	"github.com/chir-lang/chir/internal/chir/ir"
)

func TestIRInvariantIsFatalOthersAreNot(t *testing.T) {
	if !diag.KindIRInvariant.Fatal() {
		t.Fatal("expected IRInvariant to be fatal")
	}
	for _, k := range []diag.Kind{diag.KindUseBeforeInit, diag.KindIllegalReassignToLet, diag.KindIllegalMemberFunCallInCtor, diag.KindAnalysisAborted} {
		if k.Fatal() {
			t.Fatalf("expected %s to not be fatal", k)
		}
	}
}

func TestSinkReportRaisesFailed(t *testing.T) {
	s := diag.NewSink()
	if s.Failed() {
		t.Fatal("expected a fresh sink to not be failed")
	}
	s.Errorf(diag.KindUseBeforeInit, diag.Location{FileID: 1, Pos: ir.Pos{Line: 3, Column: 5}}, "use of %s before init", "x")
	if !s.Failed() {
		t.Fatal("expected Failed after reporting an error-severity diagnostic")
	}
	if s.HasFatal() {
		t.Fatal("expected HasFatal false since only UseBeforeInit was reported")
	}
}

func TestSinkHasFatalOnIRInvariant(t *testing.T) {
	s := diag.NewSink()
	s.Report(diag.Diagnostic{Kind: diag.KindIRInvariant, Severity: diag.SeverityError, Message: "corrupt block"})
	if !s.HasFatal() {
		t.Fatal("expected HasFatal true after an IRInvariant diagnostic")
	}
}

func TestSinkNoteDoesNotRaiseFailed(t *testing.T) {
	s := diag.NewSink()
	s.Report(diag.Diagnostic{Kind: diag.KindAnalysisAborted, Severity: diag.SeverityNote, Message: "block cap hit"})
	if s.Failed() {
		t.Fatal("expected a pure Note to not raise Failed")
	}
}

func TestSinkFormatJoinsDiagnostics(t *testing.T) {
	s := diag.NewSink()
	s.Errorf(diag.KindUseBeforeInit, diag.Location{FileID: 0, Pos: ir.Pos{Line: 1, Column: 1}}, "a")
	s.Errorf(diag.KindUseBeforeInit, diag.Location{FileID: 0, Pos: ir.Pos{Line: 2, Column: 1}}, "b")
	out := s.Format()
	if !strings.Contains(out, "a") || !strings.Contains(out, "b") {
		t.Fatalf("expected both messages in formatted output, got %q", out)
	}
}

func TestSinkConcurrentReportIsSafe(t *testing.T) {
	s := diag.NewSink()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Errorf(diag.KindUseBeforeInit, diag.Location{FileID: i}, "concurrent %d", i)
		}(i)
	}
	wg.Wait()
	if len(s.Diagnostics()) != 50 {
		t.Fatalf("expected 50 diagnostics, got %d", len(s.Diagnostics()))
	}
}
