package chirconfig_test

import (
	"testing"

	"github.com/chir-lang/chir/internal/chirconfig"
)

func TestO0DisablesOptimizationPasses(t *testing.T) {
	o := chirconfig.New(chirconfig.O0)
	if o.PassEnabled(chirconfig.PassFunctionInline) {
		t.Fatal("expected function-inline disabled at O0")
	}
	if !o.PassEnabled(chirconfig.PassFlattenForIn) {
		t.Fatal("expected flatten-for-in to always run, even at O0")
	}
}

func TestO1EnablesInlining(t *testing.T) {
	o := chirconfig.New(chirconfig.O1)
	if !o.PassEnabled(chirconfig.PassFunctionInline) {
		t.Fatal("expected function-inline enabled at O1")
	}
}

func TestWithPassOverridesLevelDefault(t *testing.T) {
	o := chirconfig.New(chirconfig.O1, chirconfig.WithPass(chirconfig.PassFunctionInline, false))
	if o.PassEnabled(chirconfig.PassFunctionInline) {
		t.Fatal("expected explicit override to win over the O1 default")
	}
}

func TestWithJobCountAndCompileDebug(t *testing.T) {
	o := chirconfig.New(chirconfig.O2, chirconfig.WithJobCount(4), chirconfig.WithCompileDebug(true))
	if o.JobCount != 4 {
		t.Fatalf("expected job count 4, got %d", o.JobCount)
	}
	if !o.EnableCompileDebug {
		t.Fatal("expected compile-debug enabled")
	}
}
