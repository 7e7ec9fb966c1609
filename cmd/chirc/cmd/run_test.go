package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

const fixtureYAML = `
package: demo
level: O1
functions:
  - name: answer
    return: Int64
    body:
      - op: alloc
        name: total
        value: Int64
      - op: dup
      - op: const_int
        value: "42"
      - op: store
      - op: load
      - op: exit
`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.yaml")
	if err := os.WriteFile(path, []byte(fixtureYAML), 0o644); err != nil {
		t.Fatalf("writeFixture: %v", err)
	}
	return path
}

func TestRunRunSucceedsOnWellFormedFixture(t *testing.T) {
	path := writeFixture(t)
	if err := runRun(runCmd, []string{path}); err != nil {
		t.Fatalf("runRun: %v", err)
	}
}

func TestRunCheckSucceedsOnWellFormedFixture(t *testing.T) {
	path := writeFixture(t)
	if err := runCheck(checkCmd, []string{path}); err != nil {
		t.Fatalf("runCheck: %v", err)
	}
}

func TestRunDumpSucceedsOnWellFormedFixture(t *testing.T) {
	path := writeFixture(t)
	dumpJSON = true
	if err := runDump(dumpCmd, []string{path}); err != nil {
		t.Fatalf("runDump: %v", err)
	}
}

func TestRunRunFailsOnMissingFile(t *testing.T) {
	if err := runRun(runCmd, []string{"/nonexistent/fixture.yaml"}); err == nil {
		t.Fatal("expected an error for a missing fixture file")
	}
}
