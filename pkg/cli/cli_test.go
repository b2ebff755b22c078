package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/mop/internal/builtins"
	"github.com/funvibe/mop/internal/catalog"
	"github.com/funvibe/mop/internal/ext"
)

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	ext.RegisterHelpers(builtins.TextModule, builtins.TextHelpers())
	t.Cleanup(ext.ClearHelpers)
	path := filepath.Join(t.TempDir(), "mop.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCall(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"call", "1", "plus", "2"}, "3"},
		{[]string{"call", "1", "div", "2"}, "0.5"},
		{[]string{"call", "2", "plus", "1.5"}, "3.5"},
		{[]string{"call", "2", "plus", "1.5d"}, "3.5"},
		{[]string{"call", `"ab"`, "toUpperCase"}, `"AB"`},
		{[]string{"call", "ab", "plus", "1"}, `"ab1"`},
		{[]string{"call", "1", "equals", "null"}, "false"},
		{[]string{"call", "(Number)1", "getClass"}, `"Integer"`},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			code, out, errOut := run(t, tt.args...)
			if code != 0 {
				t.Fatalf("exit %d: %s", code, errOut)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCallErrors(t *testing.T) {
	tests := []struct {
		args []string
		code int
		want string
	}{
		{[]string{"call", "1"}, 2, "Usage: mop call"},
		{[]string{"call", "1", "nope"}, 1, "no applicable method Integer.nope()"},
		{[]string{"call", "1", "div", "0"}, 1, "division by zero"},
		{[]string{"call", "(Nowhere)1", "plus", "1"}, 1, "class not found: Nowhere"},
		{[]string{"static", "String", "nope"}, 1, "no applicable static method String.nope()"},
		{[]string{"frobnicate"}, 2, `unknown command "frobnicate"`},
		{[]string{"--bogus", "list"}, 2, "unknown flag: --bogus"},
		{nil, 2, "Usage: mop"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			code, _, errOut := run(t, tt.args...)
			if code != tt.code {
				t.Errorf("exit %d, want %d", code, tt.code)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Errorf("stderr %q does not contain %q", errOut, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"resolve", "Integer", "plus", "Integer"}, "Number.plus(Number)  score=3"},
		{[]string{"resolve", "String", "size"}, "String.size()  score=0"},
		{[]string{"resolve", "Integer", "equals", "null"}, "Object.equals(Object)  score=1"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			code, out, errOut := run(t, tt.args...)
			if code != 0 {
				t.Fatalf("exit %d: %s", code, errOut)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestList(t *testing.T) {
	code, out, errOut := run(t, "list", "String")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.HasPrefix(out, "String\n") {
		t.Errorf("expected String header, got %q", out)
	}
	if !strings.Contains(out, "  String.toUpperCase()\n") {
		t.Errorf("missing toUpperCase in %q", out)
	}
	if strings.Contains(out, "Number.") {
		t.Error("list String should not show Number methods")
	}

	if code, _, _ := run(t, "list", "Nowhere"); code != 1 {
		t.Errorf("unknown class exit = %d, want 1", code)
	}
}

func TestConfig(t *testing.T) {
	path := writeConfig(t, `
classes:
  - name: Greeter
extensions:
  - module: text
    target: String
    methods:
      - helper: reverse
      - helper: words
      - helper: words
        as: split
        static: true
`)
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"call", "abc", "reverse"}, `"cba"`},
		{[]string{"call", `"a b"`, "words"}, `String["a", "b"]`},
		{[]string{"static", "String", "split"}, `String[]`},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			code, out, errOut := run(t, append([]string{"--config", path}, tt.args...)...)
			if code != 0 {
				t.Fatalf("exit %d: %s", code, errOut)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	code, out, _ := run(t, "--config", path, "list", "String")
	if code != 0 || !strings.Contains(out, "String.reverse() [extension]") {
		t.Errorf("list after config = %d, %q", code, out)
	}
	if code, _, _ := run(t, "--config", path, "list", "Greeter"); code != 0 {
		t.Errorf("configured class should be listable, exit %d", code)
	}
}

func TestConfigUnknownModule(t *testing.T) {
	path := writeConfig(t, `
extensions:
  - module: nope
    target: String
    all: true
`)
	code, _, errOut := run(t, "--config", path, "list")
	if code != 1 || !strings.Contains(errOut, `helper module "nope" is not compiled into this binary`) {
		t.Errorf("exit %d, stderr %q", code, errOut)
	}
}

func TestDump(t *testing.T) {
	db := filepath.Join(t.TempDir(), "methods.db")
	code, out, errOut := run(t, "dump", db)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.HasPrefix(out, "exported ") {
		t.Errorf("unexpected output %q", out)
	}

	ctx := context.Background()
	cat, err := catalog.Open(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()
	methods, err := cat.Lookup(ctx, "String", "toUpperCase")
	if err != nil {
		t.Fatal(err)
	}
	if len(methods) != 1 {
		t.Errorf("expected one toUpperCase row, got %d", len(methods))
	}
}

func TestInspect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping package loading in short mode")
	}
	code, out, errOut := run(t, "inspect", "../../internal/ext/testdata/helpers")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	for _, want := range []string{"# not bindable: Drain, Now", "target: String", "helper: shout", "target: long[]"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
