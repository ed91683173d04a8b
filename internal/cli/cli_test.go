package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/layout-editor/backend/internal/treeview"
)

const sampleLayout = `{
  "containers": [
    {"id": "A", "x": 10, "y": 10, "width": 300, "height": 200, "rotation": 0,
     "styles": {"backgroundColor": "#ffffff", "border": "1px solid #000000", "zIndex": 1},
     "children": ["B"]},
    {"id": "B", "parentId": "A", "x": 20, "y": 20, "width": 100, "height": 50, "rotation": 0,
     "styles": {"backgroundColor": "#e0e0e0", "border": "1px solid #000000", "zIndex": 1},
     "children": []}
  ]
}`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.0.0", "abc123", "2026-01-01")
	defer SetVersion("", "", "")

	if version != "1.0.0" {
		t.Errorf("version = %q, want %q", version, "1.0.0")
	}
	if commit != "abc123" {
		t.Errorf("commit = %q, want %q", commit, "abc123")
	}
}

func TestExportToStdout(t *testing.T) {
	in := writeFile(t, "layout.json", sampleLayout)

	out, _, err := run(t, "export", "--in", in)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Errorf("output does not start with a doctype: %q", out[:min(40, len(out))])
	}
	if !strings.Contains(out, `<div id="B"`) {
		t.Errorf("nested container missing from output")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, "layout.json", sampleLayout)
	page := filepath.Join(dir, "page.html")
	back := filepath.Join(dir, "back.json")

	if _, _, err := run(t, "export", "--in", in, "--out", page); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, _, err := run(t, "import", "--in", page, "--out", back); err != nil {
		t.Fatalf("import: %v", err)
	}

	data, err := os.ReadFile(back)
	if err != nil {
		t.Fatal(err)
	}
	var f layoutFile
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(f.Containers) != 2 {
		t.Fatalf("got %d containers, want 2", len(f.Containers))
	}
	b := f.Containers[1]
	if b.ID != "B" || b.ParentID != "A" || b.X != 20 || b.Y != 20 || b.Styles.BackgroundColor != "#e0e0e0" {
		t.Errorf("unexpected B after round trip: %+v", b)
	}
}

func TestImportReportsReasonCode(t *testing.T) {
	in := writeFile(t, "page.html", `<div><span>no ids</span></div>`)

	_, _, err := run(t, "import", "--in", in)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.HasPrefix(err.Error(), "NO_ADDRESSABLE_ELEMENTS") {
		t.Errorf("error = %q, want reason code prefix", err)
	}
}

func TestTreeCommand(t *testing.T) {
	in := writeFile(t, "layout.json", `[
  {"id": "A", "width": 10, "height": 10, "styles": {"border": "1px solid #000"}, "children": ["B"]},
  {"id": "B", "parentId": "A", "styles": {"border": "1px solid #000"}, "children": []},
  {"id": "C", "styles": {"border": "1px solid #000"}, "children": []}
]`)

	out, _, err := run(t, "tree", "--in", in)
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	var forest []treeview.Node
	if err := json.Unmarshal([]byte(out), &forest); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := treeview.IDs(forest); len(got) != 2 || got[0] != "A" || got[1] != "C" {
		t.Errorf("roots = %v, want [A C]", got)
	}
	if got := treeview.IDs(forest[0].Children); len(got) != 1 || got[0] != "B" {
		t.Errorf("children of A = %v, want [B]", got)
	}
}

func TestRejectsBrokenLayout(t *testing.T) {
	in := writeFile(t, "layout.json", `{"containers": [{"id": "B", "parentId": "gone", "children": []}]}`)

	if _, _, err := run(t, "export", "--in", in); err == nil {
		t.Error("expected an error for a dangling parent")
	}
}

func TestMissingInFlag(t *testing.T) {
	if _, _, err := run(t, "export"); err == nil {
		t.Error("expected an error without --in")
	}
}
