package listing

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func TestList_KindsAndSizes(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "file.txt"), []byte("Hello"), 0o644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "sub"), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	hasLink := os.Symlink("sub", filepath.Join(tmpDir, "link")) == nil

	entries, err := List(tmpDir, Name, false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	byName := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}

	if e := byName["file.txt"]; e.Kind != File || e.Size != 5 || e.Err != nil {
		t.Errorf("Expected file.txt to be a 5 byte file, got %+v", e)
	}

	if e := byName["sub"]; e.Kind != Dir || !e.IsDir() {
		t.Errorf("Expected sub to be a directory, got %+v", e)
	}

	if e := byName["sub"]; e.Path != filepath.Join(tmpDir, "sub") {
		t.Errorf("Expected path %q, got %q", filepath.Join(tmpDir, "sub"), e.Path)
	}

	if hasLink {
		if e := byName["link"]; e.Kind != Other {
			t.Errorf("Symlinks must not be followed, got kind %s", e.Kind)
		}
	}
}

func TestList_FollowSymlinks(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.Mkdir(filepath.Join(tmpDir, "sub"), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "file.txt"), []byte("Hello"), 0o644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	links := map[string]string{
		"dirlink":  "sub",
		"filelink": "file.txt",
		"dangling": "missing",
	}

	for name, target := range links {
		if err := os.Symlink(target, filepath.Join(tmpDir, name)); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}
	}

	entries, err := List(tmpDir, Name, true)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	byName := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}

	if e := byName["dirlink"]; !e.IsDir() || !e.Link {
		t.Errorf("Expected dirlink to be a followed directory, got %+v", e)
	}

	for name, target := range map[string]string{"filelink": "file.txt", "dangling": "missing"} {
		e := byName[name]
		if e.Kind != Other || e.Link || e.Size != uint64(len(target)) {
			t.Errorf("Expected %s to keep its own size %d, got %+v", name, len(target), e)
		}
	}
}

func TestChain_Descend(t *testing.T) {
	tmpDir := t.TempDir()

	sub := filepath.Join(tmpDir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	back := filepath.Join(sub, "back")
	if err := os.Symlink("..", back); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	chain, ok, err := Chain(nil).Descend(tmpDir)
	if err != nil || !ok {
		t.Fatalf("Descend into root failed: ok=%v err=%v", ok, err)
	}

	chain, ok, err = chain.Descend(sub)
	if err != nil || !ok || len(chain) != 2 {
		t.Fatalf("Descend into sub failed: ok=%v err=%v len=%d", ok, err, len(chain))
	}

	if _, ok, err := chain.Descend(back); err != nil || ok {
		t.Errorf("Descending into a link to an ancestor should be refused, got ok=%v err=%v", ok, err)
	}

	if _, _, err := chain.Descend(filepath.Join(tmpDir, "missing")); err == nil {
		t.Error("Descend should return error for a missing directory")
	}
}

func TestList_NameOrder(t *testing.T) {
	tmpDir := t.TempDir()

	for _, name := range []string{"c", "a", "b", "B"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), nil, 0o644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}

	entries, err := List(tmpDir, Name, false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []string{"B", "a", "b", "c"}
	if len(entries) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(entries))
	}

	for i, name := range want {
		if entries[i].Name != name {
			t.Errorf("entries[%d]: expected %q, got %q", i, name, entries[i].Name)
		}
	}
}

func TestList_NonExistent(t *testing.T) {
	if _, err := List("/nonexistent/directory", Native, false); err == nil {
		t.Error("List should return error for nonexistent directory")
	}
}

func TestExcluder(t *testing.T) {
	excluder, err := NewExcluder([]string{`.*\.git/.*`, `\.tmp$`})
	if err != nil {
		t.Fatalf("NewExcluder failed: %v", err)
	}

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{path: "repo/.git", isDir: true, want: true},
		{path: "repo/.git/config", isDir: false, want: true},
		{path: "repo/.github", isDir: true, want: false},
		{path: "build/out.tmp", isDir: false, want: true},
		{path: "main.go", isDir: false, want: false},
	}

	for _, tt := range tests {
		if got := excluder.Match(tt.path, tt.isDir) != nil; got != tt.want {
			t.Errorf("Match(%q, %v): expected %v, got %v", tt.path, tt.isDir, tt.want, got)
		}
	}

	if _, err := NewExcluder([]string{"[unclosed"}); err == nil {
		t.Error("NewExcluder should reject an invalid pattern")
	}
}

func TestExcluder_FilterKeepsOrder(t *testing.T) {
	excluder, err := NewExcluder([]string{`skip`})
	if err != nil {
		t.Fatalf("NewExcluder failed: %v", err)
	}

	entries := []Entry{{Name: "z", Path: "z"}, {Name: "skip", Path: "skip"}, {Name: "a", Path: "a"}}

	var dropped []string

	kept := excluder.Filter(entries, func(e Entry, _ *regexp.Regexp) { dropped = append(dropped, e.Name) })

	if len(kept) != 2 || kept[0].Name != "z" || kept[1].Name != "a" {
		t.Errorf("Expected [z a], got %+v", kept)
	}

	if len(dropped) != 1 || dropped[0] != "skip" {
		t.Errorf("Expected [skip] to be dropped, got %v", dropped)
	}

	if got := (Excluder{}).Filter(entries, nil); len(got) != len(entries) {
		t.Errorf("Zero Excluder should keep all entries, got %d", len(got))
	}
}

func TestParse(t *testing.T) {
	if o, err := ParseOrder(""); err != nil || o != Native {
		t.Errorf("Expected empty order to default to native, got %q, %v", o, err)
	}

	if o, err := ParseOrder("NAME"); err != nil || o != Name {
		t.Errorf("Expected NAME to parse as name, got %q, %v", o, err)
	}

	if _, err := ParseOrder("size"); err == nil {
		t.Error("ParseOrder should reject unknown orders")
	}

	if p, err := ParseErrorPolicy(""); err != nil || p != Skip {
		t.Errorf("Expected empty policy to default to skip, got %q, %v", p, err)
	}

	if p, err := ParseErrorPolicy("fail"); err != nil || p != Fail {
		t.Errorf("Expected fail to parse, got %q, %v", p, err)
	}

	if _, err := ParseErrorPolicy("retry"); err == nil {
		t.Error("ParseErrorPolicy should reject unknown policies")
	}
}
