package deckfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
name: "  spanish basics  "
cards:
  - front: "  hola "
    back: " hello"
  - front: adios
    back: goodbye
`
	file, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if file.Name != "spanish basics" {
		t.Fatalf("name not trimmed: %q", file.Name)
	}
	if len(file.Cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(file.Cards))
	}
	if file.Cards[0].Front != "hola" || file.Cards[0].Back != "hello" {
		t.Fatalf("card sides not trimmed: %+v", file.Cards[0])
	}
}

func TestParseRejections(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "missing name",
			input: "cards:\n  - front: a\n    back: b\n",
			want:  "missing deck name",
		},
		{
			name:  "whitespace name",
			input: "name: \"   \"\ncards:\n  - front: a\n    back: b\n",
			want:  "missing deck name",
		},
		{
			name:  "no cards",
			input: "name: spanish\n",
			want:  "no cards",
		},
		{
			name:  "empty front",
			input: "name: spanish\ncards:\n  - front: \"   \"\n    back: b\n",
			want:  "empty front",
		},
		{
			name:  "empty back",
			input: "name: spanish\ncards:\n  - front: a\n    back: \"\"\n",
			want:  "empty back",
		},
		{
			name:  "duplicate front",
			input: "name: spanish\ncards:\n  - front: hola\n    back: hello\n  - front: \" hola \"\n    back: hi\n",
			want:  "duplicate front",
		},
		{
			name:  "not yaml",
			input: "{{nope",
			want:  "deck file",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.input))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spanish.yaml")
	content := "name: spanish\ncards:\n  - front: hola\n    back: hello\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write deck file: %v", err)
	}

	file, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if file.Name != "spanish" || len(file.Cards) != 1 {
		t.Fatalf("unexpected file: %+v", file)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	write := func(rel string) {
		t.Helper()
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	write("b.yaml")
	write("a.yml")
	write("notes/c.YAML")
	write("readme.md")
	write(".git/objects/d.yaml")

	paths, err := Discover(dir)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "notes", "c.YAML"),
	}
	if len(paths) != len(want) {
		t.Fatalf("expected %d paths, got %v", len(want), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("path %d: got %q, want %q", i, paths[i], want[i])
		}
	}
}
