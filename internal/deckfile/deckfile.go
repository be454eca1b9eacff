// Package deckfile parses YAML deck files.
package deckfile

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is a deck file: a deck name plus its cards.
type File struct {
	Name  string  `yaml:"name"`
	Cards []Entry `yaml:"cards"`
}

// Entry is one card in a deck file.
type Entry struct {
	Front string `yaml:"front"`
	Back  string `yaml:"back"`
}

// Parse reads a deck file. Names and card sides are trimmed; empty
// values and duplicate fronts are rejected.
func Parse(r io.Reader) (File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return File{}, err
	}
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("deck file: %w", err)
	}

	file.Name = strings.TrimSpace(file.Name)
	if file.Name == "" {
		return File{}, fmt.Errorf("deck file: missing deck name")
	}
	if len(file.Cards) == 0 {
		return File{}, fmt.Errorf("deck file %q: no cards", file.Name)
	}

	seen := make(map[string]int, len(file.Cards))
	for i := range file.Cards {
		card := &file.Cards[i]
		card.Front = strings.TrimSpace(card.Front)
		card.Back = strings.TrimSpace(card.Back)
		if card.Front == "" {
			return File{}, fmt.Errorf("deck file %q: card %d: empty front", file.Name, i+1)
		}
		if card.Back == "" {
			return File{}, fmt.Errorf("deck file %q: card %d: empty back", file.Name, i+1)
		}
		if prev, ok := seen[card.Front]; ok {
			return File{}, fmt.Errorf("deck file %q: card %d: duplicate front %q (first at card %d)",
				file.Name, i+1, card.Front, prev)
		}
		seen[card.Front] = i + 1
	}
	return file, nil
}

// Load parses the deck file at the given path.
func Load(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only deck file.
			_ = cerr
		}
	}()
	file, err := Parse(f)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Discover walks a directory tree and returns the deck file paths
// found, in lexical order. Hidden directories are skipped, so a
// checkout's .git tree is never scanned.
func Discover(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
