package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Deck", "Due now", "New"}
	rows := [][]string{
		{"spanish", "12", "3"},
		{"kanji", "5", "10"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Deck    Due now New" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "spanish      12   3" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "kanji         5  10" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	headers := []string{"Front", "Reps"}
	rows := [][]string{
		{"日本語", "4"},
		{"cat", "12"},
	}
	rightAlign := map[int]bool{1: true}

	lines := formatTable(headers, rows, rightAlign)
	// 日本語 occupies six terminal cells, so the front column is six wide.
	if lines[0] != "Front  Reps" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "日本語    4" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "cat      12" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}
