package stringutils

import (
	"strings"
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "Weekly Standup", "weekly_standup"},
		{"punctuation stripped", "Q3: Plans & Goals!", "q3_plans_goals"},
		{"mixed separators", "notes - 2024.draft_v2", "notes_2024_draft_v2"},
		{"unicode letters kept", "Café Notes", "café_notes"},
		{"empty falls back", "   ", "untitled"},
		{"symbols only falls back", "!!!", "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSlugifyBoundsLength(t *testing.T) {
	long := strings.Repeat("word ", 40)
	slug := Slugify(long)
	if len(slug) > DefaultSlugMaxLen {
		t.Fatalf("slug length %d exceeds max %d", len(slug), DefaultSlugMaxLen)
	}
	if strings.HasSuffix(slug, "_") {
		t.Fatalf("slug has trailing separator: %q", slug)
	}
}

func TestExportFilename(t *testing.T) {
	at := time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)
	got := ExportFilename("Project Kickoff", at, "csv")
	want := "project_kickoff_20240517_093000.csv"
	if got != want {
		t.Fatalf("ExportFilename = %q, want %q", got, want)
	}
}

func TestTruncateTitle(t *testing.T) {
	got := TruncateTitle("a discussion about exporting conversations", 20)
	if len(got) > 20 {
		t.Fatalf("truncated title too long: %q (%d)", got, len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if short := TruncateTitle("short", 20); short != "short" {
		t.Fatalf("short title should be unchanged, got %q", short)
	}
}
