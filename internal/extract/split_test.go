package extract

import (
	"strings"
	"testing"
)

func TestSplitIntoPages_FormFeed(t *testing.T) {
	pages := splitIntoPages("page one\fpage two\fpage three", 3)
	if len(pages) != 3 {
		t.Fatalf("len=%d, want 3", len(pages))
	}
	if pages[0] != "page one" || pages[2] != "page three" {
		t.Errorf("pages=%q", pages)
	}
}

func TestSplitIntoPages_AverageLength(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("some line of document text\n")
	}
	pages := splitIntoPages(b.String(), 4)
	if len(pages) != 4 {
		t.Fatalf("len=%d, want 4", len(pages))
	}
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			t.Errorf("page %d is empty", i+1)
		}
	}
}

func TestSplitIntoPages_PadsMissing(t *testing.T) {
	pages := splitIntoPages("", 3)
	if len(pages) != 3 {
		t.Fatalf("len=%d, want 3", len(pages))
	}
}

func TestSplitIntoPages_TrimsExcess(t *testing.T) {
	pages := splitIntoPages("a\fb\fc\fd", 2)
	if len(pages) != 2 {
		t.Fatalf("len=%d, want 2", len(pages))
	}
	if pages[0] != "a" || pages[1] != "b" {
		t.Errorf("pages=%q", pages)
	}
}

func TestSplitIntoPages_ZeroPages(t *testing.T) {
	if pages := splitIntoPages("text", 0); pages != nil {
		t.Errorf("pages=%q, want nil", pages)
	}
}
