package domain

import "testing"

func TestParsePage(t *testing.T) {
	tests := []struct {
		limit, page string
		want        Page
	}{
		{"", "", Page{}},
		{"3", "", Page{Limit: 3}},
		{"3", "1", Page{Limit: 3, Skip: 3}},
		{"3", "0", Page{Limit: 3}},
		{"3", "-2", Page{Limit: 3}},
		{"3", "abc", Page{Limit: 3}},
		{"0", "2", Page{}},
		{"-1", "2", Page{}},
		{"abc", "2", Page{}},
		{"2.5", "1", Page{}},
	}
	for _, tt := range tests {
		if got := ParsePage(tt.limit, tt.page); got != tt.want {
			t.Fatalf("ParsePage(%q, %q) = %+v, want %+v", tt.limit, tt.page, got, tt.want)
		}
	}
}

func TestApply(t *testing.T) {
	items := []int{1, 2, 3, 4}

	if got := Apply(items, Page{}); len(got) != 4 {
		t.Fatalf("no page: len = %d", len(got))
	}
	if got := Apply(items, Page{Limit: 3, Skip: 3}); len(got) != 1 || got[0] != 4 {
		t.Fatalf("second page = %v", got)
	}
	if got := Apply(items, Page{Limit: 2, Skip: 10}); len(got) != 0 {
		t.Fatalf("past end = %v", got)
	}
}

func FuzzParsePage(f *testing.F) {
	f.Add("3", "1")
	f.Add("", "")
	f.Add("-5", "x")
	f.Fuzz(func(t *testing.T, limit, page string) {
		p := ParsePage(limit, page)
		if p.Limit < 0 || p.Skip < 0 {
			t.Fatalf("negative page %+v", p)
		}
		if p.Limit == 0 && p.Skip != 0 {
			t.Fatalf("skip without limit %+v", p)
		}
	})
}
