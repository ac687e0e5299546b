package usecase

import (
	"testing"

	"github.com/fotisolgr/my-bet-app/internal/domain/match"
)

func TestToMatchRecord(t *testing.T) {
	t.Parallel()

	got := ToMatchRecord(storedMatch(7, "alice"))

	if got.MatchID != 7 || got.MatchOwner != "alice" || got.Description != "DERBY" {
		t.Fatalf("unexpected identity fields: %+v", got)
	}
	if got.MatchDate != "2025-08-22" || got.MatchTime != "13:52" {
		t.Fatalf("unexpected date/time rendering: %q %q", got.MatchDate, got.MatchTime)
	}
	if got.Sport != match.SportBasketball {
		t.Fatalf("unexpected sport: %q", got.Sport)
	}
	if len(got.Odds) != 3 || got.Odds[0].Specifier != match.SpecifierWin || got.Odds[2].Odd.String() != "4" {
		t.Fatalf("unexpected odds: %+v", got.Odds)
	}
}

func TestToMatchRecord_NoOddsRendersEmptyList(t *testing.T) {
	t.Parallel()

	m := storedMatch(1, "alice")
	m.Odds = nil

	got := ToMatchRecord(m)
	if got.Odds == nil || len(got.Odds) != 0 {
		t.Fatalf("expected empty non-nil odds, got %#v", got.Odds)
	}
}

func TestToMatchPage_Metadata(t *testing.T) {
	t.Parallel()

	items := func(n int) []match.Match {
		out := make([]match.Match, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, storedMatch(int64(i+1), "alice"))
		}
		return out
	}

	tests := []struct {
		name      string
		page      match.Page
		req       match.PageRequest
		wantPages int
		wantFirst bool
		wantLast  bool
		wantEmpty bool
	}{
		{
			name:      "first of several",
			page:      match.Page{Items: items(2), Total: 5},
			req:       match.PageRequest{Page: 0, Size: 2},
			wantPages: 3,
			wantFirst: true,
		},
		{
			name:      "partial last",
			page:      match.Page{Items: items(1), Total: 5},
			req:       match.PageRequest{Page: 2, Size: 2},
			wantPages: 3,
			wantLast:  true,
		},
		{
			name:      "no rows",
			page:      match.Page{},
			req:       match.PageRequest{Page: 0, Size: 10},
			wantPages: 0,
			wantFirst: true,
			wantLast:  true,
			wantEmpty: true,
		},
		{
			name:      "past the end",
			page:      match.Page{Total: 3},
			req:       match.PageRequest{Page: 4, Size: 10},
			wantPages: 1,
			wantLast:  true,
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := toMatchPage(tt.page, tt.req)
			if got.TotalPages != tt.wantPages {
				t.Fatalf("expected %d pages, got %d", tt.wantPages, got.TotalPages)
			}
			if got.First != tt.wantFirst || got.Last != tt.wantLast || got.Empty != tt.wantEmpty {
				t.Fatalf("unexpected flags: first=%v last=%v empty=%v", got.First, got.Last, got.Empty)
			}
			if got.TotalElements != tt.page.Total || got.Size != tt.req.Size || got.Number != tt.req.Page {
				t.Fatalf("unexpected counters: %+v", got)
			}
			if got.NumberOfElements != len(tt.page.Items) {
				t.Fatalf("expected %d elements, got %d", len(tt.page.Items), got.NumberOfElements)
			}
		})
	}
}
