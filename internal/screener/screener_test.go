package screener

import (
	"context"
	"testing"

	"invest-assistant/internal/types"
)

type stubUniverse struct {
	instruments []types.Instrument
}

func (u *stubUniverse) Universe() []types.Instrument { return u.instruments }
func (u *stubUniverse) CountryName(id int) string {
	return map[int]string{1: "Sverige", 2: "Norge"}[id]
}
func (u *stubUniverse) SectorName(id int) string {
	return map[int]string{10: "Finans & Fastighet", 11: "Industri"}[id]
}
func (u *stubUniverse) BranchName(id int) string {
	return map[int]string{20: "Banker", 21: "Industrimaskiner"}[id]
}
func (u *stubUniverse) MarketName(id int) string {
	return map[int]string{30: "Large Cap"}[id]
}
func (u *stubUniverse) InstrumentTypeName(id int) string {
	return map[int]string{0: "Aktie", 2: "ETF"}[id]
}

func testUniverse() *stubUniverse {
	return &stubUniverse{instruments: []types.Instrument{
		{ID: 1, Name: "Svenska Handelsbanken A", Ticker: "SHB A", CountryID: 1, SectorID: 10, BranchID: 20, MarketID: 30},
		{ID: 2, Name: "Swedbank A", Ticker: "SWED A", CountryID: 1, SectorID: 10, BranchID: 20, MarketID: 30},
		{ID: 3, Name: "Volvo B", Ticker: "VOLV B", CountryID: 1, SectorID: 11, BranchID: 21, MarketID: 30},
		{ID: 4, Name: "Equinor", Ticker: "EQNR", CountryID: 2, SectorID: 11, BranchID: 21},
		{ID: 5, Name: "XACT OMXS30", Ticker: "XACT OMXS30", CountryID: 1, SectorID: 11, InstrumentType: 2},
	}}
}

func TestScreen_ByCountryAndSector(t *testing.T) {
	svc := New(testUniverse())

	got := svc.Screen(context.Background(), types.ScreenerFilter{Country: "sverige", Sector: "finans"}, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 banks, got %d: %+v", len(got), got)
	}
	// Sorted by ticker.
	if got[0].Ticker != "SHB A" || got[1].Ticker != "SWED A" {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestScreen_ByBranchSubstring(t *testing.T) {
	svc := New(testUniverse())

	got := svc.Screen(context.Background(), types.ScreenerFilter{Branch: "bank"}, 0)
	if len(got) != 2 {
		t.Errorf("expected 2 matches for branch 'bank', got %d", len(got))
	}
}

func TestScreen_EmptyFilterMatchesAll(t *testing.T) {
	svc := New(testUniverse())

	got := svc.Screen(context.Background(), types.ScreenerFilter{}, 0)
	if len(got) != 5 {
		t.Errorf("expected all 5 instruments, got %d", len(got))
	}
}

func TestScreen_Limit(t *testing.T) {
	svc := New(testUniverse())

	got := svc.Screen(context.Background(), types.ScreenerFilter{}, 2)
	if len(got) != 2 {
		t.Errorf("expected limit of 2, got %d", len(got))
	}
	if got[0].Ticker != "EQNR" {
		t.Errorf("expected EQNR first after sort, got %q", got[0].Ticker)
	}
}

func TestScreen_InstrumentType(t *testing.T) {
	svc := New(testUniverse())

	got := svc.Screen(context.Background(), types.ScreenerFilter{InstrumentType: "etf"}, 0)
	if len(got) != 1 || got[0].Ticker != "XACT OMXS30" {
		t.Errorf("expected only the ETF, got %+v", got)
	}
}

func TestScreen_NoMatches(t *testing.T) {
	svc := New(testUniverse())

	got := svc.Screen(context.Background(), types.ScreenerFilter{Country: "danmark"}, 0)
	if len(got) != 0 {
		t.Errorf("expected no matches, got %+v", got)
	}
}
