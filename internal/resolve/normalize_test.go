package resolve

import (
	"reflect"
	"testing"
)

func TestCleanName_StripsCorporateSuffixes(t *testing.T) {
	cases := map[string]string{
		"Evolution AB (publ)":      "EVOLUTION",
		"Telia Company (publ)":     "TELIA COMPANY",
		"Volvo AB":                 "VOLVO",
		"Svenska Handelsbanken AB": "SVENSKA HANDELSBANKEN",
		"Investor B Ser. B":        "INVESTOR B",
		"Plain Name":               "PLAIN NAME",
	}
	for in, want := range cases {
		if got := CleanName(in); got != want {
			t.Errorf("CleanName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormText_FoldsDiacritics(t *testing.T) {
	if got := NormText("Åkersson Möbler"); got != "AKERSSON MOBLER" {
		t.Errorf("expected folded text, got %q", got)
	}
	if got := NormText("Ørsted"); got != "ORSTED" {
		t.Errorf("expected O for Ø, got %q", got)
	}
}

func TestNormText_NeverEmpty(t *testing.T) {
	// Input that normalizes to nothing must come back as its trimmed self.
	if got := NormText("  AB  "); got == "" {
		t.Error("expected non-empty result for suffix-only input")
	}
}

func TestCleanQuery_StripsAnalyzeVerb(t *testing.T) {
	if got := CleanQuery("analysera Evolution"); got != "Evolution" {
		t.Errorf("expected 'Evolution', got %q", got)
	}
	if got := CleanQuery("analyze"); got != "analyze" {
		t.Errorf("verb-only prompt should fall back to itself, got %q", got)
	}
}

func TestTokens_SplitsOnSeparators(t *testing.T) {
	got := Tokens("Thule-Group/Outdoor")
	want := []string{"thule", "group", "outdoor"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens = %v, want %v", got, want)
	}
}

func TestKeyTokens_DropsStopwordsAndBank(t *testing.T) {
	got := KeyTokens([]string{"svenska", "handelsbanken", "bank", "ab", "a", "nordic"})
	want := []string{"handelsbanken"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("KeyTokens = %v, want %v", got, want)
	}
}

func TestTickerKey_NormalizesWhitespace(t *testing.T) {
	if got := TickerKey("  shb   a "); got != "SHB A" {
		t.Errorf("TickerKey = %q, want 'SHB A'", got)
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	if s := similarity("EVOLUTION", "EVOLUTION"); s != 1.0 {
		t.Errorf("identical strings should score 1.0, got %f", s)
	}
	if s := similarity("EVOLUTION", "XQZW"); s > 0.3 {
		t.Errorf("unrelated strings should score low, got %f", s)
	}
	if s := similarity("", ""); s != 1.0 {
		t.Errorf("two empty strings should score 1.0, got %f", s)
	}
}
