package prompts

import (
	"strings"
	"testing"

	"invest-assistant/internal/types"
)

func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```":          `{"a":1}`,
		"Here you go: {\"ticker\":\"EVO\"}": `{"ticker":"EVO"}`,
		`{"plain":true}`:                    `{"plain":true}`,
		"no braces at all":                  "no braces at all",
	}
	for in, want := range cases {
		if got := ExtractJSON(in); got != want {
			t.Errorf("ExtractJSON(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeChoice(t *testing.T) {
	c := types.RankChoice{Ticker: " shb a ", Confidence: 1.7}
	NormalizeChoice(&c)
	if c.Ticker != "SHB A" {
		t.Errorf("ticker = %q", c.Ticker)
	}
	if c.Confidence != 0 {
		t.Errorf("out-of-range confidence must clamp to 0, got %f", c.Confidence)
	}
}

func TestNormalizeIntent_UnknownBecomesNone(t *testing.T) {
	ic := types.IntentClassification{Intent: "day_trading", Confidence: 0.8}
	NormalizeIntent(&ic)
	if ic.Intent != types.IntentNone {
		t.Errorf("intent = %q, want none", ic.Intent)
	}

	ic = types.IntentClassification{Intent: " Single_Stock_Analysis ", Confidence: 0.9}
	NormalizeIntent(&ic)
	if ic.Intent != types.IntentStockAnalysis {
		t.Errorf("intent = %q, want single_stock_analysis", ic.Intent)
	}
}

func TestRankUser_CarriesShortlist(t *testing.T) {
	s, err := RankUser("handelsbanken", []string{"handelsbanken"}, true, []types.Instrument{
		{Ticker: "SHB A", Name: "Svenska Handelsbanken A"},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"SHB A"`, `"bank_mode":true`, `"handelsbanken"`} {
		if !strings.Contains(s, want) {
			t.Errorf("prompt missing %s: %s", want, s)
		}
	}
}
