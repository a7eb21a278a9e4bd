package resolve

import (
	"strings"

	"invest-assistant/internal/types"
)

// Scoring weights are fixed constants, not configuration.
const (
	weightExactName   = 100.0
	weightExactTicker = 90.0
	weightNameStarts  = 65.0
	weightTickerStart = 50.0
	weightSimilarity  = 40.0
	weightJaccard     = 30.0
	weightContains    = 15.0

	biasNordicLocked = 12.0
	biasNordic       = 6.0
	biasEquity       = 5.0
	biasFundLike     = -3.0
	biasBankBranch   = 25.0
	biasFinanceSect  = 12.0
	biasBlocklist    = -20.0
)

// sectorFinanceHints mark finance-sector names that support a bank query.
var sectorFinanceHints = []string{"finans", "financial", "financials"}

// blockWords disqualify branches/sectors that cannot plausibly answer a bank
// query.
var blockWords = []string{"cannabis", "tobacco", "gaming", "oil", "mining"}

// Directory resolves classification ids to display names. Satisfied by the
// borsdata metadata cache.
type Directory interface {
	CountryName(id int) string
	SectorName(id int) string
	BranchName(id int) string
	InstrumentTypeName(id int) string
}

// nordicCountry reports whether a country display name belongs to the Nordic
// set. Börsdata metadata uses Swedish names; English spellings are accepted
// for robustness.
func nordicCountry(name string) bool {
	switch strings.ToLower(name) {
	case "sverige", "norge", "danmark", "finland", "island",
		"sweden", "norway", "denmark", "iceland":
		return true
	}
	return false
}

// similarity is a Ratcliff/Obershelp ratio in [0,1], matching the behavior of
// difflib-style sequence matching: twice the matched character count over the
// combined length, with matches found by recursive longest-common-substring.
func similarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	m := commonChars(a, b)
	return 2.0 * float64(m) / float64(len(a)+len(b))
}

func commonChars(a, b string) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += commonChars(a[:ai], b[:bi])
	total += commonChars(a[ai+size:], b[bi+size:])
	return total
}

func longestCommonSubstring(a, b string) (ai, bi, size int) {
	// prev[j] = length of common suffix of a[:i] and b[:j]
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}

// jaccard computes word overlap between two normalized strings. Words
// shorter than three characters are ignored.
func jaccard(a, b string) float64 {
	setOf := func(s string) map[string]bool {
		out := map[string]bool{}
		for _, w := range strings.Fields(s) {
			if len(w) > 2 {
				out[w] = true
			}
		}
		return out
	}
	sa, sb := setOf(a), setOf(b)
	inter := 0
	for w := range sa {
		if sb[w] {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union < 1 {
		union = 1
	}
	return float64(inter) / float64(union)
}

// baseScore is the weighted textual similarity between the normalized query
// and one instrument.
func baseScore(qNorm string, inst types.Instrument) float64 {
	nname := NormText(inst.Name)
	ntick := TickerKey(inst.Ticker)
	qtick := TickerKey(qNorm)

	var exactName, startsName, contains, exactTicker, startsTick float64
	if nname == qNorm {
		exactName = 1
	}
	if strings.HasPrefix(nname, qNorm) {
		startsName = 1
	}
	if strings.Contains(nname, qNorm) {
		contains = 1
	}
	if ntick == qtick {
		exactTicker = 1
	}
	if strings.HasPrefix(strings.ReplaceAll(ntick, " ", ""), strings.ReplaceAll(qtick, " ", "")) {
		startsTick = 1
	}

	return weightExactName*exactName +
		weightExactTicker*exactTicker +
		weightNameStarts*startsName +
		weightTickerStart*startsTick +
		weightSimilarity*similarity(nname, qNorm) +
		weightJaccard*jaccard(qNorm, nname) +
		weightContains*contains
}

// domainBias adjusts a candidate's score using classification metadata:
// Nordic listings, equity instruments and (in bank mode) banking branches are
// favored; funds, indexes and blocklisted industries are penalized.
func domainBias(inst types.Instrument, dir Directory, forceNordic, bankMode bool) float64 {
	bonus := 0.0

	if nordicCountry(dir.CountryName(inst.CountryID)) {
		if forceNordic {
			bonus += biasNordicLocked
		} else {
			bonus += biasNordic
		}
	}

	itype := strings.ToLower(dir.InstrumentTypeName(inst.InstrumentType))
	switch {
	case itype == "" || strings.Contains(itype, "aktie") || strings.Contains(itype, "stock"):
		bonus += biasEquity
	case strings.Contains(itype, "etf") || strings.Contains(itype, "index"):
		bonus += biasFundLike
	}

	if bankMode {
		branch := strings.ToLower(dir.BranchName(inst.BranchID))
		sector := strings.ToLower(dir.SectorName(inst.SectorID))
		if strings.Contains(branch, "bank") {
			bonus += biasBankBranch
		}
		for _, kw := range sectorFinanceHints {
			if strings.Contains(sector, kw) {
				bonus += biasFinanceSect
			}
		}
		joined := branch + " " + sector
		for _, w := range blockWords {
			if strings.Contains(joined, w) {
				bonus += biasBlocklist
				break
			}
		}
	}

	return bonus
}
