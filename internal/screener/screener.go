// Package screener filters the instrument universe by classification
// metadata names.
package screener

import (
	"context"
	"sort"
	"strings"

	"invest-assistant/internal/logger"
	"invest-assistant/internal/types"
)

// DefaultLimit caps results when the caller does not set one.
const DefaultLimit = 25

// Universe is the reference-data surface the screener reads. Satisfied by
// the borsdata cache.
type Universe interface {
	Universe() []types.Instrument
	CountryName(id int) string
	SectorName(id int) string
	BranchName(id int) string
	MarketName(id int) string
	InstrumentTypeName(id int) string
}

// Service screens the cached universe. All matching is case-insensitive
// substring matching on display names, so "finans" matches
// "Finans & Fastighet".
type Service struct {
	cache Universe
}

func New(cache Universe) *Service {
	return &Service{cache: cache}
}

// Screen returns up to limit instruments matching the filter, sorted by
// ticker for stable output. Empty filter fields match everything.
func (s *Service) Screen(ctx context.Context, filter types.ScreenerFilter, limit int) []types.ScreenerResult {
	if limit <= 0 {
		limit = DefaultLimit
	}

	matched := []types.ScreenerResult{}
	for _, inst := range s.cache.Universe() {
		country := s.cache.CountryName(inst.CountryID)
		sector := s.cache.SectorName(inst.SectorID)
		branch := s.cache.BranchName(inst.BranchID)
		market := s.cache.MarketName(inst.MarketID)
		itype := s.cache.InstrumentTypeName(inst.InstrumentType)

		if !matches(country, filter.Country) ||
			!matches(sector, filter.Sector) ||
			!matches(branch, filter.Branch) ||
			!matches(market, filter.Market) ||
			!matches(itype, filter.InstrumentType) {
			continue
		}

		matched = append(matched, types.ScreenerResult{
			Ticker:  inst.Ticker,
			Name:    inst.Name,
			Country: country,
			Sector:  sector,
			Branch:  branch,
		})
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Ticker < matched[j].Ticker })
	if len(matched) > limit {
		matched = matched[:limit]
	}

	logger.Info(ctx, "Screen completed", "matches", len(matched),
		"country", filter.Country, "sector", filter.Sector, "branch", filter.Branch)
	return matched
}

func matches(name, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(want))
}
