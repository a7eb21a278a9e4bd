package borsdata

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"invest-assistant/internal/trace"
	"invest-assistant/internal/types"
)

// Fixed KPI ids from the Börsdata catalogue.
const (
	kpiPE            = 2
	kpiEVEBIT        = 10
	kpiEVSales       = 15
	kpiGrossMargin   = 28
	kpiEbitMargin    = 29
	kpiROIC          = 37
	kpiNetDebtEbitda = 42
	kpiRevenue       = 53
	kpiEBIT          = 55
)

// Name candidates for KPIs whose ids are not stable across the catalogue.
// Swedish labels included because the catalogue mixes languages.
var (
	interestCoverageNames  = []string{"Interest Coverage", "InterestCoverage", "Ränte", "Räntetäckningsgrad"}
	payoutRatioNames       = []string{"Payout Ratio", "PayoutRatio", "Utdelningsandel"}
	dividendStabilityNames = []string{"Dividend Stability Years", "DividendStabilityYears", "Utdelningsstabilitet"}
)

// seriesSource is the subset of Client the provider reads.
type seriesSource interface {
	KPIHistory(ctx context.Context, insID, kpiID int, report string) ([]KPIPoint, error)
	LastQuote(ctx context.Context, insID int) (Quote, error)
}

// catalogue is the subset of Cache the provider reads.
type catalogue interface {
	InstrumentByTicker(ticker string) (types.Instrument, bool)
	KPIIDByNames(candidates ...string) (int, bool)
}

// Provider assembles a metrics snapshot per ticker from KPI histories and the
// last quote. Every metric is independently optional: a failed or empty
// series leaves its field nil and never fails the snapshot.
type Provider struct {
	src seriesSource
	cat catalogue

	// Audit, when set, receives a provenance record per snapshot. Assign it
	// before the first Snapshot call and leave it alone after.
	Audit func(context.Context, types.ToolCall)
}

// NewProvider wires a provider over the shared client and warmed cache.
func NewProvider(client *Client, cache *Cache) *Provider {
	return &Provider{src: client, cat: cache}
}

// Snapshot implements interfaces.MetricsProvider. It fails only when the
// ticker is not in the universe.
func (p *Provider) Snapshot(ctx context.Context, ticker string) (types.Metrics, error) {
	ctx, span := trace.StartSpan(ctx, "metrics-snapshot")
	defer span.End()

	inst, ok := p.cat.InstrumentByTicker(ticker)
	if !ok {
		return types.Metrics{}, fmt.Errorf("unknown ticker %q", ticker)
	}

	var m types.Metrics

	type fixed struct {
		dst   **float64
		kpiID int
	}
	var firstYear int
	for _, fx := range []fixed{
		{&m.PE, kpiPE},
		{&m.EVEBIT, kpiEVEBIT},
		{&m.EVSales, kpiEVSales},
		{&m.ROIC, kpiROIC},
		{&m.GrossMargin, kpiGrossMargin},
		{&m.EbitMargin, kpiEbitMargin},
		{&m.NetDebtEbitda, kpiNetDebtEbitda},
	} {
		v, year := p.latestValue(ctx, inst.ID, fx.kpiID, "r12", "year")
		*fx.dst = v
		if firstYear == 0 && v != nil {
			firstYear = year
		}
	}
	m.Year = firstYear

	m.RevenueCAGR5Y = p.cagr5(ctx, inst.ID, kpiRevenue)
	m.EbitCAGR5Y = p.cagr5(ctx, inst.ID, kpiEBIT)

	m.InterestCoverage = p.dynamicValue(ctx, inst.ID, interestCoverageNames)
	m.PayoutRatio = p.dynamicValue(ctx, inst.ID, payoutRatioNames)
	m.DividendStabilityYears = p.dynamicValue(ctx, inst.ID, dividendStabilityNames)

	if m.RevenueCAGR5Y != nil && m.EbitMargin != nil {
		r40 := *m.RevenueCAGR5Y + *m.EbitMargin
		m.RuleOf40 = &r40
	}

	if q, err := p.src.LastQuote(ctx, inst.ID); err == nil {
		m.Price = q.Price
		m.MarketCap = q.MarketCap
		m.AsOf = q.AsOf
	}

	if p.Audit != nil {
		p.Audit(ctx, types.ToolCall{
			Name:          "fetch_metrics",
			Arguments:     map[string]any{"ticker": ticker, "insId": inst.ID},
			OutputPreview: fmt.Sprintf("year=%d", m.Year),
			TimestampUTC:  time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	return m, nil
}

// latestValue walks the report types in order and returns the newest non-nil
// datapoint of the first series that has one.
func (p *Provider) latestValue(ctx context.Context, insID, kpiID int, reports ...string) (*float64, int) {
	for _, report := range reports {
		pts, err := p.src.KPIHistory(ctx, insID, kpiID, report)
		if err != nil || len(pts) == 0 {
			continue
		}
		sort.SliceStable(pts, func(i, j int) bool {
			if pts[i].Year != pts[j].Year {
				return pts[i].Year < pts[j].Year
			}
			return pts[i].Period < pts[j].Period
		})
		last := pts[len(pts)-1]
		if last.Value != nil {
			return last.Value, last.Year
		}
	}
	return nil, 0
}

// cagr5 computes the five-year compound annual growth rate in percent from
// the yearly series. Requires six datapoints and positive endpoints.
func (p *Provider) cagr5(ctx context.Context, insID, kpiID int) *float64 {
	pts, err := p.src.KPIHistory(ctx, insID, kpiID, "year")
	if err != nil {
		return nil
	}
	type yv struct {
		year  int
		value float64
	}
	series := make([]yv, 0, len(pts))
	for _, pt := range pts {
		if pt.Value != nil {
			series = append(series, yv{year: pt.Year, value: *pt.Value})
		}
	}
	sort.Slice(series, func(i, j int) bool { return series[i].year > series[j].year })

	const years = 5
	if len(series) < years+1 {
		return nil
	}
	last, first := series[0].value, series[years].value
	if first <= 0 || last <= 0 {
		return nil
	}
	cagr := 100.0 * (math.Pow(last/first, 1.0/years) - 1)
	return &cagr
}

// dynamicValue resolves a KPI id from the catalogue by name and returns its
// latest value, yearly series first.
func (p *Provider) dynamicValue(ctx context.Context, insID int, names []string) *float64 {
	kpiID, ok := p.cat.KPIIDByNames(names...)
	if !ok {
		return nil
	}
	v, _ := p.latestValue(ctx, insID, kpiID, "year", "r12")
	return v
}
