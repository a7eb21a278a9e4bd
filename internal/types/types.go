package types

// Instrument is one tradable security from the Börsdata reference universe.
// Reference data only; never mutated after fetch.
type Instrument struct {
	ID             int    `json:"insId"`
	Name           string `json:"name"`
	Ticker         string `json:"ticker"`
	InstrumentType int    `json:"instrument"`
	ISIN           string `json:"isin,omitempty"`
	SectorID       int    `json:"sectorId"`
	CountryID      int    `json:"countryId"`
	MarketID       int    `json:"marketId"`
	BranchID       int    `json:"branchId"`
	PriceCurrency  string `json:"stockPriceCurrency,omitempty"`
	ReportCurrency string `json:"reportCurrency,omitempty"`
}

// Resolution is the outcome of mapping free text to one instrument.
// Ticker is always upper-case and whitespace-normalized, and never empty.
type Resolution struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Strategy string `json:"strategy"` // alias, ticker, rerank, fallback, best_effort
}

// RankChoice is an external ranker's pick from a shortlist.
type RankChoice struct {
	Ticker     string  `json:"ticker"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Why        string  `json:"why,omitempty"`
}

// Metrics is a snapshot of financial ratios for one instrument as of one
// reporting date. Every field is independently optional; nil means the
// underlying source had no value.
type Metrics struct {
	AsOf                   string   `json:"as_of,omitempty"`
	Year                   int      `json:"year"`
	Price                  *float64 `json:"price,omitempty"`
	MarketCap              *float64 `json:"market_cap,omitempty"`
	PE                     *float64 `json:"pe,omitempty"`
	EVEBIT                 *float64 `json:"ev_ebit,omitempty"`
	EVSales                *float64 `json:"ev_sales,omitempty"`
	ROIC                   *float64 `json:"roic,omitempty"`
	EbitMargin             *float64 `json:"ebit_margin,omitempty"`
	GrossMargin            *float64 `json:"gross_margin,omitempty"`
	RevenueCAGR5Y          *float64 `json:"revenue_cagr_5y,omitempty"`
	EbitCAGR5Y             *float64 `json:"ebit_cagr_5y,omitempty"`
	NetDebtEbitda          *float64 `json:"net_debt_ebitda,omitempty"`
	InterestCoverage       *float64 `json:"interest_coverage,omitempty"`
	PayoutRatio            *float64 `json:"payout_ratio,omitempty"`
	DividendStabilityYears *float64 `json:"dividend_stability_years,omitempty"`
	RuleOf40               *float64 `json:"rule_of_40,omitempty"`
}

// ScoreItem is one metric evaluated against one configured rule.
// Passed is tri-state: nil means the value or the threshold was missing.
type ScoreItem struct {
	Metric string   `json:"metric"`
	Value  *float64 `json:"value,omitempty"`
	Rule   string   `json:"rule,omitempty"` // formatted, e.g. "<= 15", empty if unconfigured
	Passed *bool    `json:"passed,omitempty"`
}

// Scorecard groups evaluated items per category plus the aggregate outcome.
type Scorecard struct {
	Valuation   []ScoreItem `json:"valuation"`
	Quality     []ScoreItem `json:"quality"`
	Growth      []ScoreItem `json:"growth"`
	Health      []ScoreItem `json:"health"`
	Dividend    []ScoreItem `json:"dividend"`
	Signals     []ScoreItem `json:"signals"`
	OverallPass bool        `json:"overall_pass"`
}

// Verdict labels.
const (
	VerdictBuy   = "BUY"
	VerdictHold  = "HOLD"
	VerdictAvoid = "AVOID"
)

// ToolCall is a provenance record of one collaborator invocation. Audit
// metadata only; never feeds back into analysis logic.
type ToolCall struct {
	Name          string         `json:"name"`
	Arguments     map[string]any `json:"arguments,omitempty"`
	OutputPreview string         `json:"output_preview,omitempty"`
	TimestampUTC  string         `json:"timestamp_utc,omitempty"`
}

// AnalyzeResponse is the full result of a single-company analysis.
type AnalyzeResponse struct {
	Ticker    string     `json:"ticker"`
	Name      string     `json:"name"`
	Market    string     `json:"market,omitempty"`
	Sector    string     `json:"sector,omitempty"`
	Branch    string     `json:"branch,omitempty"`
	Snapshot  Metrics    `json:"snapshot"`
	Scores    Scorecard  `json:"scorecard"`
	Verdict   string     `json:"verdict"`
	Thesis    string     `json:"thesis"`
	Risks     []string   `json:"risks,omitempty"`
	Catalysts []string   `json:"catalysts,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Intent classification results for routing a user prompt.
const (
	IntentScreening     = "screening"
	IntentStockAnalysis = "single_stock_analysis"
	IntentPortfolio     = "portfolio_analysis"
	IntentGeneralAdvice = "general_investment_advice"
	IntentNone          = "none"
)

type IntentClassification struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// ScreenerFilter selects instruments by metadata names, all optional.
type ScreenerFilter struct {
	Country        string
	Sector         string
	Branch         string
	Market         string
	InstrumentType string
}

// ScreenerResult is one matching instrument with resolved metadata names.
type ScreenerResult struct {
	Ticker  string `json:"ticker"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
	Sector  string `json:"sector,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

// NewsArticle is one scraped headline with optional body text.
type NewsArticle struct {
	Source      string `json:"source"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Content     string `json:"content,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

// NewsBrief is the LLM distillation of recent coverage for one company.
type NewsBrief struct {
	Ticker       string   `json:"ticker"`
	Risks        []string `json:"risks,omitempty"`
	Catalysts    []string `json:"catalysts,omitempty"`
	ArticleCount int      `json:"article_count"`
	Timestamp    int64    `json:"timestamp"`
}
