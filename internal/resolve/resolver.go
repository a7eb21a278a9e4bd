// Package resolve maps free-text company queries to one canonical
// (ticker, name) pair from the instrument universe. Resolution never fails:
// it degrades from alias and exact-ticker hits through heuristic scoring and
// optional external re-ranking down to a best-effort echo of the query.
package resolve

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"invest-assistant/internal/interfaces"
	"invest-assistant/internal/logger"
	"invest-assistant/internal/trace"
	"invest-assistant/internal/types"
)

// Resolution strategies recorded on the result.
const (
	StrategyAlias      = "alias"
	StrategyTicker     = "ticker"
	StrategyRerank     = "rerank"
	StrategyFallback   = "fallback"
	StrategyBestEffort = "best_effort"
)

var reScandChars = regexp.MustCompile(`[åäöÅÄÖ]`)

// Options tune the resolver; zero values fall back to the defaults used by
// the production config.
type Options struct {
	ShortlistSize int
	ConfidenceMin float64
	Aliases       map[string]string // merged over the built-in table
}

// Resolver holds the instrument universe and collaborators for one session.
// Safe for concurrent use once wired; all state is read-only after setup.
type Resolver struct {
	universe      []types.Instrument
	dir           Directory
	ranker        interfaces.Ranker
	aliases       map[string]string
	shortlistSize int
	confidenceMin float64

	// Audit, when set, receives a provenance record per invocation.
	// Metadata only; never part of the resolution contract. Assign it
	// before the first Resolve call and leave it alone after.
	Audit func(context.Context, types.ToolCall)
}

// New builds a Resolver over the given universe. ranker may be nil, in which
// case the deterministic chain runs alone.
func New(universe []types.Instrument, dir Directory, ranker interfaces.Ranker, opts Options) *Resolver {
	aliases := make(map[string]string, len(builtinAliases)+len(opts.Aliases))
	for k, v := range builtinAliases {
		aliases[strings.ToLower(k)] = v
	}
	for k, v := range opts.Aliases {
		aliases[strings.ToLower(k)] = v
	}
	if opts.ShortlistSize <= 0 {
		opts.ShortlistSize = 50
	}
	if opts.ConfidenceMin <= 0 {
		opts.ConfidenceMin = 0.60
	}
	return &Resolver{
		universe:      universe,
		dir:           dir,
		ranker:        ranker,
		aliases:       aliases,
		shortlistSize: opts.ShortlistSize,
		confidenceMin: opts.ConfidenceMin,
	}
}

type candidate struct {
	inst  types.Instrument
	score float64
}

// Resolve maps query to exactly one instrument. It never returns an error
// and never returns an empty ticker.
func (r *Resolver) Resolve(ctx context.Context, query string) types.Resolution {
	ctx, span := trace.StartSpan(ctx, "resolve-ticker")
	defer span.End()

	res := r.resolve(ctx, query)

	logger.Resolution(ctx, query, res.Ticker, res.Name, res.Strategy)
	if r.Audit != nil {
		r.Audit(ctx, types.ToolCall{
			Name:          "resolve_ticker",
			Arguments:     map[string]any{"query": query},
			OutputPreview: res.Ticker + " | " + res.Name,
			TimestampUTC:  time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	return res
}

func (r *Resolver) resolve(ctx context.Context, query string) types.Resolution {
	if len(r.universe) == 0 {
		return bestEffort(query)
	}

	qNorm := NormText(query)
	qTokens := Tokens(query)
	keyToks := KeyTokens(qTokens)
	bankMode := isBankQuery(qTokens)

	// Alias fast-path.
	if alias, ok := r.aliases[strings.ToLower(qNorm)]; ok {
		if inst, ok := r.byTicker(alias); ok {
			return resolution(inst, StrategyAlias)
		}
	}

	// Exact ticker.
	if inst, ok := r.byTicker(qNorm); ok {
		return resolution(inst, StrategyTicker)
	}

	// Region lock: Scandinavian characters or demonym tokens restrict the
	// pool to Nordic listings. Fails open when that would empty the pool.
	forceNordic := reScandChars.MatchString(query) || hasDemonym(qTokens)
	pool := r.universe
	if forceNordic {
		nordic := make([]types.Instrument, 0, len(pool))
		for _, inst := range pool {
			if nordicCountry(r.dir.CountryName(inst.CountryID)) {
				nordic = append(nordic, inst)
			}
		}
		if len(nordic) > 0 {
			pool = nordic
		}
	}

	// Strict prefilter: all key tokens must appear in the name. Fails open.
	if len(keyToks) > 0 {
		strict := make([]types.Instrument, 0, len(pool))
		for _, inst := range pool {
			if allTokensInName(keyToks, inst.Name) {
				strict = append(strict, inst)
			}
		}
		if len(strict) > 0 {
			pool = strict
		}
	}

	// Score and shortlist.
	scored := make([]candidate, 0, len(pool))
	for _, inst := range pool {
		s := baseScore(qNorm, inst) + domainBias(inst, r.dir, forceNordic, bankMode)
		if s > 0 {
			scored = append(scored, candidate{inst: inst, score: s})
		}
	}
	if len(scored) == 0 {
		return bestEffort(query)
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > r.shortlistSize {
		scored = scored[:r.shortlistSize]
	}
	shortlist := make([]types.Instrument, len(scored))
	for i, c := range scored {
		shortlist[i] = c.inst
	}

	// External re-rank, best-effort: failures and out-of-shortlist picks are
	// "no opinion".
	if r.ranker != nil {
		if pick, err := r.ranker.Rank(ctx, query, keyToks, bankMode, shortlist); err == nil {
			if pick.Confidence >= r.confidenceMin {
				if inst, ok := findTicker(shortlist, pick.Ticker); ok && r.validChoice(inst, keyToks, bankMode) {
					return resolution(inst, StrategyRerank)
				}
			}
		}
	}

	// Deterministic fallback: first shortlist entry passing validation.
	for _, inst := range shortlist {
		if r.validChoice(inst, keyToks, bankMode) {
			return resolution(inst, StrategyFallback)
		}
	}

	// Last resort: top-scored candidate regardless of validation.
	return resolution(shortlist[0], StrategyBestEffort)
}

// validChoice accepts a candidate when all key tokens appear in its name, or
// when bank mode is active and its branch/sector matches the bank/finance
// hints. Blocklisted industries are rejected in bank mode either way.
func (r *Resolver) validChoice(inst types.Instrument, keyToks []string, bankMode bool) bool {
	if len(keyToks) > 0 && !allTokensInName(keyToks, inst.Name) {
		if !bankMode || !r.bankHints(inst) {
			return false
		}
	}
	if bankMode && r.blocked(inst) {
		return false
	}
	return true
}

func (r *Resolver) bankHints(inst types.Instrument) bool {
	branch := strings.ToLower(r.dir.BranchName(inst.BranchID))
	if strings.Contains(branch, "bank") {
		return true
	}
	sector := strings.ToLower(r.dir.SectorName(inst.SectorID))
	for _, kw := range sectorFinanceHints {
		if strings.Contains(sector, kw) {
			return true
		}
	}
	return false
}

func (r *Resolver) blocked(inst types.Instrument) bool {
	joined := strings.ToLower(r.dir.BranchName(inst.BranchID)) + " " + strings.ToLower(r.dir.SectorName(inst.SectorID))
	for _, w := range blockWords {
		if strings.Contains(joined, w) {
			return true
		}
	}
	return false
}

func (r *Resolver) byTicker(key string) (types.Instrument, bool) {
	return findTicker(r.universe, key)
}

func findTicker(pool []types.Instrument, key string) (types.Instrument, bool) {
	want := TickerKey(key)
	if want == "" {
		return types.Instrument{}, false
	}
	for _, inst := range pool {
		if TickerKey(inst.Ticker) == want {
			return inst, true
		}
	}
	return types.Instrument{}, false
}

func isBankQuery(tokens []string) bool {
	for _, t := range tokens {
		if t == "bank" || bankAliasTokens[t] {
			return true
		}
	}
	return false
}

func hasDemonym(tokens []string) bool {
	for _, t := range tokens {
		if demonymTokens[t] {
			return true
		}
	}
	return false
}

func resolution(inst types.Instrument, strategy string) types.Resolution {
	ticker := TickerKey(inst.Ticker)
	name := inst.Name
	if name == "" {
		name = ticker
	}
	return types.Resolution{
		Ticker:   ticker,
		Name:     name,
		Strategy: strategy,
	}
}

// bestEffort echoes the query as a ticker guess. Callers recognize the
// strategy as a no-match signal.
func bestEffort(query string) types.Resolution {
	q := strings.TrimSpace(query)
	return types.Resolution{
		Ticker:   TickerKey(q),
		Name:     q,
		Strategy: StrategyBestEffort,
	}
}
