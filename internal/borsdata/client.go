// Package borsdata is the adapter for the Börsdata REST API: instrument
// universe, classification metadata, KPI history and last quotes. The API
// authenticates with an authKey query parameter on every request.
package borsdata

import (
	"context"
	"fmt"
	"time"

	"invest-assistant/internal/api"
	"invest-assistant/internal/types"
)

// DefaultBaseURL is the production Börsdata endpoint.
const DefaultBaseURL = "https://apiservice.borsdata.se/v1"

// Client wraps the raw REST endpoints. All methods are single requests with
// no retries; callers decide how to degrade on failure.
type Client struct {
	api *api.Client
}

// NewClient builds a Börsdata client. baseURL may be empty for production.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		api: api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithTimeout(timeout),
			api.WithQueryParam("authKey", apiKey),
			api.WithLogging(true),
		),
	}
}

type instrumentsResponse struct {
	Instruments []types.Instrument `json:"instruments"`
}

// Instruments fetches the Nordic instrument universe.
func (c *Client) Instruments(ctx context.Context) ([]types.Instrument, error) {
	return c.instruments(ctx, "/instruments")
}

// GlobalInstruments fetches the global instrument universe.
func (c *Client) GlobalInstruments(ctx context.Context) ([]types.Instrument, error) {
	return c.instruments(ctx, "/instruments/global")
}

func (c *Client) instruments(ctx context.Context, path string) ([]types.Instrument, error) {
	resp, err := c.api.GET(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetch instruments: %w", err)
	}
	var out instrumentsResponse
	if err := resp.ParseJSON(&out); err != nil {
		return nil, err
	}
	return out.Instruments, nil
}

type metaItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (c *Client) metadata(ctx context.Context, path, key string) (map[int]string, error) {
	resp, err := c.api.GET(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}
	var raw map[string][]metaItem
	if err := resp.ParseJSON(&raw); err != nil {
		return nil, err
	}
	out := make(map[int]string, len(raw[key]))
	for _, it := range raw[key] {
		out[it.ID] = it.Name
	}
	return out, nil
}

// Sectors fetches {sectorId: name}.
func (c *Client) Sectors(ctx context.Context) (map[int]string, error) {
	return c.metadata(ctx, "/sectors", "sectors")
}

// Countries fetches {countryId: name}. Names are Swedish ("Sverige").
func (c *Client) Countries(ctx context.Context) (map[int]string, error) {
	return c.metadata(ctx, "/countries", "countries")
}

// Markets fetches {marketId: name}.
func (c *Client) Markets(ctx context.Context) (map[int]string, error) {
	return c.metadata(ctx, "/markets", "markets")
}

// Branches fetches {branchId: name}.
func (c *Client) Branches(ctx context.Context) (map[int]string, error) {
	return c.metadata(ctx, "/branches", "branches")
}

// KPIMeta describes one KPI from the /kpis catalogue. Several name fields
// exist and any of them may carry the useful label.
type KPIMeta struct {
	KPIID     int    `json:"kpiId"`
	Name      string `json:"name"`
	EngName   string `json:"engName"`
	CalcName  string `json:"calcName"`
	ShortName string `json:"shortName"`
}

type kpiMetaResponse struct {
	KPIs []KPIMeta `json:"kpis"`
}

// KPIMetadata fetches the KPI catalogue used for id lookups by name.
func (c *Client) KPIMetadata(ctx context.Context) ([]KPIMeta, error) {
	resp, err := c.api.GET(ctx, "/kpis")
	if err != nil {
		return nil, fmt.Errorf("fetch kpi metadata: %w", err)
	}
	var out kpiMetaResponse
	if err := resp.ParseJSON(&out); err != nil {
		return nil, err
	}
	return out.KPIs, nil
}

// KPIPoint is one datapoint from a KPI history series.
type KPIPoint struct {
	Year   int      `json:"y"`
	Period int      `json:"p"`
	Value  *float64 `json:"v"`
}

type kpiHistoryResponse struct {
	Values []KPIPoint `json:"values"`
}

// KPIHistory fetches the mean-price history series for one KPI on one
// instrument. report is "year", "r12" or "quarter".
func (c *Client) KPIHistory(ctx context.Context, insID, kpiID int, report string) ([]KPIPoint, error) {
	path := fmt.Sprintf("/instruments/%d/kpis/%d/%s/mean/history", insID, kpiID, report)
	resp, err := c.api.GET(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetch kpi %d history: %w", kpiID, err)
	}
	var out kpiHistoryResponse
	if err := resp.ParseJSON(&out); err != nil {
		return nil, err
	}
	return out.Values, nil
}

// Quote is the last traded price for one instrument. MarketCap is not part
// of the last-price payload and stays nil.
type Quote struct {
	Price     *float64
	MarketCap *float64
	AsOf      string
}

// stockPriceRow tolerates the field-name variants the endpoint has used.
type stockPriceRow struct {
	I            *int     `json:"i"`
	InsID        *int     `json:"insId"`
	InstrumentID *int     `json:"instrumentId"`
	Price        *float64 `json:"price"`
	C            *float64 `json:"c"`
	Last         *float64 `json:"last"`
	Close        *float64 `json:"close"`
	D            string   `json:"d"`
	Date         string   `json:"date"`
}

func (r stockPriceRow) matches(insID int) bool {
	for _, id := range []*int{r.I, r.InsID, r.InstrumentID} {
		if id != nil && *id == insID {
			return true
		}
	}
	return false
}

func (r stockPriceRow) price() *float64 {
	for _, v := range []*float64{r.Price, r.C, r.Last, r.Close} {
		if v != nil {
			return v
		}
	}
	return nil
}

func (r stockPriceRow) date() string {
	if r.D != "" {
		return r.D
	}
	return r.Date
}

type stockPricesResponse struct {
	StockPricesList []stockPriceRow `json:"stockPricesList"`
}

// LastQuote fetches the last price for one instrument. The endpoint returns
// every instrument in one list, so the result is filtered client-side.
func (c *Client) LastQuote(ctx context.Context, insID int) (Quote, error) {
	resp, err := c.api.GET(ctx, "/instruments/stockprices/last")
	if err != nil {
		return Quote{}, fmt.Errorf("fetch last quotes: %w", err)
	}
	var out stockPricesResponse
	if err := resp.ParseJSON(&out); err != nil {
		return Quote{}, err
	}
	for _, row := range out.StockPricesList {
		if row.matches(insID) {
			return Quote{Price: row.price(), AsOf: row.date()}, nil
		}
	}
	return Quote{}, fmt.Errorf("no quote for instrument %d", insID)
}
