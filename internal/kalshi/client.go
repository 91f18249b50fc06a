package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/calebrosario/pregame/internal/markets"
)

const (
	defaultBaseURL = "https://api.elections.kalshi.com/trade-api/v2"

	pageSize = 200 // API limit
	maxPages = 25
)

// Client talks to the Kalshi Trade API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config provides optional overrides.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient builds a configured Kalshi API client.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// MarketsPage is one page of raw markets plus the cursor for the next page.
// An empty cursor means the listing is exhausted.
type MarketsPage struct {
	Markets []markets.RawMarket
	Cursor  string
}

// Markets fetches one page of markets for a series.
func (c *Client) Markets(ctx context.Context, series, status string, limit int, cursor string) (*MarketsPage, error) {
	if limit <= 0 || limit > pageSize {
		limit = pageSize
	}
	u, err := url.Parse(c.baseURL + "/markets")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("series_ticker", series)
	q.Set("limit", strconv.Itoa(limit))
	if status != "" {
		q.Set("status", status)
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	var out marketsResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("list markets for %s: %w", series, err)
	}

	page := &MarketsPage{Cursor: out.Cursor, Markets: make([]markets.RawMarket, 0, len(out.Markets))}
	for _, m := range out.Markets {
		page.Markets = append(page.Markets, m.toRaw())
	}
	return page, nil
}

// OpenMarkets drains every page of open markets for a series. The page cap
// bounds runaway cursors; game series fit well inside it.
func (c *Client) OpenMarkets(ctx context.Context, series string) ([]markets.RawMarket, error) {
	var all []markets.RawMarket
	cursor := ""
	for page := 0; page < maxPages; page++ {
		resp, err := c.Markets(ctx, series, "open", pageSize, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Markets...)
		cursor = resp.Cursor
		if cursor == "" {
			break
		}
	}
	return all, nil
}

// Candlestick is one bar of a market's price history. Prices are converted
// from cents to [0,1] and may be nil for bars with no trades.
type Candlestick struct {
	Time         time.Time `json:"time"`
	Open         *float64  `json:"open"`
	High         *float64  `json:"high"`
	Low          *float64  `json:"low"`
	Close        *float64  `json:"close"`
	Volume       float64   `json:"volume"`
	OpenInterest float64   `json:"open_interest"`
}

// Candlesticks fetches a market's price history at the given bar interval
// over the trailing lookback window.
func (c *Client) Candlesticks(ctx context.Context, series, ticker string, interval, lookback time.Duration) ([]Candlestick, error) {
	if interval < time.Minute {
		interval = time.Hour
	}
	if lookback <= 0 {
		lookback = 7 * 24 * time.Hour
	}
	end := time.Now()
	start := end.Add(-lookback)

	u, err := url.Parse(fmt.Sprintf("%s/series/%s/markets/%s/candlesticks", c.baseURL, series, ticker))
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("period_interval", strconv.Itoa(int(interval.Minutes())))
	q.Set("start_ts", strconv.FormatInt(start.Unix(), 10))
	q.Set("end_ts", strconv.FormatInt(end.Unix(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	var out candlesticksResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("candlesticks for %s: %w", ticker, err)
	}

	bars := make([]Candlestick, 0, len(out.Candlesticks))
	for _, cs := range out.Candlesticks {
		bars = append(bars, Candlestick{
			Time:         time.Unix(cs.EndPeriodTS, 0).UTC(),
			Open:         centsToProb(cs.Price.Open),
			High:         centsToProb(cs.Price.High),
			Low:          centsToProb(cs.Price.Low),
			Close:        centsToProb(cs.Price.Close),
			Volume:       cs.Volume,
			OpenInterest: cs.OpenInterest,
		})
	}
	return bars, nil
}

// Level is one resting order level, price in [0,1].
type Level struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// Orderbook is the resting depth for both sides of a market.
type Orderbook struct {
	Yes []Level `json:"yes"`
	No  []Level `json:"no"`
}

// OrderbookForMarket fetches resting depth for one market ticker.
func (c *Client) OrderbookForMarket(ctx context.Context, ticker string, depth int) (*Orderbook, error) {
	if depth <= 0 {
		depth = 10
	}
	u := fmt.Sprintf("%s/markets/%s/orderbook?depth=%d", c.baseURL, ticker, depth)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var out orderbookResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("orderbook for %s: %w", ticker, err)
	}
	return &Orderbook{
		Yes: convertLevels(out.Orderbook.Yes),
		No:  convertLevels(out.Orderbook.No),
	}, nil
}

func (c *Client) do(req *http.Request, dst any) error {
	var attempt int
	for {
		attempt++
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if shouldRetry(attempt, 0) {
				sleep(attempt)
				continue
			}
			return err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			defer resp.Body.Close()
			return json.NewDecoder(resp.Body).Decode(dst)
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()

		if shouldRetry(attempt, resp.StatusCode) {
			sleep(attempt)
			continue
		}
		return fmt.Errorf("kalshi API %s: %s", resp.Status, string(body))
	}
}

func centsToProb(v *float64) *float64 {
	if v == nil {
		return nil
	}
	p := *v / 100.0
	return &p
}

func convertLevels(levels [][]float64) []Level {
	out := make([]Level, 0, len(levels))
	for _, lvl := range levels {
		if len(lvl) < 2 {
			continue
		}
		out = append(out, Level{
			Price:    lvl[0] / 100.0,
			Quantity: lvl[1],
		})
	}
	return out
}

type marketsResponse struct {
	Markets []wireMarket `json:"markets"`
	Cursor  string       `json:"cursor"`
}

type wireMarket struct {
	Ticker       string   `json:"ticker"`
	EventTicker  string   `json:"event_ticker"`
	Title        string   `json:"title"`
	Subtitle     string   `json:"subtitle"`
	YesSubTitle  string   `json:"yes_sub_title"`
	Status       string   `json:"status"`
	YesBid       *float64 `json:"yes_bid"`
	YesAsk       *float64 `json:"yes_ask"`
	LastPrice    *float64 `json:"last_price"`
	Volume       *float64 `json:"volume"`
	Volume24h    *float64 `json:"volume_24h"`
	Liquidity    *float64 `json:"liquidity"`
	OpenInterest *float64 `json:"open_interest"`
	CloseTime    string   `json:"close_time"`
}

// toRaw converts the wire record to the pipeline's input shape. The legacy
// yes_sub_title field backfills the subtitle when the newer one is empty.
func (m wireMarket) toRaw() markets.RawMarket {
	raw := markets.RawMarket{
		Ticker:       m.Ticker,
		EventTicker:  m.EventTicker,
		Title:        m.Title,
		Subtitle:     m.Subtitle,
		Status:       m.Status,
		YesBid:       m.YesBid,
		YesAsk:       m.YesAsk,
		LastPrice:    m.LastPrice,
		Volume:       m.Volume,
		Volume24h:    m.Volume24h,
		Liquidity:    m.Liquidity,
		OpenInterest: m.OpenInterest,
	}
	if raw.Subtitle == "" {
		raw.Subtitle = m.YesSubTitle
	}
	if m.YesBid != nil && m.YesAsk != nil {
		mid := (*m.YesBid + *m.YesAsk) / 2
		raw.Midpoint = &mid
	}
	if m.CloseTime != "" {
		if ts, err := time.Parse(time.RFC3339, m.CloseTime); err == nil {
			raw.CloseTime = ts
		}
	}
	return raw
}

type candlesticksResponse struct {
	Candlesticks []wireCandle `json:"candlesticks"`
}

type wireCandle struct {
	EndPeriodTS  int64     `json:"end_period_ts"`
	Price        wirePrice `json:"price"`
	Volume       float64   `json:"volume"`
	OpenInterest float64   `json:"open_interest"`
}

type wirePrice struct {
	Open  *float64 `json:"open"`
	High  *float64 `json:"high"`
	Low   *float64 `json:"low"`
	Close *float64 `json:"close"`
}

type orderbookResponse struct {
	Orderbook wireBook `json:"orderbook"`
}

type wireBook struct {
	Yes [][]float64 `json:"yes"`
	No  [][]float64 `json:"no"`
}

func shouldRetry(attempt int, status int) bool {
	if attempt >= 5 {
		return false
	}
	if status == 0 {
		return true
	}
	if status == http.StatusTooManyRequests || status >= 500 {
		return true
	}
	return false
}

func sleep(attempt int) {
	backoff := time.Duration(1<<uint(attempt-1)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	time.Sleep(backoff)
}
