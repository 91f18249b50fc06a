// Package oddsfeed fetches sportsbook moneyline odds for upcoming games
// from the SportsGameOdds API and flattens them into quote sets for the
// consensus aggregator.
package oddsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/calebrosario/pregame/internal/odds"
	"github.com/calebrosario/pregame/internal/sports"
)

const (
	defaultBaseURL = "https://api.sportsgameodds.com/v2"
	defaultWindow  = 14 * 24 * time.Hour
	eventLimit     = 100
)

// Client talks to the odds aggregation API. Without an API key every fetch
// returns ErrNoAPIKey and callers degrade to market-only views.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config provides optional overrides.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient builds a configured odds-feed client.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

var ErrNoAPIKey = fmt.Errorf("oddsfeed: no api key configured")

// Enabled reports whether the client has credentials to call the API.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// TeamNames carries the three name forms the feed publishes per team.
type TeamNames struct {
	Short  string `json:"short"`
	Medium string `json:"medium"`
	Long   string `json:"long"`
}

func (t TeamNames) all() []string {
	return []string{t.Short, t.Medium, t.Long}
}

// Moneyline is one bookmaker's two-sided line. A zero side means the book
// published no usable price; the aggregator rejects it downstream.
type Moneyline struct {
	Away int `json:"away"`
	Home int `json:"home"`
}

// Event is one upcoming game with per-bookmaker moneylines.
type Event struct {
	EventID string               `json:"event_id"`
	Away    TeamNames            `json:"away"`
	Home    TeamNames            `json:"home"`
	Books   map[string]Moneyline `json:"books"`
}

// Events fetches upcoming games with odds for one sport inside the trailing
// scheduling window.
func (c *Client) Events(ctx context.Context, sportID string, window time.Duration) ([]Event, error) {
	if !c.Enabled() {
		return nil, ErrNoAPIKey
	}
	if window <= 0 {
		window = defaultWindow
	}
	now := time.Now().UTC().Truncate(time.Second)

	u, err := url.Parse(c.baseURL + "/events/")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("sportID", sportID)
	q.Set("oddsAvailable", "true")
	q.Set("startsAfter", now.Format(time.RFC3339))
	q.Set("startsBefore", now.Add(window).Format(time.RFC3339))
	q.Set("limit", strconv.Itoa(eventLimit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	var out eventsResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("list odds events for %s: %w", sportID, err)
	}
	if !out.Success {
		return nil, fmt.Errorf("odds API reported failure for %s", sportID)
	}

	events := make([]Event, 0, len(out.Data))
	for _, we := range out.Data {
		events = append(events, we.toEvent())
	}
	return events, nil
}

// FindGame locates the event for one matchup by team names, using the same
// lenient matching as the rest of the system (containment, nicknames).
func FindGame(events []Event, awayTeam, homeTeam string) *Event {
	for i := range events {
		e := &events[i]
		if matchesAny(awayTeam, e.Away.all()) && matchesAny(homeTeam, e.Home.all()) {
			return e
		}
	}
	return nil
}

func matchesAny(team string, names []string) bool {
	for _, n := range names {
		if n != "" && sports.NamesMatch(team, n) {
			return true
		}
	}
	return false
}

// Quotes flattens the event's per-book moneylines into aggregator quotes,
// labeling sides with the caller's canonical team names so consensus output
// lines up with the market matchup. Books appear in sorted id order so the
// quote list is stable across fetches.
func (e *Event) Quotes(awayTeam, homeTeam string) []odds.Quote {
	if e == nil || len(e.Books) == 0 {
		return nil
	}
	ids := make([]string, 0, len(e.Books))
	for id := range e.Books {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	quotes := make([]odds.Quote, 0, len(ids)*2)
	for _, id := range ids {
		ml := e.Books[id]
		name := bookmakerName(id)
		quotes = append(quotes,
			odds.Quote{Bookmaker: name, Team: awayTeam, Price: ml.Away},
			odds.Quote{Bookmaker: name, Team: homeTeam, Price: ml.Home},
		)
	}
	return quotes
}

// bookmakerName turns a feed id like "draftkings" or "bet_mgm" into a
// display name.
func bookmakerName(id string) string {
	words := strings.Fields(strings.ReplaceAll(id, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
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
		return fmt.Errorf("odds API %s: %s", resp.Status, string(body))
	}
}

type eventsResponse struct {
	Success bool        `json:"success"`
	Data    []wireEvent `json:"data"`
}

type wireEvent struct {
	EventID string `json:"eventID"`
	Teams   struct {
		Away wireTeam `json:"away"`
		Home wireTeam `json:"home"`
	} `json:"teams"`
	Odds struct {
		ByBookmaker map[string]wireBook `json:"byBookmaker"`
	} `json:"odds"`
}

type wireTeam struct {
	Names TeamNames `json:"names"`
}

type wireBook struct {
	Moneyline *wireMoneyline `json:"moneyline"`
}

type wireMoneyline struct {
	Away *float64 `json:"away"`
	Home *float64 `json:"home"`
}

func (we wireEvent) toEvent() Event {
	e := Event{
		EventID: we.EventID,
		Away:    we.Teams.Away.Names,
		Home:    we.Teams.Home.Names,
		Books:   make(map[string]Moneyline),
	}
	for id, book := range we.Odds.ByBookmaker {
		if book.Moneyline == nil {
			continue
		}
		ml := Moneyline{}
		if book.Moneyline.Away != nil {
			ml.Away = int(*book.Moneyline.Away)
		}
		if book.Moneyline.Home != nil {
			ml.Home = int(*book.Moneyline.Home)
		}
		if ml.Away == 0 && ml.Home == 0 {
			continue
		}
		e.Books[id] = ml
	}
	return e
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
