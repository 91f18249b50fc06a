// Package espn reads game schedules, scores, and stat leaders from ESPN's
// public site API. Markets reference games only by team names and a close
// time, so lookup scans the scoreboard across a few neighboring days.
package espn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/calebrosario/pregame/internal/sports"
)

const (
	defaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports"
	userAgent      = "Mozilla/5.0 (compatible; pregame/1.0)"
	dateLayout     = "20060102"
)

// Scoreboard dates drift against market close times, so the exact day is
// tried first and then its neighbors.
var dayOffsets = []int{0, -1, 1, -2, 2}

var ErrGameNotFound = errors.New("espn: game not found")

// Client fetches from the ESPN site API. No credentials are required.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config provides optional overrides.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient builds a configured ESPN client.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Competitor is one side of a game.
type Competitor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Score        *int   `json:"score,omitempty"`
	Winner       bool   `json:"winner"`
}

// Status describes where a game stands.
type Status struct {
	Completed   bool   `json:"completed"`
	Description string `json:"description"`
	State       string `json:"state"`
}

// Leader is one team's top performer in a stat category.
type Leader struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Team     string `json:"team"`
	Athlete  string `json:"athlete"`
	Value    string `json:"value"`
}

// Game is one scheduled or played game.
type Game struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	ShortName string      `json:"short_name"`
	Date      time.Time   `json:"date"`
	Status    Status      `json:"status"`
	Away      *Competitor `json:"away,omitempty"`
	Home      *Competitor `json:"home,omitempty"`
	Winner    string      `json:"winner,omitempty"`
	Leaders   []Leader    `json:"leaders,omitempty"`
}

// Scoreboard fetches all games for one sport on one calendar day.
func (c *Client) Scoreboard(ctx context.Context, cfg *sports.Config, day time.Time) ([]Game, error) {
	u := fmt.Sprintf("%s/%s/%s/scoreboard?dates=%s",
		c.baseURL, cfg.ESPNSport, cfg.ESPNLeague, day.Format(dateLayout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var out scoreboardResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("fetch %s scoreboard for %s: %w", cfg.ESPNLeague, day.Format(dateLayout), err)
	}

	games := make([]Game, 0, len(out.Events))
	for _, we := range out.Events {
		games = append(games, we.toGame(cfg))
	}
	return games, nil
}

// Summary fetches the detail document for one game, including per-category
// stat leaders.
func (c *Client) Summary(ctx context.Context, cfg *sports.Config, gameID string) (*Game, error) {
	u := fmt.Sprintf("%s/%s/%s/summary?event=%s",
		c.baseURL, cfg.ESPNSport, cfg.ESPNLeague, url.QueryEscape(gameID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var out summaryResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("fetch %s summary for game %s: %w", cfg.ESPNLeague, gameID, err)
	}
	game := out.toGame(cfg)
	if game.ID == "" {
		game.ID = gameID
	}
	return &game, nil
}

// FindGame locates one matchup near a reference time, scanning the exact day
// first and then neighboring days. Transient scoreboard errors only narrow
// the scan window.
func (c *Client) FindGame(ctx context.Context, cfg *sports.Config, awayTeam, homeTeam string, around time.Time) (*Game, error) {
	if around.IsZero() {
		around = time.Now().UTC()
	}
	for _, offset := range dayOffsets {
		day := around.AddDate(0, 0, offset)
		games, err := c.Scoreboard(ctx, cfg, day)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		for i := range games {
			g := &games[i]
			if g.Away == nil || g.Home == nil {
				continue
			}
			if sports.NamesMatch(awayTeam, g.Away.Name) && sports.NamesMatch(homeTeam, g.Home.Name) {
				return g, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s at %s near %s", ErrGameNotFound, awayTeam, homeTeam, around.Format(dateLayout))
}

func (c *Client) do(req *http.Request, dst any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

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
		return fmt.Errorf("ESPN API %s: %s", resp.Status, string(body))
	}
}

type scoreboardResponse struct {
	Events []wireEvent `json:"events"`
}

type wireEvent struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	ShortName    string            `json:"shortName"`
	Date         string            `json:"date"`
	Status       wireStatus        `json:"status"`
	Competitions []wireCompetition `json:"competitions"`
}

type wireStatus struct {
	Type struct {
		Completed   bool   `json:"completed"`
		Description string `json:"description"`
		State       string `json:"state"`
	} `json:"type"`
}

type wireCompetition struct {
	Date        string           `json:"date"`
	Status      wireStatus       `json:"status"`
	Competitors []wireCompetitor `json:"competitors"`
}

type wireCompetitor struct {
	ID       string `json:"id"`
	HomeAway string `json:"homeAway"`
	Score    string `json:"score"`
	Winner   bool   `json:"winner"`
	Team     struct {
		DisplayName  string `json:"displayName"`
		Abbreviation string `json:"abbreviation"`
	} `json:"team"`
	Leaders []wireLeaderGroup `json:"leaders"`
}

type wireLeaderGroup struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Leaders     []struct {
		DisplayValue string `json:"displayValue"`
		Athlete      struct {
			DisplayName string `json:"displayName"`
		} `json:"athlete"`
	} `json:"leaders"`
}

type summaryResponse struct {
	Header struct {
		ID           string            `json:"id"`
		Competitions []wireCompetition `json:"competitions"`
	} `json:"header"`
	Leaders []struct {
		Team struct {
			DisplayName  string `json:"displayName"`
			Abbreviation string `json:"abbreviation"`
		} `json:"team"`
		Leaders []wireLeaderGroup `json:"leaders"`
	} `json:"leaders"`
}

func (we wireEvent) toGame(cfg *sports.Config) Game {
	g := Game{
		ID:        we.ID,
		Name:      we.Name,
		ShortName: we.ShortName,
		Date:      parseDate(we.Date),
		Status: Status{
			Completed:   we.Status.Type.Completed,
			Description: we.Status.Type.Description,
			State:       we.Status.Type.State,
		},
	}
	if len(we.Competitions) == 0 {
		return g
	}
	comp := we.Competitions[0]
	for _, wc := range comp.Competitors {
		side := wc.toCompetitor()
		switch wc.HomeAway {
		case "home":
			g.Home = side
		case "away":
			g.Away = side
		}
		for _, group := range wc.Leaders {
			if lead, ok := leaderFromGroup(cfg, group, wc.Team.Abbreviation); ok {
				g.Leaders = append(g.Leaders, lead)
			}
		}
	}
	g.Winner = winnerSide(g)
	return g
}

func (sr summaryResponse) toGame(cfg *sports.Config) Game {
	g := Game{ID: sr.Header.ID}
	if len(sr.Header.Competitions) > 0 {
		comp := sr.Header.Competitions[0]
		g.Date = parseDate(comp.Date)
		g.Status = Status{
			Completed:   comp.Status.Type.Completed,
			Description: comp.Status.Type.Description,
			State:       comp.Status.Type.State,
		}
		for _, wc := range comp.Competitors {
			side := wc.toCompetitor()
			switch wc.HomeAway {
			case "home":
				g.Home = side
			case "away":
				g.Away = side
			}
		}
	}
	if g.Away != nil && g.Home != nil {
		g.Name = g.Away.Name + " at " + g.Home.Name
		g.ShortName = g.Away.Abbreviation + " @ " + g.Home.Abbreviation
	}
	for _, tl := range sr.Leaders {
		team := tl.Team.Abbreviation
		if team == "" {
			team = tl.Team.DisplayName
		}
		for _, group := range tl.Leaders {
			if lead, ok := leaderFromGroup(cfg, group, team); ok {
				g.Leaders = append(g.Leaders, lead)
			}
		}
	}
	g.Winner = winnerSide(g)
	return g
}

func (wc wireCompetitor) toCompetitor() *Competitor {
	side := &Competitor{
		ID:           wc.ID,
		Name:         wc.Team.DisplayName,
		Abbreviation: wc.Team.Abbreviation,
		Winner:       wc.Winner,
	}
	if n, err := strconv.Atoi(wc.Score); err == nil {
		side.Score = &n
	}
	return side
}

// leaderFromGroup keeps the top performer of a group whose category the
// sport tracks. ESPN names categories with suffixes like "passingYards", so
// configured categories match by prefix.
func leaderFromGroup(cfg *sports.Config, group wireLeaderGroup, team string) (Leader, bool) {
	if len(group.Leaders) == 0 {
		return Leader{}, false
	}
	name := strings.ToLower(group.Name)
	for i, cat := range cfg.StatCategories {
		if !strings.HasPrefix(name, cat) {
			continue
		}
		return Leader{
			Category: cat,
			Label:    cfg.StatLabels[i],
			Team:     team,
			Athlete:  group.Leaders[0].Athlete.DisplayName,
			Value:    group.Leaders[0].DisplayValue,
		}, true
	}
	return Leader{}, false
}

func winnerSide(g Game) string {
	if !g.Status.Completed {
		return ""
	}
	switch {
	case g.Home != nil && g.Home.Winner:
		return "home"
	case g.Away != nil && g.Away.Winner:
		return "away"
	}
	return ""
}

// parseDate handles both full RFC 3339 and ESPN's minute-precision form
// ("2006-01-02T15:04Z").
func parseDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
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
