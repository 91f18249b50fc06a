// Package storage persists user sessions, tracked games, and predictions.
// Two backends implement Store: SQLite for single-node deployments and
// Postgres for shared ones.
package storage

import (
	"context"
	"time"
)

// Session is one anonymous browser session.
type Session struct {
	ID               int64     `json:"id"`
	SessionID        string    `json:"session_id"`
	CreatedAt        time.Time `json:"created_at"`
	LastActive       time.Time `json:"last_active"`
	TotalPredictions int       `json:"total_predictions"`
}

// Game is one tracked matchup, keyed by its market event ticker. Outcome
// fields stay empty until the settlement worker fills them.
type Game struct {
	ID          int64      `json:"id"`
	EventTicker string     `json:"event_ticker"`
	Sport       string     `json:"sport"`
	HomeTeam    string     `json:"home_team"`
	AwayTeam    string     `json:"away_team"`
	GameDate    *time.Time `json:"game_date,omitempty"`
	CloseDate   *time.Time `json:"close_date,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	Winner      string     `json:"winner,omitempty"`
	HomeScore   *int       `json:"home_score,omitempty"`
	AwayScore   *int       `json:"away_score,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Prediction is one user's pick for one game, with the market context
// captured at prediction time.
type Prediction struct {
	ID                  int64     `json:"id"`
	SessionID           int64     `json:"-"`
	GameID              int64     `json:"-"`
	PredictedWinner     string    `json:"predicted_winner"`
	Confidence          float64   `json:"confidence"`
	MarketProbability   *float64  `json:"market_probability,omitempty"`
	SportsbookConsensus *float64  `json:"sportsbook_consensus,omitempty"`
	IsCorrect           *bool     `json:"is_correct,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// PredictionInput carries everything needed to record a pick. Saving is an
// upsert: a second pick for the same session and game replaces the first.
type PredictionInput struct {
	SessionID           string
	Game                Game
	PredictedWinner     string
	Confidence          float64
	MarketProbability   *float64
	SportsbookConsensus *float64
}

// PredictionWithGame joins a prediction to its game for listing.
type PredictionWithGame struct {
	Prediction Prediction `json:"prediction"`
	Game       Game       `json:"game"`
}

// Consensus summarizes the community's picks for one game.
type Consensus struct {
	TotalPredictions  int     `json:"total_predictions"`
	HomeTeam          string  `json:"home_team"`
	AwayTeam          string  `json:"away_team"`
	HomeCount         int     `json:"home_count"`
	AwayCount         int     `json:"away_count"`
	HomePercentage    float64 `json:"home_percentage"`
	AwayPercentage    float64 `json:"away_percentage"`
	AverageConfidence float64 `json:"average_confidence"`
}

// Stats are whole-store counters for the stats endpoint.
type Stats struct {
	Sessions           int `json:"sessions"`
	Games              int `json:"games"`
	Predictions        int `json:"predictions"`
	SettledPredictions int `json:"settled_predictions"`
	CorrectPredictions int `json:"correct_predictions"`
}

// Store is the persistence surface shared by both backends. Lookups that
// can legitimately find nothing return found=false rather than an error.
type Store interface {
	// Init creates tables when missing.
	Init(ctx context.Context) error

	// TouchSession fetches a session by its public ID, creating it on first
	// sight and refreshing last_active otherwise.
	TouchSession(ctx context.Context, sessionID string) (*Session, error)

	// UpsertGame fetches a game by event ticker, creating it when missing.
	UpsertGame(ctx context.Context, game Game) (*Game, error)

	// SavePrediction records a pick, creating the session and game rows as
	// needed, all in one transaction.
	SavePrediction(ctx context.Context, in PredictionInput) (*Prediction, error)

	// PredictionFor returns one session's pick for one game.
	PredictionFor(ctx context.Context, sessionID, eventTicker string) (*Prediction, bool, error)

	// PredictionsBySession lists a session's picks, newest first.
	PredictionsBySession(ctx context.Context, sessionID string) ([]PredictionWithGame, error)

	// Consensus aggregates all picks for one game.
	Consensus(ctx context.Context, eventTicker string) (*Consensus, bool, error)

	// PendingGames lists games not yet settled.
	PendingGames(ctx context.Context) ([]Game, error)

	// SettleGame records a final result and grades every prediction on the
	// game.
	SettleGame(ctx context.Context, eventTicker, winner string, homeScore, awayScore int) error

	// Stats counts rows for the stats endpoint.
	Stats(ctx context.Context) (*Stats, error)

	Close() error
}
