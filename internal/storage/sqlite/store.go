// Package sqlite backs storage.Store with a single-file database, the
// default for single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/calebrosario/pregame/internal/storage"
)

const defaultPath = "data/pregame.db"

// Store wraps a SQLite DB connection.
type Store struct {
	path string
	db   *sql.DB
}

// Open creates (if needed) and opens the SQLite database.
func Open(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureWAL(db); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

func ensureWAL(db *sql.DB) error {
	const (
		maxAttempts = 5
		delay       = 200 * time.Millisecond
	)
	for i := 0; i < maxAttempts; i++ {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			if strings.Contains(err.Error(), "database is locked") {
				time.Sleep(delay)
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("database is locked after retries")
}

// Path returns the path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Init ensures all tables exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

// DropTables removes all tables.
func (s *Store) DropTables(ctx context.Context) error {
	stmts := []string{
		`DROP TABLE IF EXISTS predictions;`,
		`DROP TABLE IF EXISTS games;`,
		`DROP TABLE IF EXISTS user_sessions;`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS user_sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL,
	last_active TEXT NOT NULL,
	total_predictions INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS games (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	event_ticker TEXT NOT NULL UNIQUE,
	sport TEXT NOT NULL,
	home_team TEXT NOT NULL,
	away_team TEXT NOT NULL,
	game_date TEXT,
	close_date TEXT,
	is_completed INTEGER NOT NULL DEFAULT 0,
	winner TEXT,
	home_score INTEGER,
	away_score INTEGER,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS predictions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id INTEGER NOT NULL REFERENCES user_sessions(id),
	game_id INTEGER NOT NULL REFERENCES games(id),
	predicted_winner TEXT NOT NULL,
	confidence REAL NOT NULL,
	market_probability REAL,
	sportsbook_consensus REAL,
	is_correct INTEGER,
	created_at TEXT NOT NULL,
	UNIQUE (session_id, game_id)
);
CREATE INDEX IF NOT EXISTS predictions_game_idx ON predictions(game_id);
`

// TouchSession fetches a session by public ID, creating it on first sight
// and refreshing last_active otherwise.
func (s *Store) TouchSession(ctx context.Context, sessionID string) (*storage.Session, error) {
	now := formatTime(time.Now().UTC())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_sessions (session_id, created_at, last_active, total_predictions)
		VALUES (?, ?, ?, 0)
		ON CONFLICT(session_id) DO UPDATE SET last_active=excluded.last_active;`,
		sessionID, now, now)
	if err != nil {
		return nil, err
	}
	return s.sessionByID(ctx, s.db, sessionID)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) sessionByID(ctx context.Context, q querier, sessionID string) (*storage.Session, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, session_id, created_at, last_active, total_predictions
		FROM user_sessions WHERE session_id = ?;`, sessionID)

	var sess storage.Session
	var created, active string
	if err := row.Scan(&sess.ID, &sess.SessionID, &created, &active, &sess.TotalPredictions); err != nil {
		return nil, err
	}
	sess.CreatedAt = parseTime(created)
	sess.LastActive = parseTime(active)
	return &sess, nil
}

// UpsertGame fetches a game by event ticker, creating it when missing.
// Existing rows are not overwritten.
func (s *Store) UpsertGame(ctx context.Context, game storage.Game) (*storage.Game, error) {
	if err := s.insertGame(ctx, s.db, game); err != nil {
		return nil, err
	}
	return s.gameByTicker(ctx, s.db, game.EventTicker)
}

func (s *Store) insertGame(ctx context.Context, q querier, game storage.Game) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO games (event_ticker, sport, home_team, away_team, game_date, close_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_ticker) DO NOTHING;`,
		game.EventTicker, game.Sport, game.HomeTeam, game.AwayTeam,
		formatTimePtr(game.GameDate), formatTimePtr(game.CloseDate),
		formatTime(time.Now().UTC()))
	return err
}

func (s *Store) gameByTicker(ctx context.Context, q querier, eventTicker string) (*storage.Game, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, event_ticker, sport, home_team, away_team, game_date, close_date,
		       is_completed, winner, home_score, away_score, created_at
		FROM games WHERE event_ticker = ?;`, eventTicker)
	return scanGame(row)
}

func scanGame(row *sql.Row) (*storage.Game, error) {
	var g storage.Game
	var gameDate, closeDate, winner sql.NullString
	var homeScore, awayScore sql.NullInt64
	var created string
	err := row.Scan(&g.ID, &g.EventTicker, &g.Sport, &g.HomeTeam, &g.AwayTeam,
		&gameDate, &closeDate, &g.IsCompleted, &winner, &homeScore, &awayScore, &created)
	if err != nil {
		return nil, err
	}
	g.GameDate = timePtr(gameDate)
	g.CloseDate = timePtr(closeDate)
	g.Winner = winner.String
	g.HomeScore = intPtr(homeScore)
	g.AwayScore = intPtr(awayScore)
	g.CreatedAt = parseTime(created)
	return &g, nil
}

// SavePrediction records a pick, creating the session and game rows as
// needed. A repeat pick for the same session and game replaces the first
// without growing the session's prediction count.
func (s *Store) SavePrediction(ctx context.Context, in storage.PredictionInput) (*storage.Prediction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := formatTime(time.Now().UTC())
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_sessions (session_id, created_at, last_active, total_predictions)
		VALUES (?, ?, ?, 0)
		ON CONFLICT(session_id) DO UPDATE SET last_active=excluded.last_active;`,
		in.SessionID, now, now); err != nil {
		return nil, err
	}
	sess, err := s.sessionByID(ctx, tx, in.SessionID)
	if err != nil {
		return nil, err
	}

	if err := s.insertGame(ctx, tx, in.Game); err != nil {
		return nil, err
	}
	game, err := s.gameByTicker(ctx, tx, in.Game.EventTicker)
	if err != nil {
		return nil, err
	}

	var existingID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM predictions WHERE session_id = ? AND game_id = ?;`,
		sess.ID, game.ID).Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO predictions (session_id, game_id, predicted_winner, confidence,
				market_probability, sportsbook_consensus, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?);`,
			sess.ID, game.ID, in.PredictedWinner, in.Confidence,
			in.MarketProbability, in.SportsbookConsensus, now); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE user_sessions SET total_predictions = total_predictions + 1 WHERE id = ?;`,
			sess.ID); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if _, err := tx.ExecContext(ctx, `
			UPDATE predictions SET predicted_winner = ?, confidence = ?,
				market_probability = ?, sportsbook_consensus = ?, created_at = ?
			WHERE id = ?;`,
			in.PredictedWinner, in.Confidence,
			in.MarketProbability, in.SportsbookConsensus, now, existingID); err != nil {
			return nil, err
		}
	}

	pred, err := scanPrediction(tx.QueryRowContext(ctx, `
		SELECT id, session_id, game_id, predicted_winner, confidence,
		       market_probability, sportsbook_consensus, is_correct, created_at
		FROM predictions WHERE session_id = ? AND game_id = ?;`,
		sess.ID, game.ID))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return pred, nil
}

func scanPrediction(row *sql.Row) (*storage.Prediction, error) {
	var p storage.Prediction
	var marketProb, bookProb sql.NullFloat64
	var correct sql.NullInt64
	var created string
	err := row.Scan(&p.ID, &p.SessionID, &p.GameID, &p.PredictedWinner, &p.Confidence,
		&marketProb, &bookProb, &correct, &created)
	if err != nil {
		return nil, err
	}
	p.MarketProbability = floatPtr(marketProb)
	p.SportsbookConsensus = floatPtr(bookProb)
	p.IsCorrect = boolPtr(correct)
	p.CreatedAt = parseTime(created)
	return &p, nil
}

// PredictionFor returns one session's pick for one game.
func (s *Store) PredictionFor(ctx context.Context, sessionID, eventTicker string) (*storage.Prediction, bool, error) {
	pred, err := scanPrediction(s.db.QueryRowContext(ctx, `
		SELECT p.id, p.session_id, p.game_id, p.predicted_winner, p.confidence,
		       p.market_probability, p.sportsbook_consensus, p.is_correct, p.created_at
		FROM predictions p
		JOIN user_sessions s ON s.id = p.session_id
		JOIN games g ON g.id = p.game_id
		WHERE s.session_id = ? AND g.event_ticker = ?;`,
		sessionID, eventTicker))
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return pred, true, nil
}

// PredictionsBySession lists a session's picks, newest first.
func (s *Store) PredictionsBySession(ctx context.Context, sessionID string) ([]storage.PredictionWithGame, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.session_id, p.game_id, p.predicted_winner, p.confidence,
		       p.market_probability, p.sportsbook_consensus, p.is_correct, p.created_at,
		       g.id, g.event_ticker, g.sport, g.home_team, g.away_team, g.game_date, g.close_date,
		       g.is_completed, g.winner, g.home_score, g.away_score, g.created_at
		FROM predictions p
		JOIN user_sessions s ON s.id = p.session_id
		JOIN games g ON g.id = p.game_id
		WHERE s.session_id = ?
		ORDER BY p.created_at DESC;`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.PredictionWithGame
	for rows.Next() {
		var p storage.Prediction
		var g storage.Game
		var marketProb, bookProb sql.NullFloat64
		var correct sql.NullInt64
		var pCreated, gCreated string
		var gameDate, closeDate, winner sql.NullString
		var homeScore, awayScore sql.NullInt64
		if err := rows.Scan(&p.ID, &p.SessionID, &p.GameID, &p.PredictedWinner, &p.Confidence,
			&marketProb, &bookProb, &correct, &pCreated,
			&g.ID, &g.EventTicker, &g.Sport, &g.HomeTeam, &g.AwayTeam, &gameDate, &closeDate,
			&g.IsCompleted, &winner, &homeScore, &awayScore, &gCreated); err != nil {
			return nil, err
		}
		p.MarketProbability = floatPtr(marketProb)
		p.SportsbookConsensus = floatPtr(bookProb)
		p.IsCorrect = boolPtr(correct)
		p.CreatedAt = parseTime(pCreated)
		g.GameDate = timePtr(gameDate)
		g.CloseDate = timePtr(closeDate)
		g.Winner = winner.String
		g.HomeScore = intPtr(homeScore)
		g.AwayScore = intPtr(awayScore)
		g.CreatedAt = parseTime(gCreated)
		out = append(out, storage.PredictionWithGame{Prediction: p, Game: g})
	}
	return out, rows.Err()
}

// Consensus aggregates all picks for one game.
func (s *Store) Consensus(ctx context.Context, eventTicker string) (*storage.Consensus, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT g.home_team, g.away_team,
		       COUNT(*),
		       SUM(CASE WHEN p.predicted_winner = g.home_team THEN 1 ELSE 0 END),
		       SUM(CASE WHEN p.predicted_winner = g.away_team THEN 1 ELSE 0 END),
		       AVG(p.confidence)
		FROM predictions p
		JOIN games g ON g.id = p.game_id
		WHERE g.event_ticker = ?
		GROUP BY g.id;`, eventTicker)

	var c storage.Consensus
	err := row.Scan(&c.HomeTeam, &c.AwayTeam, &c.TotalPredictions,
		&c.HomeCount, &c.AwayCount, &c.AverageConfidence)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if c.TotalPredictions > 0 {
		c.HomePercentage = float64(c.HomeCount) / float64(c.TotalPredictions) * 100
		c.AwayPercentage = float64(c.AwayCount) / float64(c.TotalPredictions) * 100
	}
	return &c, true, nil
}

// PendingGames lists games not yet settled.
func (s *Store) PendingGames(ctx context.Context) ([]storage.Game, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_ticker, sport, home_team, away_team, game_date, close_date,
		       is_completed, winner, home_score, away_score, created_at
		FROM games WHERE is_completed = 0
		ORDER BY close_date ASC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.Game
	for rows.Next() {
		var g storage.Game
		var gameDate, closeDate, winner sql.NullString
		var homeScore, awayScore sql.NullInt64
		var created string
		if err := rows.Scan(&g.ID, &g.EventTicker, &g.Sport, &g.HomeTeam, &g.AwayTeam,
			&gameDate, &closeDate, &g.IsCompleted, &winner, &homeScore, &awayScore, &created); err != nil {
			return nil, err
		}
		g.GameDate = timePtr(gameDate)
		g.CloseDate = timePtr(closeDate)
		g.Winner = winner.String
		g.HomeScore = intPtr(homeScore)
		g.AwayScore = intPtr(awayScore)
		g.CreatedAt = parseTime(created)
		out = append(out, g)
	}
	return out, rows.Err()
}

// SettleGame records a final result and grades every prediction on the game.
func (s *Store) SettleGame(ctx context.Context, eventTicker, winner string, homeScore, awayScore int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE games SET is_completed = 1, winner = ?, home_score = ?, away_score = ?
		WHERE event_ticker = ?;`, winner, homeScore, awayScore, eventTicker)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("settle: unknown game %s", eventTicker)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE predictions SET is_correct = CASE WHEN predicted_winner = ? THEN 1 ELSE 0 END
		WHERE game_id = (SELECT id FROM games WHERE event_ticker = ?);`,
		winner, eventTicker); err != nil {
		return err
	}
	return tx.Commit()
}

// Stats counts rows for the stats endpoint.
func (s *Store) Stats(ctx context.Context) (*storage.Stats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM user_sessions),
			(SELECT COUNT(*) FROM games),
			(SELECT COUNT(*) FROM predictions),
			(SELECT COUNT(*) FROM predictions WHERE is_correct IS NOT NULL),
			(SELECT COUNT(*) FROM predictions WHERE is_correct = 1);`)

	var st storage.Stats
	if err := row.Scan(&st.Sessions, &st.Games, &st.Predictions,
		&st.SettledPredictions, &st.CorrectPredictions); err != nil {
		return nil, err
	}
	return &st, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func timePtr(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := parseTime(ns.String)
	if t.IsZero() {
		return nil
	}
	return &t
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func boolPtr(n sql.NullInt64) *bool {
	if !n.Valid {
		return nil
	}
	v := n.Int64 != 0
	return &v
}
