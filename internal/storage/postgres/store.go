// Package postgres backs storage.Store with a shared database for
// multi-node deployments.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/calebrosario/pregame/internal/storage"
)

// Store wraps a Postgres connection pool.
type Store struct {
	db *sql.DB
}

// Open connects and verifies the database is reachable.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the pool.
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
	id BIGSERIAL PRIMARY KEY,
	session_id TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL,
	last_active TIMESTAMPTZ NOT NULL,
	total_predictions INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS games (
	id BIGSERIAL PRIMARY KEY,
	event_ticker TEXT NOT NULL UNIQUE,
	sport TEXT NOT NULL,
	home_team TEXT NOT NULL,
	away_team TEXT NOT NULL,
	game_date TIMESTAMPTZ,
	close_date TIMESTAMPTZ,
	is_completed BOOLEAN NOT NULL DEFAULT FALSE,
	winner TEXT,
	home_score INTEGER,
	away_score INTEGER,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS predictions (
	id BIGSERIAL PRIMARY KEY,
	session_id BIGINT NOT NULL REFERENCES user_sessions(id),
	game_id BIGINT NOT NULL REFERENCES games(id),
	predicted_winner TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	market_probability DOUBLE PRECISION,
	sportsbook_consensus DOUBLE PRECISION,
	is_correct BOOLEAN,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (session_id, game_id)
);
CREATE INDEX IF NOT EXISTS predictions_game_idx ON predictions(game_id);
`

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// TouchSession fetches a session by public ID, creating it on first sight
// and refreshing last_active otherwise.
func (s *Store) TouchSession(ctx context.Context, sessionID string) (*storage.Session, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_sessions (session_id, created_at, last_active, total_predictions)
		VALUES ($1, $2, $2, 0)
		ON CONFLICT (session_id) DO UPDATE SET last_active = EXCLUDED.last_active;`,
		sessionID, now)
	if err != nil {
		return nil, err
	}
	return s.sessionByID(ctx, s.db, sessionID)
}

func (s *Store) sessionByID(ctx context.Context, q querier, sessionID string) (*storage.Session, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, session_id, created_at, last_active, total_predictions
		FROM user_sessions WHERE session_id = $1;`, sessionID)

	var sess storage.Session
	if err := row.Scan(&sess.ID, &sess.SessionID, &sess.CreatedAt, &sess.LastActive, &sess.TotalPredictions); err != nil {
		return nil, err
	}
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
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_ticker) DO NOTHING;`,
		game.EventTicker, game.Sport, game.HomeTeam, game.AwayTeam,
		game.GameDate, game.CloseDate, time.Now().UTC())
	return err
}

func (s *Store) gameByTicker(ctx context.Context, q querier, eventTicker string) (*storage.Game, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, event_ticker, sport, home_team, away_team, game_date, close_date,
		       is_completed, winner, home_score, away_score, created_at
		FROM games WHERE event_ticker = $1;`, eventTicker)
	return scanGame(row)
}

func scanGame(row *sql.Row) (*storage.Game, error) {
	var g storage.Game
	var winner sql.NullString
	var homeScore, awayScore sql.NullInt64
	err := row.Scan(&g.ID, &g.EventTicker, &g.Sport, &g.HomeTeam, &g.AwayTeam,
		&g.GameDate, &g.CloseDate, &g.IsCompleted, &winner, &homeScore, &awayScore, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	g.Winner = winner.String
	g.HomeScore = intPtr(homeScore)
	g.AwayScore = intPtr(awayScore)
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

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_sessions (session_id, created_at, last_active, total_predictions)
		VALUES ($1, $2, $2, 0)
		ON CONFLICT (session_id) DO UPDATE SET last_active = EXCLUDED.last_active;`,
		in.SessionID, now); err != nil {
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
		SELECT id FROM predictions WHERE session_id = $1 AND game_id = $2;`,
		sess.ID, game.ID).Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO predictions (session_id, game_id, predicted_winner, confidence,
				market_probability, sportsbook_consensus, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7);`,
			sess.ID, game.ID, in.PredictedWinner, in.Confidence,
			in.MarketProbability, in.SportsbookConsensus, now); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE user_sessions SET total_predictions = total_predictions + 1 WHERE id = $1;`,
			sess.ID); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if _, err := tx.ExecContext(ctx, `
			UPDATE predictions SET predicted_winner = $1, confidence = $2,
				market_probability = $3, sportsbook_consensus = $4, created_at = $5
			WHERE id = $6;`,
			in.PredictedWinner, in.Confidence,
			in.MarketProbability, in.SportsbookConsensus, now, existingID); err != nil {
			return nil, err
		}
	}

	pred, err := scanPrediction(tx.QueryRowContext(ctx, `
		SELECT id, session_id, game_id, predicted_winner, confidence,
		       market_probability, sportsbook_consensus, is_correct, created_at
		FROM predictions WHERE session_id = $1 AND game_id = $2;`,
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
	var correct sql.NullBool
	err := row.Scan(&p.ID, &p.SessionID, &p.GameID, &p.PredictedWinner, &p.Confidence,
		&marketProb, &bookProb, &correct, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.MarketProbability = floatPtr(marketProb)
	p.SportsbookConsensus = floatPtr(bookProb)
	if correct.Valid {
		v := correct.Bool
		p.IsCorrect = &v
	}
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
		WHERE s.session_id = $1 AND g.event_ticker = $2;`,
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
		WHERE s.session_id = $1
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
		var correct sql.NullBool
		var winner sql.NullString
		var homeScore, awayScore sql.NullInt64
		if err := rows.Scan(&p.ID, &p.SessionID, &p.GameID, &p.PredictedWinner, &p.Confidence,
			&marketProb, &bookProb, &correct, &p.CreatedAt,
			&g.ID, &g.EventTicker, &g.Sport, &g.HomeTeam, &g.AwayTeam, &g.GameDate, &g.CloseDate,
			&g.IsCompleted, &winner, &homeScore, &awayScore, &g.CreatedAt); err != nil {
			return nil, err
		}
		p.MarketProbability = floatPtr(marketProb)
		p.SportsbookConsensus = floatPtr(bookProb)
		if correct.Valid {
			v := correct.Bool
			p.IsCorrect = &v
		}
		g.Winner = winner.String
		g.HomeScore = intPtr(homeScore)
		g.AwayScore = intPtr(awayScore)
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
		WHERE g.event_ticker = $1
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
		FROM games WHERE NOT is_completed
		ORDER BY close_date ASC NULLS LAST;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.Game
	for rows.Next() {
		var g storage.Game
		var winner sql.NullString
		var homeScore, awayScore sql.NullInt64
		if err := rows.Scan(&g.ID, &g.EventTicker, &g.Sport, &g.HomeTeam, &g.AwayTeam,
			&g.GameDate, &g.CloseDate, &g.IsCompleted, &winner, &homeScore, &awayScore, &g.CreatedAt); err != nil {
			return nil, err
		}
		g.Winner = winner.String
		g.HomeScore = intPtr(homeScore)
		g.AwayScore = intPtr(awayScore)
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
		UPDATE games SET is_completed = TRUE, winner = $1, home_score = $2, away_score = $3
		WHERE event_ticker = $4;`, winner, homeScore, awayScore, eventTicker)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("settle: unknown game %s", eventTicker)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE predictions SET is_correct = (predicted_winner = $1)
		WHERE game_id = (SELECT id FROM games WHERE event_ticker = $2);`,
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
			(SELECT COUNT(*) FROM predictions WHERE is_correct);`)

	var st storage.Stats
	if err := row.Scan(&st.Sessions, &st.Games, &st.Predictions,
		&st.SettledPredictions, &st.CorrectPredictions); err != nil {
		return nil, err
	}
	return &st, nil
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
