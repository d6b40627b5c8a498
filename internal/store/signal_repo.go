// Package store persists archived signals so a server restart can rebuild
// its in-memory archive. Backtest results are never persisted.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/sonar/internal/contracts"
)

// SignalRepository reads and writes archived signals
// ⭐ SSOT: Signal 데이터 저장/조회는 여기서만
type SignalRepository struct {
	pool *pgxpool.Pool
}

// NewSignalRepository creates a new signal repository
func NewSignalRepository(pool *pgxpool.Pool) *SignalRepository {
	return &SignalRepository{pool: pool}
}

// SaveBatch inserts signals, skipping IDs already present.
func (r *SignalRepository) SaveBatch(ctx context.Context, signals []contracts.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO signals.archived_signals (
			signal_id, ticker, composite_score, direction, action,
			sentiment_avg, platform_count, platform_consensus,
			influencer_signal, volume_anomaly, mention_count,
			confidence, signal_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (signal_id) DO NOTHING
	`

	for _, sig := range signals {
		batch.Queue(query,
			sig.SignalID, sig.Ticker, sig.CompositeScore, string(sig.Direction), sig.Action,
			sig.SentimentAvg, sig.PlatformCount, sig.PlatformConsensus,
			sig.InfluencerSignal, sig.VolumeAnomaly, sig.MentionCount,
			sig.Confidence, sig.SignalTime,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range signals {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert signal: %w", err)
		}
	}

	return nil
}

// LoadRange retrieves signals within the inclusive time range, in signal
// time order. Zero bounds mean no constraint on that side.
func (r *SignalRepository) LoadRange(ctx context.Context, from, to time.Time) ([]contracts.Signal, error) {
	query := `
		SELECT
			signal_id, ticker, composite_score, direction, action,
			sentiment_avg, platform_count, platform_consensus,
			influencer_signal, volume_anomaly, mention_count,
			confidence, signal_time
		FROM signals.archived_signals
		WHERE ($1::timestamptz IS NULL OR signal_time >= $1)
		  AND ($2::timestamptz IS NULL OR signal_time <= $2)
		ORDER BY signal_time, signal_id
	`

	var fromArg, toArg *time.Time
	if !from.IsZero() {
		fromArg = &from
	}
	if !to.IsZero() {
		toArg = &to
	}

	rows, err := r.pool.Query(ctx, query, fromArg, toArg)
	if err != nil {
		return nil, fmt.Errorf("query archived signals: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// LoadByTicker retrieves all signals for one ticker in signal time order.
func (r *SignalRepository) LoadByTicker(ctx context.Context, ticker string) ([]contracts.Signal, error) {
	query := `
		SELECT
			signal_id, ticker, composite_score, direction, action,
			sentiment_avg, platform_count, platform_consensus,
			influencer_signal, volume_anomaly, mention_count,
			confidence, signal_time
		FROM signals.archived_signals
		WHERE ticker = $1
		ORDER BY signal_time, signal_id
	`

	rows, err := r.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("query signals by ticker: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

func scanSignals(rows pgx.Rows) ([]contracts.Signal, error) {
	var signals []contracts.Signal

	for rows.Next() {
		var sig contracts.Signal
		var direction string

		err := rows.Scan(
			&sig.SignalID, &sig.Ticker, &sig.CompositeScore, &direction, &sig.Action,
			&sig.SentimentAvg, &sig.PlatformCount, &sig.PlatformConsensus,
			&sig.InfluencerSignal, &sig.VolumeAnomaly, &sig.MentionCount,
			&sig.Confidence, &sig.SignalTime,
		)
		if err != nil {
			return nil, fmt.Errorf("scan signal row: %w", err)
		}

		sig.Direction = contracts.Direction(direction)
		signals = append(signals, sig)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signal rows: %w", err)
	}

	return signals, nil
}
