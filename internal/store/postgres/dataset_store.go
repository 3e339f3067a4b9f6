package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/quiverx/internal/domain"
	"github.com/alanyoungcy/quiverx/internal/source"
)

// DatasetStore implements domain.DatasetStore on top of the tables created
// by migrations/001_dashboard.sql.
type DatasetStore struct {
	pool *pgxpool.Pool
}

// NewDatasetStore creates a DatasetStore backed by pool.
func NewDatasetStore(pool *pgxpool.Pool) *DatasetStore {
	return &DatasetStore{pool: pool}
}

// Name implements domain.DataSource.
func (s *DatasetStore) Name() string { return "postgres" }

// sections maps each JSONB section row to the dataset field it holds.
func sections(ds *domain.Dataset) map[string]any {
	return map[string]any{
		"key_metrics":         &ds.KeyMetrics,
		"pair_spreads":        &ds.PairSpreads,
		"convergence":         &ds.Convergence,
		"profit_distribution": &ds.ProfitDistribution,
		"depths":              &ds.Depths,
		"order_book":          &ds.OrderBook,
		"scenarios":           &ds.Scenarios,
		"steps":               &ds.Steps,
		"auction":             &ds.Auction,
		"links":               &ds.Links,
	}
}

// Load implements domain.DataSource. Rows are validated before returning.
func (s *DatasetStore) Load(ctx context.Context) (domain.Dataset, error) {
	var ds domain.Dataset

	opps, err := s.loadOpportunities(ctx)
	if err != nil {
		return domain.Dataset{}, err
	}
	ds.Opportunities = opps

	hist, err := s.loadHistory(ctx)
	if err != nil {
		return domain.Dataset{}, err
	}
	ds.History = hist

	if err := s.loadSections(ctx, &ds); err != nil {
		return domain.Dataset{}, err
	}
	if err := source.ValidateDataset(ds); err != nil {
		return domain.Dataset{}, fmt.Errorf("postgres: load dataset: %w", err)
	}
	return ds, nil
}

func (s *DatasetStore) loadOpportunities(ctx context.Context) ([]domain.Opportunity, error) {
	const query = `
		SELECT id, event,
			pm_platform, pm_price, pm_volume,
			opt_platform, opt_price, opt_volume,
			perp_platform, perp_price, perp_volume,
			spread, profit_potential, time_to_expiry
		FROM opportunities
		ORDER BY position`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: query opportunities: %w", err)
	}
	defer rows.Close()

	var out []domain.Opportunity
	for rows.Next() {
		var o domain.Opportunity
		if err := rows.Scan(
			&o.ID, &o.Event,
			&o.PredictionMarket.Platform, &o.PredictionMarket.Price, &o.PredictionMarket.Volume,
			&o.Options.Platform, &o.Options.Price, &o.Options.Volume,
			&o.Perpetuals.Platform, &o.Perpetuals.Price, &o.Perpetuals.Volume,
			&o.Spread, &o.ProfitPotential, &o.TimeToExpiry,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate opportunities: %w", err)
	}
	return out, nil
}

func (s *DatasetStore) loadHistory(ctx context.Context) ([]domain.DailyRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT day, missed_profit, opportunities, avg_spread FROM daily_history ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("postgres: query history: %w", err)
	}
	defer rows.Close()

	var out []domain.DailyRecord
	for rows.Next() {
		var (
			r   domain.DailyRecord
			day time.Time
		)
		if err := rows.Scan(&day, &r.MissedProfit, &r.Opportunities, &r.AvgSpread); err != nil {
			return nil, fmt.Errorf("postgres: scan history: %w", err)
		}
		r.Date = day.Format(domain.DayLayout)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate history: %w", err)
	}
	return out, nil
}

func (s *DatasetStore) loadSections(ctx context.Context, ds *domain.Dataset) error {
	rows, err := s.pool.Query(ctx, `SELECT name, body FROM dataset_sections`)
	if err != nil {
		return fmt.Errorf("postgres: query sections: %w", err)
	}
	defer rows.Close()

	targets := sections(ds)
	for rows.Next() {
		var (
			name string
			body []byte
		)
		if err := rows.Scan(&name, &body); err != nil {
			return fmt.Errorf("postgres: scan section: %w", err)
		}
		target, ok := targets[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(body, target); err != nil {
			return fmt.Errorf("postgres: decode section %s: %w", name, err)
		}
	}
	return rows.Err()
}

// Replace swaps the stored dataset for ds inside a single transaction.
func (s *DatasetStore) Replace(ctx context.Context, ds domain.Dataset) error {
	if err := source.ValidateDataset(ds); err != nil {
		return fmt.Errorf("postgres: replace dataset: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `TRUNCATE opportunities, daily_history`); err != nil {
		return fmt.Errorf("postgres: truncate: %w", err)
	}

	oppRows := make([][]any, 0, len(ds.Opportunities))
	for i, o := range ds.Opportunities {
		oppRows = append(oppRows, []any{
			o.ID, i, o.Event,
			o.PredictionMarket.Platform, o.PredictionMarket.Price, o.PredictionMarket.Volume,
			o.Options.Platform, o.Options.Price, o.Options.Volume,
			o.Perpetuals.Platform, o.Perpetuals.Price, o.Perpetuals.Volume,
			o.Spread, o.ProfitPotential, o.TimeToExpiry,
		})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"opportunities"}, []string{
		"id", "position", "event",
		"pm_platform", "pm_price", "pm_volume",
		"opt_platform", "opt_price", "opt_volume",
		"perp_platform", "perp_price", "perp_volume",
		"spread", "profit_potential", "time_to_expiry",
	}, pgx.CopyFromRows(oppRows)); err != nil {
		return fmt.Errorf("postgres: copy opportunities: %w", err)
	}

	histRows := make([][]any, 0, len(ds.History))
	for _, r := range ds.History {
		day, err := time.Parse(domain.DayLayout, r.Date)
		if err != nil {
			return fmt.Errorf("postgres: history date %q: %w", r.Date, err)
		}
		histRows = append(histRows, []any{day, r.MissedProfit, r.Opportunities, r.AvgSpread})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"daily_history"},
		[]string{"day", "missed_profit", "opportunities", "avg_spread"},
		pgx.CopyFromRows(histRows)); err != nil {
		return fmt.Errorf("postgres: copy history: %w", err)
	}

	const upsert = `
		INSERT INTO dataset_sections (name, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`
	batch := &pgx.Batch{}
	for name, v := range sections(&ds) {
		body, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("postgres: encode section %s: %w", name, err)
		}
		batch.Queue(upsert, name, body)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("postgres: upsert sections: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit replace: %w", err)
	}
	return nil
}
