package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"leviathan-server/pkg/db"
	"leviathan-server/pkg/launchpad"
)

// Postgres is a ledger in the templates_stats and finished_instances tables
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a ledger backed by the database
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// RecordFinished inserts the instance, recording it twice is a no-op
func (p *Postgres) RecordFinished(ctx context.Context, instance *launchpad.Instance) error {
	seats, err := json.Marshal(instance.Seats)
	if err != nil {
		return err
	}

	distributions, err := json.Marshal(instance.Distributions)
	if err != nil {
		return err
	}

	var winnerID sql.NullString
	if instance.WinnerID != "" {
		winnerID = sql.NullString{String: instance.WinnerID, Valid: true}
	}

	const query = `
INSERT INTO finished_instances (instance_id, template_id, creator_id, status, winner_id, entry_fee, prize_pool, winnings,
                                seats, distributions)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (instance_id) DO NOTHING`

	_, err = p.db.ExecContext(ctx, query,
		instance.ID,
		instance.TemplateID,
		instance.CreatorID,
		string(instance.Status),
		winnerID,
		instance.EntryFee,
		instance.PrizePool,
		instance.Winnings,
		string(seats),
		string(distributions),
	)

	return err
}

// RecordTemplateStats upserts the template's counters
func (p *Postgres) RecordTemplateStats(ctx context.Context, template *launchpad.Template) error {
	config, err := json.Marshal(template.Config)
	if err != nil {
		return err
	}

	const query = `
INSERT INTO templates_stats (template_id, name, creator_id, config, total_games, total_staked)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (template_id) DO UPDATE
SET total_games = EXCLUDED.total_games,
    total_staked = EXCLUDED.total_staked,
    updated = (NOW() AT TIME ZONE 'UTC')`

	_, err = p.db.ExecContext(ctx, query,
		template.ID,
		template.Name,
		template.CreatorID,
		string(config),
		template.TotalGames,
		template.TotalStaked,
	)

	return err
}

const finishedColumns = `
finished_instances.instance_id,
finished_instances.template_id,
finished_instances.creator_id,
finished_instances.status,
finished_instances.winner_id,
finished_instances.entry_fee,
finished_instances.prize_pool,
finished_instances.winnings,
finished_instances.seats,
finished_instances.distributions,
finished_instances.finished`

func getFinishedByRow(row db.Scanner) (*launchpad.Instance, error) {
	var i launchpad.Instance
	var status string
	var winnerID sql.NullString
	var seats, distributions []byte
	var finished sql.NullTime

	if err := row.Scan(
		&i.ID,
		&i.TemplateID,
		&i.CreatorID,
		&status,
		&winnerID,
		&i.EntryFee,
		&i.PrizePool,
		&i.Winnings,
		&seats,
		&distributions,
		&finished,
	); err != nil {
		return nil, err
	}

	i.Status = launchpad.Status(status)
	i.WinnerID = winnerID.String
	if finished.Valid {
		i.Finished = &finished.Time
	}

	if err := json.Unmarshal(seats, &i.Seats); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(distributions, &i.Distributions); err != nil {
		return nil, err
	}

	return &i, nil
}

// FinishedInstances returns the finished instances, newest first
func (p *Postgres) FinishedInstances(ctx context.Context, limit int) ([]*launchpad.Instance, error) {
	if limit <= 0 {
		limit = 100
	}

	const query = `
SELECT ` + finishedColumns + `
FROM finished_instances
ORDER BY finished DESC
LIMIT $1`

	rows, err := p.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	instances := make([]*launchpad.Instance, 0)
	for rows.Next() {
		i, err := getFinishedByRow(rows)
		if err != nil {
			return nil, err
		}

		instances = append(instances, i)
	}

	return instances, rows.Err()
}

// TemplateStats returns the recorded counters of a template
func (p *Postgres) TemplateStats(ctx context.Context, templateID string) (totalGames int, totalStaked float64, err error) {
	const query = `
SELECT total_games, total_staked
FROM templates_stats
WHERE template_id = $1`

	err = p.db.QueryRowContext(ctx, query, templateID).Scan(&totalGames, &totalStaked)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, launchpad.ErrTemplateNotFound
	}

	return totalGames, totalStaked, err
}
