package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const selectColumns = `
	month_year, year, month,
	midweek_count, midweek_total, midweek_average, midweek_deaf_total, midweek_deaf_average,
	weekend_count, weekend_total, weekend_average, weekend_deaf_total, weekend_deaf_average`

func scanMonthly(row pgx.Row) (Monthly, error) {
	var (
		m     Monthly
		month int
	)
	err := row.Scan(
		&m.MonthYear, &m.Year, &month,
		&m.Midweek.Count, &m.Midweek.Total, &m.Midweek.Average, &m.Midweek.DeafTotal, &m.Midweek.DeafAverage,
		&m.Weekend.Count, &m.Weekend.Total, &m.Weekend.Average, &m.Weekend.DeafTotal, &m.Weekend.DeafAverage,
	)
	m.Month = time.Month(month)
	return m, err
}

func (r *Repo) List(ctx context.Context) ([]Monthly, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM report ORDER BY year, month`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Monthly
	for rows.Next() {
		m, err := scanMonthly(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Insert upserts on month_year so two syncs racing on a new month both succeed.
func (r *Repo) Insert(ctx context.Context, m Monthly) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO report (`+selectColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (month_year) DO UPDATE SET
			year = EXCLUDED.year, month = EXCLUDED.month,
			midweek_count = EXCLUDED.midweek_count, midweek_total = EXCLUDED.midweek_total,
			midweek_average = EXCLUDED.midweek_average,
			midweek_deaf_total = EXCLUDED.midweek_deaf_total, midweek_deaf_average = EXCLUDED.midweek_deaf_average,
			weekend_count = EXCLUDED.weekend_count, weekend_total = EXCLUDED.weekend_total,
			weekend_average = EXCLUDED.weekend_average,
			weekend_deaf_total = EXCLUDED.weekend_deaf_total, weekend_deaf_average = EXCLUDED.weekend_deaf_average,
			updated_at = now()
	`, args(m)...)
	return err
}

func (r *Repo) Update(ctx context.Context, m Monthly) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE report SET
			year = $2, month = $3,
			midweek_count = $4, midweek_total = $5, midweek_average = $6,
			midweek_deaf_total = $7, midweek_deaf_average = $8,
			weekend_count = $9, weekend_total = $10, weekend_average = $11,
			weekend_deaf_total = $12, weekend_deaf_average = $13,
			updated_at = now()
		WHERE month_year = $1
	`, args(m)...)
	return err
}

func args(m Monthly) []any {
	return []any{
		m.MonthYear, m.Year, int(m.Month),
		m.Midweek.Count, m.Midweek.Total, m.Midweek.Average, m.Midweek.DeafTotal, m.Midweek.DeafAverage,
		m.Weekend.Count, m.Weekend.Total, m.Weekend.Average, m.Weekend.DeafTotal, m.Weekend.DeafAverage,
	}
}
