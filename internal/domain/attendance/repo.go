package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const selectColumns = `date_mm_dd_yyyy, meeting_date, meeting_type, deaf, hearing, total, updated_at`

func scanRecord(row pgx.Row) (Record, error) {
	var (
		r  Record
		mt string
	)
	if err := row.Scan(&r.DateKey, &r.Date, &mt, &r.Deaf, &r.Hearing, &r.Total, &r.UpdatedAt); err != nil {
		return Record{}, err
	}
	r.MeetingType = MeetingType(mt)
	return r, nil
}

// Get returns nil, nil when no record exists for key.
func (r *Repo) Get(ctx context.Context, key string) (*Record, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM attendance WHERE date_mm_dd_yyyy = $1`, key)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *Repo) List(ctx context.Context) ([]Record, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM attendance ORDER BY meeting_date ASC`)
}

// ListBetween returns records with from <= meeting_date < toExclusive.
func (r *Repo) ListBetween(ctx context.Context, from, toExclusive time.Time) ([]Record, error) {
	return r.query(ctx, `
		SELECT `+selectColumns+`
		FROM attendance
		WHERE meeting_date >= $1 AND meeting_date < $2
		ORDER BY meeting_date ASC
	`, from, toExclusive)
}

func (r *Repo) query(ctx context.Context, sql string, args ...any) ([]Record, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repo) Insert(ctx context.Context, rec Record) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO attendance (date_mm_dd_yyyy, meeting_date, meeting_type, deaf, hearing, total)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, rec.DateKey, rec.Date, string(rec.MeetingType), rec.Deaf, rec.Hearing, rec.Total)
	return err
}

func (r *Repo) Update(ctx context.Context, rec Record) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE attendance
		SET meeting_type = $2, deaf = $3, hearing = $4, total = $5, updated_at = now()
		WHERE date_mm_dd_yyyy = $1
	`, rec.DateKey, string(rec.MeetingType), rec.Deaf, rec.Hearing, rec.Total)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, key string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM attendance WHERE date_mm_dd_yyyy = $1`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
