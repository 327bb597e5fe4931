package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const predictionColumns = `id, sequence, created_at, source, flight, origin, destination,
	dep_date, dep_time, month, weekday, hour, probability, band, unmatched, advisory, error`

// predictionRepo implements PredictionRepo with raw SQL.
type predictionRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *predictionRepo) Append(ctx context.Context, p *Prediction) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.Sequence = seqNum

	unmatched := p.Unmatched
	if unmatched == nil {
		unmatched = []string{}
	}
	um, err := json.Marshal(unmatched)
	if err != nil {
		return fmt.Errorf("marshal unmatched: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO predictions (`+predictionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Sequence, p.CreatedAt.UnixNano(), p.Source,
		p.Flight, p.Origin, p.Destination, p.Date, p.Time,
		p.Month, p.Weekday, p.Hour,
		p.Probability, p.Band, string(um), p.Advisory, p.Error,
	)
	if err != nil {
		return fmt.Errorf("save prediction: %w", err)
	}
	return nil
}

func (r *predictionRepo) Get(ctx context.Context, id string) (*Prediction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+predictionColumns+` FROM predictions WHERE id = ?`, id)
	p, err := scanPrediction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("prediction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query prediction: %w", err)
	}
	return p, nil
}

func (r *predictionRepo) List(ctx context.Context, opts QueryOpts) ([]Prediction, error) {
	where, args := opts.where("created_at")
	if opts.Band != "" {
		where = append(where, "band = ?")
		args = append(args, opts.Band)
	}

	q := `SELECT ` + predictionColumns + ` FROM predictions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY sequence DESC"
	if opts.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *predictionRepo) CountByBand(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT band, COUNT(*) FROM predictions WHERE error = '' GROUP BY band`)
	if err != nil {
		return nil, fmt.Errorf("count predictions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var band string
		var n int
		if err := rows.Scan(&band, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[band] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrediction(s rowScanner) (*Prediction, error) {
	var (
		p         Prediction
		createdAt int64
		unmatched string
	)
	err := s.Scan(&p.ID, &p.Sequence, &createdAt, &p.Source,
		&p.Flight, &p.Origin, &p.Destination, &p.Date, &p.Time,
		&p.Month, &p.Weekday, &p.Hour,
		&p.Probability, &p.Band, &unmatched, &p.Advisory, &p.Error)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(0, createdAt)
	if err := json.Unmarshal([]byte(unmatched), &p.Unmatched); err != nil {
		return nil, fmt.Errorf("unmarshal unmatched: %w", err)
	}
	return &p, nil
}

// where builds the shared sequence/time filters.
func (o QueryOpts) where(timeCol string) ([]string, []any) {
	var (
		clauses []string
		args    []any
	)
	if o.After > 0 {
		clauses = append(clauses, "sequence > ?")
		args = append(args, o.After)
	}
	if o.Before > 0 {
		clauses = append(clauses, "sequence < ?")
		args = append(args, o.Before)
	}
	if !o.From.IsZero() {
		clauses = append(clauses, timeCol+" >= ?")
		args = append(args, o.From.UnixNano())
	}
	if !o.To.IsZero() {
		clauses = append(clauses, timeCol+" <= ?")
		args = append(args, o.To.UnixNano())
	}
	return clauses, args
}
