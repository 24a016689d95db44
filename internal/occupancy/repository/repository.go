package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelops_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Batch represents one occupancy upload.
type Batch struct {
	ID         uuid.UUID `db:"id"`
	HotelID    int64     `db:"hotel_id"`
	FileName   *string   `db:"file_name"`
	UploadedBy uuid.UUID `db:"uploaded_by"`
	FactCount  int       `db:"fact_count"`
	CreatedAt  time.Time `db:"created_at"`
}

// Fact represents one room's occupancy for a stay window. IDs come from a
// bigserial sequence, so a higher ID always means a more recent upload.
type Fact struct {
	ID           int64      `db:"id"`
	BatchID      uuid.UUID  `db:"batch_id"`
	HotelID      int64      `db:"hotel_id"`
	RoomID       int64      `db:"room_id"`
	GuestName    *string    `db:"guest_name"`
	CheckInDate  time.Time  `db:"check_in_date"`
	CheckOutDate time.Time  `db:"check_out_date"`
	ArrivalAt    *time.Time `db:"arrival_at"`
	DepartureAt  *time.Time `db:"departure_at"`
	CreatedAt    time.Time  `db:"created_at"`
}

// FactSeed carries the fields of a fact to be inserted.
type FactSeed struct {
	RoomID       int64
	GuestName    *string
	CheckInDate  time.Time
	CheckOutDate time.Time
	ArrivalAt    *time.Time
	DepartureAt  *time.Time
}

// Repository provides database operations for occupancy batches and facts.
type Repository struct {
	pool *pgxpool.Pool
}

const batchNotFoundMsg = "occupancy batch not found"

// New creates a new occupancy repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const factColumns = `id, batch_id, hotel_id, room_id, guest_name,
	check_in_date, check_out_date, arrival_at, departure_at, created_at`

// CreateBatch inserts a batch and its facts in one transaction.
func (r *Repository) CreateBatch(ctx context.Context, batch *Batch, seeds []FactSeed) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO occupancy_batches (id, hotel_id, file_name, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		batch.ID, batch.HotelID, batch.FileName, batch.UploadedBy, batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert occupancy batch: %w", err)
	}

	insertFact := `
		INSERT INTO occupancy_facts (
			batch_id, hotel_id, room_id, guest_name,
			check_in_date, check_out_date, arrival_at, departure_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, seed := range seeds {
		_, err := tx.Exec(ctx, insertFact,
			batch.ID, batch.HotelID, seed.RoomID, seed.GuestName,
			seed.CheckInDate, seed.CheckOutDate, seed.ArrivalAt, seed.DepartureAt, batch.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert occupancy fact: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit occupancy batch: %w", err)
	}
	return nil
}

// GetBatch retrieves a batch by ID including its fact count.
func (r *Repository) GetBatch(ctx context.Context, id uuid.UUID) (*Batch, error) {
	var b Batch
	query := `
		SELECT b.id, b.hotel_id, b.file_name, b.uploaded_by, b.created_at,
			(SELECT COUNT(*) FROM occupancy_facts f WHERE f.batch_id = b.id)
		FROM occupancy_batches b
		WHERE b.id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.HotelID, &b.FileName, &b.UploadedBy, &b.CreatedAt, &b.FactCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(batchNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get occupancy batch: %w", err)
	}
	return &b, nil
}

// ListBatches retrieves a hotel's batches, newest first.
func (r *Repository) ListBatches(ctx context.Context, hotelID int64) ([]Batch, error) {
	query := `
		SELECT b.id, b.hotel_id, b.file_name, b.uploaded_by, b.created_at,
			(SELECT COUNT(*) FROM occupancy_facts f WHERE f.batch_id = b.id)
		FROM occupancy_batches b
		WHERE b.hotel_id = $1
		ORDER BY b.created_at DESC`

	rows, err := r.pool.Query(ctx, query, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list occupancy batches: %w", err)
	}
	defer rows.Close()

	var items []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.HotelID, &b.FileName, &b.UploadedBy, &b.CreatedAt, &b.FactCount); err != nil {
			return nil, fmt.Errorf("failed to scan occupancy batch: %w", err)
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate occupancy batches: %w", err)
	}
	return items, nil
}

// ListFactIDs returns the IDs of all facts in a batch.
func (r *Repository) ListFactIDs(ctx context.Context, batchID uuid.UUID) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM occupancy_facts WHERE batch_id = $1 ORDER BY id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fact ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan fact id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fact ids: %w", err)
	}
	return ids, nil
}

// DeleteBatch removes a batch and its facts, returning the fact count.
func (r *Repository) DeleteBatch(ctx context.Context, batchID uuid.UUID) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to begin batch deletion: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	factTag, err := tx.Exec(ctx, `DELETE FROM occupancy_facts WHERE batch_id = $1`, batchID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete occupancy facts: %w", err)
	}

	batchTag, err := tx.Exec(ctx, `DELETE FROM occupancy_batches WHERE id = $1`, batchID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete occupancy batch: %w", err)
	}
	if batchTag.RowsAffected() == 0 {
		return 0, apperr.NotFound(batchNotFoundMsg)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit batch deletion: %w", err)
	}
	return int(factTag.RowsAffected()), nil
}

// ListInHouse returns facts for rooms occupied on the given date, meaning the
// date falls inside the stay window.
func (r *Repository) ListInHouse(ctx context.Context, hotelID int64, date time.Time) ([]Fact, error) {
	query := `SELECT ` + factColumns + ` FROM occupancy_facts
		WHERE hotel_id = $1 AND check_in_date <= $2 AND check_out_date >= $2
		ORDER BY id`
	return r.listFacts(ctx, query, hotelID, date)
}

// ListArrivals returns facts for rooms checking in on the given date.
func (r *Repository) ListArrivals(ctx context.Context, hotelID int64, date time.Time) ([]Fact, error) {
	query := `SELECT ` + factColumns + ` FROM occupancy_facts
		WHERE hotel_id = $1 AND check_in_date = $2
		ORDER BY id`
	return r.listFacts(ctx, query, hotelID, date)
}

// ListDepartures returns facts for rooms checking out on the given date.
func (r *Repository) ListDepartures(ctx context.Context, hotelID int64, date time.Time) ([]Fact, error) {
	query := `SELECT ` + factColumns + ` FROM occupancy_facts
		WHERE hotel_id = $1 AND check_out_date = $2
		ORDER BY id`
	return r.listFacts(ctx, query, hotelID, date)
}

// ListHotelIDsWithFacts returns every hotel that has occupancy covering the
// given date. The scheduler uses this to fan out daily generation.
func (r *Repository) ListHotelIDsWithFacts(ctx context.Context, date time.Time) ([]int64, error) {
	query := `SELECT DISTINCT hotel_id FROM occupancy_facts
		WHERE check_in_date <= $1 AND check_out_date >= $1
		ORDER BY hotel_id`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels with facts: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan hotel id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hotel ids: %w", err)
	}
	return ids, nil
}

func (r *Repository) listFacts(ctx context.Context, query string, args ...any) ([]Fact, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list occupancy facts: %w", err)
	}
	defer rows.Close()

	var items []Fact
	for rows.Next() {
		var f Fact
		if err := rows.Scan(
			&f.ID, &f.BatchID, &f.HotelID, &f.RoomID, &f.GuestName,
			&f.CheckInDate, &f.CheckOutDate, &f.ArrivalAt, &f.DepartureAt, &f.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan occupancy fact: %w", err)
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate occupancy facts: %w", err)
	}
	return items, nil
}
