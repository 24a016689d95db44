package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRows struct {
	pgx.Rows

	statuses []string
	idx      int
}

func (r *fakeRows) Next() bool {
	if r.idx < len(r.statuses) {
		r.idx++
		return true
	}
	return false
}

func (r *fakeRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.statuses[r.idx-1]
	return nil
}

func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Close()     {}

type fakeTx struct {
	pgx.Tx

	statuses   []string
	statements []string
	args       [][]any
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.statements = append(t.statements, sql)
	t.args = append(t.args, args)
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	t.statements = append(t.statements, sql)
	t.args = append(t.args, args)
	return &fakeRows{statuses: t.statuses}, nil
}

func TestRollupLocksTaskBeforeReadingDetails(t *testing.T) {
	tx := &fakeTx{statuses: []string{"completed", "completed"}}

	if err := (&Repository{}).rollupTx(context.Background(), tx, uuid.New(), time.Now()); err != nil {
		t.Fatalf("rollupTx: %v", err)
	}

	if len(tx.statements) != 3 {
		t.Fatalf("expected lock, status read and update, got %d statements", len(tx.statements))
	}
	if !strings.Contains(tx.statements[0], "FROM tasks") || !strings.Contains(tx.statements[0], "FOR UPDATE") {
		t.Fatalf("first statement must lock the task row, got %q", tx.statements[0])
	}
	if !strings.Contains(tx.statements[1], "FROM task_details") {
		t.Fatalf("detail statuses must be read after the task lock, got %q", tx.statements[1])
	}
}

func TestRollupWritesDerivedStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"all completed", []string{"completed", "completed"}, "completed"},
		{"last detail still open", []string{"completed", "pending"}, "in_progress"},
		{"dnd keeps task open", []string{"dnd_pending", "pending"}, "in_progress"},
		{"untouched", []string{"pending", "pending"}, "pending"},
	}

	for _, tc := range cases {
		tx := &fakeTx{statuses: tc.statuses}
		if err := (&Repository{}).rollupTx(context.Background(), tx, uuid.New(), time.Now()); err != nil {
			t.Fatalf("%s: rollupTx: %v", tc.name, err)
		}

		update := tx.args[len(tx.args)-1]
		if got := update[1].(string); got != tc.want {
			t.Errorf("%s: wrote task status %q, want %q", tc.name, got, tc.want)
		}
	}
}
