package recordings

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"call-recording/pkg/utils"
)

func openTestPostgres(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("CALL_RECORDING_TEST_DSN")
	if dsn == "" {
		t.Skip("CALL_RECORDING_TEST_DSN not set")
	}
	ctx := context.Background()
	db, err := utils.OpenPostgres(ctx, "pgx", dsn, utils.PostgresPoolConfig{})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := utils.ApplySchema(ctx, db, Schema...); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

func TestPostgresRepo_CreateAndSearch(t *testing.T) {
	db := openTestPostgres(t)
	repo := NewPostgresRepo(db)
	ctx := context.Background()

	prefix := fmt.Sprintf("t%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), `DELETE FROM recordings WHERE caller_id LIKE $1`, prefix+"%")
	})

	callers := []string{prefix + "-1%", prefix + "-1_", prefix + "-10", prefix + "-11", prefix + "-12"}
	var ids []int64
	for _, caller := range callers {
		caller := caller
		d := 30
		rec, err := repo.Create(ctx, Recording{CallerID: &caller, Duration: &d, Status: StatusCompleted, RecordingURL: "https://files/x.mp3"})
		if err != nil {
			t.Fatalf("create %s: %v", caller, err)
		}
		if rec.ID == 0 || rec.Date.IsZero() {
			t.Fatalf("expected id and date to be assigned, got %+v", rec)
		}
		ids = append(ids, rec.ID)
	}

	rows, total, err := repo.Search(ctx, prefix+"-1%", 1, 10)
	if err != nil || total != 1 || len(rows) != 1 || rows[0].ID != ids[0] {
		t.Fatalf("literal percent: total=%d rows=%+v err=%v", total, rows, err)
	}
	rows, total, err = repo.Search(ctx, prefix+"-1_", 1, 10)
	if err != nil || total != 1 || len(rows) != 1 || rows[0].ID != ids[1] {
		t.Fatalf("literal underscore: total=%d rows=%+v err=%v", total, rows, err)
	}

	page1, total, err := repo.Search(ctx, prefix, 1, 2)
	if err != nil || total != 5 || len(page1) != 2 {
		t.Fatalf("page 1: total=%d rows=%d err=%v", total, len(page1), err)
	}
	page3, total, err := repo.Search(ctx, prefix, 3, 2)
	if err != nil || total != 5 || len(page3) != 1 || page3[0].ID != ids[4] {
		t.Fatalf("page 3: total=%d rows=%+v err=%v", total, page3, err)
	}
	if page1[0].ID != ids[0] || page1[1].ID != ids[1] {
		t.Fatalf("expected id order, got %d %d", page1[0].ID, page1[1].ID)
	}
	if page1[0].Duration == nil || *page1[0].Duration != 30 || page1[0].UserID != nil {
		t.Fatalf("unexpected scanned fields: %+v", page1[0])
	}
}

func TestPostgresRepo_CreateRequiresStatus(t *testing.T) {
	db := openTestPostgres(t)
	if _, err := NewPostgresRepo(db).Create(context.Background(), Recording{}); err == nil {
		t.Fatalf("expected error for empty status")
	}
}
