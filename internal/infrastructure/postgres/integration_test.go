//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-property-booking/internal/config"
)

// setupTestDB はテスト用DBへ接続し、マイグレーション適用とテーブル初期化を行う
// 接続できない環境ではテストをスキップする
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	cfg := config.Load()
	db, err := NewConnection(&cfg.Database)
	if err != nil {
		t.Skipf("テスト用データベースに接続できません: %v", err)
	}

	if err := RunMigrations(db.DB, "../../../migrations"); err != nil {
		db.Close()
		t.Fatalf("マイグレーションに失敗: %v", err)
	}

	db.MustExec("TRUNCATE bookings, properties, users CASCADE")

	t.Cleanup(func() {
		db.MustExec("TRUNCATE bookings, properties, users CASCADE")
		db.Close()
	})
	return db
}

func createTestUser(t *testing.T, db *sqlx.DB, name, email, role string) string {
	t.Helper()
	var id string
	err := db.QueryRow(
		`INSERT INTO users (name, email, hashed_password, role) VALUES ($1, $2, 'hash', $3) RETURNING id`,
		name, email, role,
	).Scan(&id)
	if err != nil {
		t.Fatalf("テストユーザーの作成に失敗: %v", err)
	}
	return id
}

func createTestProperty(t *testing.T, db *sqlx.DB, hostID, title string) string {
	t.Helper()
	var id string
	err := db.QueryRow(
		`INSERT INTO properties (host_id, title, address, city, state, picture_urls)
		 VALUES ($1, $2, '1-2-3 Beach St', 'Santa Cruz', 'CA', '[]') RETURNING id`,
		hostID, title,
	).Scan(&id)
	if err != nil {
		t.Fatalf("テスト物件の作成に失敗: %v", err)
	}
	return id
}

var testCtx = context.Background()
