package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-property-booking/internal/domain/property"
)

type propertyRow struct {
	ID          string    `db:"id"`
	HostID      string    `db:"host_id"`
	Title       string    `db:"title"`
	Address     string    `db:"address"`
	City        string    `db:"city"`
	State       string    `db:"state"`
	PictureURLs string    `db:"picture_urls"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *propertyRow) toEntity() (*property.Property, error) {
	// picture_urls はTEXTカラムにJSON配列として保存される
	var urls []string
	if r.PictureURLs != "" {
		if err := json.Unmarshal([]byte(r.PictureURLs), &urls); err != nil {
			return nil, fmt.Errorf("画像URLの復元に失敗: %w", err)
		}
	}
	return &property.Property{
		ID: r.ID, HostID: r.HostID, Title: r.Title,
		Address: r.Address, City: r.City, State: r.State,
		PictureURLs: urls, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}, nil
}

type PropertyRepository struct{ db *sqlx.DB }

func NewPropertyRepository(db *sqlx.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) Create(ctx context.Context, p *property.Property) error {
	urls, err := json.Marshal(p.PictureURLs)
	if err != nil {
		return fmt.Errorf("画像URLの変換に失敗: %w", err)
	}
	query := `INSERT INTO properties (host_id, title, address, city, state, picture_urls, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, p.HostID, p.Title, p.Address, p.City, p.State, string(urls), p.CreatedAt, p.UpdatedAt).Scan(&p.ID); err != nil {
		return fmt.Errorf("物件作成に失敗: %w", err)
	}
	return nil
}

func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*property.Property, error) {
	var row propertyRow
	query := `SELECT id, host_id, title, address, city, state, picture_urls, created_at, updated_at FROM properties WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, property.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("物件取得に失敗: %w", err)
	}
	return row.toEntity()
}

func (r *PropertyRepository) List(ctx context.Context, limit, offset int) ([]*property.Property, error) {
	var rows []propertyRow
	query := `SELECT id, host_id, title, address, city, state, picture_urls, created_at, updated_at FROM properties ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("物件一覧取得に失敗: %w", err)
	}
	return toEntities(rows)
}

func (r *PropertyRepository) GetByHostID(ctx context.Context, hostID string) ([]*property.Property, error) {
	var rows []propertyRow
	query := `SELECT id, host_id, title, address, city, state, picture_urls, created_at, updated_at FROM properties WHERE host_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, hostID); err != nil {
		return nil, fmt.Errorf("ホストの物件一覧取得に失敗: %w", err)
	}
	return toEntities(rows)
}

func (r *PropertyRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("物件削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return property.ErrPropertyNotFound
	}
	return nil
}

func toEntities(rows []propertyRow) ([]*property.Property, error) {
	result := make([]*property.Property, len(rows))
	for i, row := range rows {
		p, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

var _ property.Repository = (*PropertyRepository)(nil)
