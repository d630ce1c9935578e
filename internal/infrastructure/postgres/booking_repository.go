package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-property-booking/internal/domain/booking"
	"github.com/sanosuguru/go-property-booking/internal/domain/transaction"
)

type bookingRow struct {
	ID         string    `db:"id"`
	GuestID    string    `db:"guest_id"`
	PropertyID string    `db:"property_id"`
	DateIn     time.Time `db:"date_in"`
	DateOut    time.Time `db:"date_out"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	return &booking.Booking{
		ID: r.ID, GuestID: r.GuestID, PropertyID: r.PropertyID,
		DateIn: r.DateIn.UTC(), DateOut: r.DateOut.UTC(),
		CreatedAt: r.CreatedAt,
	}
}

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// IsSerializationFailure はトランザクションの直列化失敗かを返す
// 40001: serialization_failure, 40P01: deadlock_detected
func IsSerializationFailure(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションが不正です")
	}
	query := `INSERT INTO bookings (guest_id, property_id, date_in, date_out, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, b.GuestID, b.PropertyID, b.DateIn, b.DateOut, b.CreatedAt).Scan(&b.ID); err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23P01": // exclusion_violation: 期間排他制約（最終防衛線）
				return booking.ErrDateRangeConflict
			case "23503": // foreign_key_violation
				return fmt.Errorf("参照先が存在しません: %w", err)
			}
		}
		if IsSerializationFailure(err) {
			return err
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

func (r *BookingRepository) FindOverlapping(ctx context.Context, tx transaction.Tx, propertyID string, stay booking.DateRange) ([]*booking.Booking, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, fmt.Errorf("トランザクションが不正です")
	}
	// 半開区間の重複条件: existing.date_in < new.date_out AND existing.date_out > new.date_in
	query := `SELECT id, guest_id, property_id, date_in, date_out, created_at FROM bookings WHERE property_id = $1 AND date_in < $2 AND date_out > $3`
	var rows []bookingRow
	if err := sqlxTx.SelectContext(ctx, &rows, query, propertyID, stay.DateOut, stay.DateIn); err != nil {
		if IsSerializationFailure(err) {
			return nil, err
		}
		return nil, fmt.Errorf("重複予約の検索に失敗: %w", err)
	}
	result := make([]*booking.Booking, len(rows))
	for i, row := range rows {
		result[i] = row.toEntity()
	}
	return result, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT id, guest_id, property_id, date_in, date_out, created_at FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) GetByGuestID(ctx context.Context, guestID string) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT id, guest_id, property_id, date_in, date_out, created_at FROM bookings WHERE guest_id = $1 ORDER BY date_in DESC, created_at ASC`
	if err := r.db.SelectContext(ctx, &rows, query, guestID); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*booking.Booking, len(rows))
	for i, row := range rows {
		result[i] = row.toEntity()
	}
	return result, nil
}

func (r *BookingRepository) GetByPropertyID(ctx context.Context, propertyID string) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT id, guest_id, property_id, date_in, date_out, created_at FROM bookings WHERE property_id = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &rows, query, propertyID); err != nil {
		return nil, fmt.Errorf("物件の予約一覧取得に失敗: %w", err)
	}
	result := make([]*booking.Booking, len(rows))
	for i, row := range rows {
		result[i] = row.toEntity()
	}
	return result, nil
}

func (r *BookingRepository) ExistsForProperty(ctx context.Context, propertyID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE property_id = $1)`
	if err := r.db.GetContext(ctx, &exists, query, propertyID); err != nil {
		return false, fmt.Errorf("予約有無の確認に失敗: %w", err)
	}
	return exists, nil
}

func (r *BookingRepository) CountStaying(ctx context.Context, day time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM bookings WHERE date_in <= $1 AND date_out > $1`
	if err := r.db.GetContext(ctx, &count, query, day); err != nil {
		return 0, fmt.Errorf("滞在中予約数の取得に失敗: %w", err)
	}
	return count, nil
}

func (r *BookingRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM bookings`); err != nil {
		return 0, fmt.Errorf("予約総数の取得に失敗: %w", err)
	}
	return count, nil
}

var _ booking.Repository = (*BookingRepository)(nil)
