package booking

import (
	"context"
	"time"

	"github.com/sanosuguru/go-property-booking/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, booking *Booking) error

	// FindOverlapping は指定期間と重なる予約を返す（トランザクション内で実行）
	// 重複チェックと挿入は同一トランザクションで直列化されなければならない
	FindOverlapping(ctx context.Context, tx transaction.Tx, propertyID string, stay DateRange) ([]*Booking, error)

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetByGuestID はゲストの予約一覧を取得する
	// チェックイン日の降順、同日の場合は作成順で返す
	GetByGuestID(ctx context.Context, guestID string) ([]*Booking, error)

	// GetByPropertyID は物件の予約一覧を作成順で取得する
	GetByPropertyID(ctx context.Context, propertyID string) ([]*Booking, error)

	// ExistsForProperty は物件に予約が存在するかを返す
	ExistsForProperty(ctx context.Context, propertyID string) (bool, error)

	// CountStaying は指定日に滞在中の予約数を返す
	CountStaying(ctx context.Context, day time.Time) (int, error)

	// CountAll は予約の総数を返す
	CountAll(ctx context.Context) (int, error)
}
