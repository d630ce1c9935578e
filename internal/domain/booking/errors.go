package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound    = errors.New("予約が見つかりません")
	ErrInvalidDateRange   = errors.New("チェックイン日はチェックアウト日より前である必要があります")
	ErrDateRangeConflict  = errors.New("指定期間は既に予約されています")
	ErrForbiddenRole      = errors.New("予約を作成できるのはゲストのみです")
	ErrStoreContention    = errors.New("予約が競合したため処理できませんでした。再試行してください")
	ErrGuestIDRequired    = errors.New("ゲストIDは必須です")
	ErrPropertyIDRequired = errors.New("物件IDは必須です")
)
