package property

import "errors"

// Property ドメインのエラー定義
var (
	ErrPropertyNotFound    = errors.New("物件が見つかりません")
	ErrNotPropertyOwner    = errors.New("物件の所有者ではありません")
	ErrPropertyHasBookings = errors.New("予約が存在する物件は削除できません")
	ErrHostIDRequired      = errors.New("ホストIDは必須です")
	ErrTitleRequired       = errors.New("タイトルは必須です")
	ErrAddressRequired     = errors.New("住所は必須です")
	ErrCityRequired        = errors.New("市区町村は必須です")
	ErrStateRequired       = errors.New("州・都道府県は必須です")
)
