package property

import "time"

// Property は物件エンティティを表す
// HostID は作成後に変更されない
type Property struct {
	ID          string
	HostID      string
	Title       string
	Address     string
	City        string
	State       string
	PictureURLs []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProperty は新しい物件を作成する
func NewProperty(hostID, title, address, city, state string, pictureURLs []string) *Property {
	now := time.Now()
	return &Property{
		HostID:      hostID,
		Title:       title,
		Address:     address,
		City:        city,
		State:       state,
		PictureURLs: pictureURLs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsOwnedBy は指定ユーザーが所有者かを返す
func (p *Property) IsOwnedBy(userID string) bool {
	return p.HostID == userID
}

// Validate は物件の検証を行う
func (p *Property) Validate() error {
	if p.HostID == "" {
		return ErrHostIDRequired
	}
	if p.Title == "" {
		return ErrTitleRequired
	}
	if p.Address == "" {
		return ErrAddressRequired
	}
	if p.City == "" {
		return ErrCityRequired
	}
	if p.State == "" {
		return ErrStateRequired
	}
	return nil
}

// Snapshot は予約一覧に添付する物件の読み取り専用ビュー
// 物件の現在の状態を反映し、予約時点の状態は保持しない
type Snapshot struct {
	PropertyID  string
	Title       string
	City        string
	State       string
	PictureURLs []string
	HostName    string
}
