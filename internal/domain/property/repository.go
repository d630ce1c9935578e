package property

import "context"

// Repository は物件リポジトリのインターフェース
type Repository interface {
	// Create は新しい物件を作成する
	Create(ctx context.Context, property *Property) error

	// GetByID はIDから物件を取得する
	GetByID(ctx context.Context, id string) (*Property, error)

	// List は物件一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Property, error)

	// GetByHostID はホストIDから物件一覧を取得する
	GetByHostID(ctx context.Context, hostID string) ([]*Property, error)

	// Delete は物件を削除する
	Delete(ctx context.Context, id string) error
}
