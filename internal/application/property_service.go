package application

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-property-booking/internal/domain/booking"
	"github.com/sanosuguru/go-property-booking/internal/domain/property"
	"github.com/sanosuguru/go-property-booking/internal/domain/user"
)

type PropertyService struct {
	propertyRepo property.Repository
	bookingRepo  booking.Repository
	userRepo     user.Repository
}

func NewPropertyService(propertyRepo property.Repository, bookingRepo booking.Repository, userRepo user.Repository) *PropertyService {
	return &PropertyService{propertyRepo: propertyRepo, bookingRepo: bookingRepo, userRepo: userRepo}
}

type CreatePropertyInput struct {
	Title       string
	Address     string
	City        string
	State       string
	PictureURLs []string
}

// CreateProperty は物件を登録する（ホストのみ）
func (s *PropertyService) CreateProperty(ctx context.Context, caller Caller, input CreatePropertyInput) (*property.Property, error) {
	if caller.Role != user.RoleHost {
		return nil, property.ErrNotPropertyOwner
	}
	p := property.NewProperty(caller.UserID, input.Title, input.Address, input.City, input.State, input.PictureURLs)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.propertyRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("物件作成に失敗しました: %w", err)
	}
	return p, nil
}

func (s *PropertyService) GetProperty(ctx context.Context, id string) (*property.Property, error) {
	return s.propertyRepo.GetByID(ctx, id)
}

func (s *PropertyService) ListProperties(ctx context.Context, limit, offset int) ([]*property.Property, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.propertyRepo.List(ctx, limit, offset)
}

// ListMyProperties はホスト自身の物件一覧を返す
func (s *PropertyService) ListMyProperties(ctx context.Context, caller Caller) ([]*property.Property, error) {
	if caller.Role != user.RoleHost {
		return nil, property.ErrNotPropertyOwner
	}
	return s.propertyRepo.GetByHostID(ctx, caller.UserID)
}

// DeleteProperty は物件を削除する
// 所有者のみ削除でき、予約が存在する場合は削除できない
func (s *PropertyService) DeleteProperty(ctx context.Context, caller Caller, id string) error {
	p, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.IsOwnedBy(caller.UserID) {
		return property.ErrNotPropertyOwner
	}
	hasBookings, err := s.bookingRepo.ExistsForProperty(ctx, id)
	if err != nil {
		return err
	}
	if hasBookings {
		return property.ErrPropertyHasBookings
	}
	return s.propertyRepo.Delete(ctx, id)
}

// GetSnapshot は物件の読み取り専用ビューをホスト名付きで返す
func (s *PropertyService) GetSnapshot(ctx context.Context, id string) (property.Snapshot, error) {
	p, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return property.Snapshot{}, err
	}
	hostName := ""
	if host, err := s.userRepo.GetByID(ctx, p.HostID); err == nil {
		hostName = host.Name
	}
	return property.Snapshot{
		PropertyID:  p.ID,
		Title:       p.Title,
		City:        p.City,
		State:       p.State,
		PictureURLs: p.PictureURLs,
		HostName:    hostName,
	}, nil
}
