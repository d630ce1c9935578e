package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-property-booking/internal/domain/booking"
	"github.com/sanosuguru/go-property-booking/internal/domain/property"
	"github.com/sanosuguru/go-property-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-property-booking/internal/domain/user"
	"github.com/sanosuguru/go-property-booking/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-property-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-property-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-property-booking/internal/pkg/metrics"
)

// Caller は認証済みの呼び出し元を表す
// 認証はHTTPレイヤーで済んでいる前提で、ここではロール判定のみ行う
type Caller struct {
	UserID string
	Role   user.Role
}

// BookingWithProperty はゲスト向け予約一覧の1要素
// 物件スナップショットは照会時点の状態を反映する
type BookingWithProperty struct {
	Booking  *booking.Booking
	Property property.Snapshot
}

const (
	lockTTL        = 10 * time.Second
	lockMaxRetries = 3
	lockRetryDelay = 100 * time.Millisecond

	// 重複チェックと挿入の直列化失敗時の内部リトライ回数（1回のみ）
	admissionRetries = 1

	availabilityCacheTTL = 30 * time.Second
)

type BookingService struct {
	txManager    transaction.Manager
	bookingRepo  booking.Repository
	propertyRepo property.Repository
	userRepo     user.Repository
	lockManager  redisinfra.LockManagerInterface
	availCache   redisinfra.AvailabilityCacheInterface
	metrics      *metrics.Metrics
}

func NewBookingService(
	txManager transaction.Manager,
	bookingRepo booking.Repository,
	propertyRepo property.Repository,
	userRepo user.Repository,
	lockManager redisinfra.LockManagerInterface,
	availCache redisinfra.AvailabilityCacheInterface,
	m *metrics.Metrics,
) *BookingService {
	return &BookingService{
		txManager:    txManager,
		bookingRepo:  bookingRepo,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		lockManager:  lockManager,
		availCache:   availCache,
		metrics:      m,
	}
}

// RequestBooking は予約の受付判定を行う
// 同一物件に対する重複チェックと挿入は、物件単位の分散ロックと
// SERIALIZABLEトランザクションで直列化される
func (s *BookingService) RequestBooking(ctx context.Context, caller Caller, propertyID string, dateIn, dateOut time.Time) (*booking.Booking, error) {
	// 1. ゲスト以外は日付判定より前に拒否
	if caller.Role != user.RoleGuest {
		s.countAdmission("forbidden")
		return nil, booking.ErrForbiddenRole
	}

	// 2. 期間の検証
	stay, err := booking.NewDateRange(dateIn, dateOut)
	if err != nil {
		s.countAdmission("invalid_dates")
		return nil, err
	}

	// 3. 物件の存在確認
	if _, err := s.propertyRepo.GetByID(ctx, propertyID); err != nil {
		if errors.Is(err, property.ErrPropertyNotFound) {
			s.countAdmission("not_found")
		}
		return nil, err
	}

	// 4. 物件単位の分散ロックを取得（別物件の予約は互いにブロックしない）
	if s.lockManager != nil {
		lock, err := s.acquireLock(ctx, propertyID)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				s.countAdmission("contention")
				return nil, booking.ErrStoreContention
			}
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer s.releaseLock(ctx, lock)
	}

	// 5. 重複チェックと挿入（直列化失敗時は1回だけ再実行）
	b := booking.NewBooking(caller.UserID, propertyID, stay)
	if err := b.Validate(); err != nil {
		return nil, err
	}

	var admitErr error
	for attempt := 0; attempt <= admissionRetries; attempt++ {
		admitErr = s.admitOnce(ctx, b, stay)
		if admitErr == nil || !postgres.IsSerializationFailure(admitErr) {
			break
		}
		logger.Warn("予約判定の直列化失敗を再試行",
			zap.String("property_id", propertyID),
			zap.Int("attempt", attempt+1),
		)
	}
	if admitErr != nil {
		if postgres.IsSerializationFailure(admitErr) {
			s.countAdmission("contention")
			return nil, booking.ErrStoreContention
		}
		if errors.Is(admitErr, booking.ErrDateRangeConflict) {
			s.countAdmission("conflict")
		} else {
			s.countAdmission("error")
		}
		return nil, admitErr
	}

	// 6. 空き状況キャッシュを無効化
	if s.availCache != nil {
		if err := s.availCache.Invalidate(ctx, propertyID); err != nil {
			logger.Warn("空き状況キャッシュの無効化に失敗",
				zap.String("property_id", propertyID), zap.Error(err))
		}
	}

	s.countAdmission("success")
	return b, nil
}

// admitOnce は1つのSERIALIZABLEトランザクション内で重複チェックと挿入を実行する
func (s *BookingService) admitOnce(ctx context.Context, b *booking.Booking, stay booking.DateRange) error {
	tx, err := s.txManager.BeginSerializable(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	overlapping, err := s.bookingRepo.FindOverlapping(ctx, tx, b.PropertyID, stay)
	if err != nil {
		return err
	}
	if len(overlapping) > 0 {
		return booking.ErrDateRangeConflict
	}
	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		if postgres.IsSerializationFailure(err) {
			return err
		}
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}

// ListBookingsForGuest はゲスト自身の予約一覧を物件スナップショット付きで返す
// チェックイン日の降順、同日の場合は作成順
func (s *BookingService) ListBookingsForGuest(ctx context.Context, caller Caller) ([]BookingWithProperty, error) {
	if caller.Role != user.RoleGuest {
		return nil, booking.ErrForbiddenRole
	}

	bookings, err := s.bookingRepo.GetByGuestID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	snapshots := make(map[string]property.Snapshot)
	result := make([]BookingWithProperty, len(bookings))
	for i, b := range bookings {
		snap, ok := snapshots[b.PropertyID]
		if !ok {
			snap, err = s.propertySnapshot(ctx, b.PropertyID)
			if err != nil {
				return nil, err
			}
			snapshots[b.PropertyID] = snap
		}
		result[i] = BookingWithProperty{Booking: b, Property: snap}
	}
	return result, nil
}

// ListBookingsForProperty は物件の予約一覧を返す
// 呼び出し元が物件の所有ホストでなければ拒否する
func (s *BookingService) ListBookingsForProperty(ctx context.Context, caller Caller, propertyID string) ([]*booking.Booking, error) {
	p, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(caller.UserID) {
		return nil, property.ErrNotPropertyOwner
	}
	return s.bookingRepo.GetByPropertyID(ctx, propertyID)
}

// CheckAvailability は指定期間が空いているかを返す読み取り専用の照会
// 予約済み期間はキャッシュから取得し、ミス時にストアから再構築する
func (s *BookingService) CheckAvailability(ctx context.Context, propertyID string, dateIn, dateOut time.Time) (bool, error) {
	stay, err := booking.NewDateRange(dateIn, dateOut)
	if err != nil {
		return false, err
	}
	if _, err := s.propertyRepo.GetByID(ctx, propertyID); err != nil {
		return false, err
	}

	ranges, err := s.bookedRanges(ctx, propertyID)
	if err != nil {
		return false, err
	}
	for _, r := range ranges {
		booked := booking.DateRange{DateIn: r.DateIn, DateOut: r.DateOut}
		if stay.Overlaps(booked) {
			return false, nil
		}
	}
	return true, nil
}

func (s *BookingService) bookedRanges(ctx context.Context, propertyID string) ([]redisinfra.BookedRange, error) {
	if s.availCache != nil {
		ranges, err := s.availCache.GetBookedRanges(ctx, propertyID)
		if err == nil {
			return ranges, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("空き状況キャッシュの取得に失敗",
				zap.String("property_id", propertyID), zap.Error(err))
		}
	}

	bookings, err := s.bookingRepo.GetByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	ranges := make([]redisinfra.BookedRange, len(bookings))
	for i, b := range bookings {
		ranges[i] = redisinfra.BookedRange{DateIn: b.DateIn, DateOut: b.DateOut}
	}

	if s.availCache != nil {
		if err := s.availCache.SetBookedRanges(ctx, propertyID, ranges, availabilityCacheTTL); err != nil {
			logger.Warn("空き状況キャッシュの保存に失敗",
				zap.String("property_id", propertyID), zap.Error(err))
		}
	}
	return ranges, nil
}

func (s *BookingService) propertySnapshot(ctx context.Context, propertyID string) (property.Snapshot, error) {
	p, err := s.propertyRepo.GetByID(ctx, propertyID)
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

func (s *BookingService) acquireLock(ctx context.Context, propertyID string) (redisinfra.Lock, error) {
	start := time.Now()
	lock, err := s.lockManager.AcquireLockWithRetry(ctx, "property:"+propertyID, lockTTL, lockMaxRetries, lockRetryDelay)
	if s.metrics != nil {
		status := "success"
		if err != nil {
			status = "failed"
		}
		s.metrics.DistributedLockDuration.WithLabelValues("acquire", status).Observe(time.Since(start).Seconds())
	}
	return lock, err
}

func (s *BookingService) releaseLock(ctx context.Context, lock redisinfra.Lock) {
	start := time.Now()
	err := lock.Release(ctx)
	if err != nil {
		logger.Warn("ロック解放に失敗", zap.Error(err))
	}
	if s.metrics != nil {
		status := "success"
		if err != nil {
			status = "failed"
		}
		s.metrics.DistributedLockDuration.WithLabelValues("release", status).Observe(time.Since(start).Seconds())
	}
}

func (s *BookingService) countAdmission(status string) {
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(status).Inc()
	}
}
