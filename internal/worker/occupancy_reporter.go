package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-property-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-property-booking/internal/pkg/metrics"
)

// BookingCounter は稼働状況の集計に必要な読み取り操作のインターフェース
type BookingCounter interface {
	CountStaying(ctx context.Context, day time.Time) (int, error)
	CountAll(ctx context.Context) (int, error)
}

// OccupancyReporter は予約の稼働状況メトリクスを定期更新するワーカー
type OccupancyReporter struct {
	bookings BookingCounter
	metrics  *metrics.Metrics
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewOccupancyReporter は新しいレポーターを作成
func NewOccupancyReporter(bookings BookingCounter, m *metrics.Metrics, interval time.Duration) *OccupancyReporter {
	return &OccupancyReporter{
		bookings: bookings,
		metrics:  m,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はレポーターを開始
func (r *OccupancyReporter) Start(ctx context.Context) {
	logger.Info("稼働状況レポーター開始", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	// 起動直後に一度更新する
	r.report(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("稼働状況レポーター停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("稼働状況レポーター停止（シグナル受信）")
			return
		case <-ticker.C:
			r.report(ctx)
		}
	}
}

// Stop はレポーターを停止
func (r *OccupancyReporter) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// report はゲージを最新の値に更新
func (r *OccupancyReporter) report(ctx context.Context) {
	log := logger.Get()

	staying, err := r.bookings.CountStaying(ctx, time.Now().UTC())
	if err != nil {
		log.Error("滞在中予約数の取得に失敗", zap.Error(err))
		return
	}
	total, err := r.bookings.CountAll(ctx)
	if err != nil {
		log.Error("予約総数の取得に失敗", zap.Error(err))
		return
	}

	r.metrics.BookingsInProgress.Set(float64(staying))
	r.metrics.BookingsStored.Set(float64(total))
	log.Debug("稼働状況を更新", zap.Int("staying", staying), zap.Int("total", total))
}
