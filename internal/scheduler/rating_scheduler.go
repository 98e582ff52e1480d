package scheduler

import (
	"github.com/jypark/reviewmoa-backend/internal/app/service"
	"github.com/jypark/reviewmoa-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// RatingScheduler 상품 집계 보정 스케줄러
// 리뷰 쓰기 경로에서 집계 갱신이 실패해 어긋난 상품 평점을 주기적으로 복구한다
type RatingScheduler struct {
	cron          *cron.Cron
	reviewService *service.ReviewService
	spec          string
}

// NewRatingScheduler 집계 보정 스케줄러 생성
func NewRatingScheduler(reviewService *service.ReviewService, spec string) *RatingScheduler {
	return &RatingScheduler{
		cron:          cron.New(),
		reviewService: reviewService,
		spec:          spec,
	}
}

// Start 스케줄러 시작
func (s *RatingScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		logger.Info("Starting scheduled aggregate repair sweep", nil)

		repaired, err := s.reviewService.RepairAllAggregates()
		if err != nil {
			logger.Error("Aggregate repair sweep failed", err)
			return
		}

		logger.Info("Aggregate repair sweep finished", map[string]interface{}{
			"repaired": repaired,
		})
	})

	if err != nil {
		logger.Error("Failed to add cron job for aggregate repair", err)
		return err
	}

	s.cron.Start()
	logger.Info("Rating scheduler started successfully", map[string]interface{}{
		"spec": s.spec,
	})

	return nil
}

// Stop 스케줄러 중지
func (s *RatingScheduler) Stop() {
	logger.Info("Stopping rating scheduler...", nil)
	s.cron.Stop()
	logger.Info("Rating scheduler stopped", nil)
}
