package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/jypark/reviewmoa-backend/internal/app/model"
	"github.com/jypark/reviewmoa-backend/internal/app/repository"
	"github.com/jypark/reviewmoa-backend/internal/storage"
	"github.com/jypark/reviewmoa-backend/internal/websocket"
	"github.com/jypark/reviewmoa-backend/pkg/logger"
	"github.com/jypark/reviewmoa-backend/pkg/redis"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrEmptyComment    = errors.New("comment must not be empty")
	ErrNotReviewAuthor = errors.New("only the author or an admin can modify this review")
)

// ReviewService 리뷰 정합성 엔진
//
// reviews 테이블이 유일한 정본이고, 나머지는 전부 파생 데이터다:
//   - products.meta_* 컬럼 (집계 캐시)
//   - Redis 평점 캐시
//   - user_review_edges / review_product_edges (그래프 간선)
//   - ReviewSummary (조회 시 조인으로 생성, 저장 안 함)
//
// 리뷰 쓰기 연산마다 파생 데이터를 순서대로 갱신한다.
// 간선 생성 실패는 경고 후 계속 진행하고, 집계 갱신 실패는 에러로 올린다.
// 트랜잭션 롤백은 하지 않으며, 어긋난 집계는 야간 보정 스윕이 복구한다.
type ReviewService struct {
	reviewRepo  *repository.ReviewRepository
	productRepo repository.ProductRepository
	graphRepo   *repository.GraphRepository
	imageStore  storage.ImageStore
	hub         *websocket.Hub
}

func NewReviewService(
	reviewRepo *repository.ReviewRepository,
	productRepo repository.ProductRepository,
	graphRepo *repository.GraphRepository,
	imageStore storage.ImageStore,
	hub *websocket.Hub,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		graphRepo:   graphRepo,
		imageStore:  imageStore,
		hub:         hub,
	}
}

// CreateReview 리뷰 생성
// 정본 리뷰 저장 → 그래프 간선 → 상품 집계 → Redis 캐시 → 실시간 이벤트 순서로 진행
func (s *ReviewService) CreateReview(userID uint, productID uint, rating int, comment string, images []string) (*model.Review, *model.ReviewSummary, error) {
	// 검증 실패로 반환하는 모든 경로에서 이미 저장된 업로드 파일을 정리한다
	if rating < 1 || rating > 5 {
		s.releaseImages(images)
		return nil, nil, ErrInvalidRating
	}
	if strings.TrimSpace(comment) == "" {
		s.releaseImages(images)
		return nil, nil, ErrEmptyComment
	}

	// 상품 존재 확인
	if _, err := s.productRepo.FindByID(productID); err != nil {
		s.releaseImages(images)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProductNotFound
		}
		return nil, nil, err
	}

	review := &model.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		Images:    pq.StringArray(images),
	}

	if err := s.reviewRepo.CreateReview(review); err != nil {
		logger.Error("Failed to create review", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		// 정본 저장 실패 시 업로드된 이미지는 남기지 않는다
		s.releaseImages(images)
		return nil, nil, err
	}

	// 그래프 간선: 실패해도 리뷰 자체는 유효하므로 경고만 남긴다
	if err := s.graphRepo.CreateReviewEdges(userID, review.ID, productID); err != nil {
		logger.Warn("Failed to create review edges", map[string]interface{}{
			"review_id": review.ID,
			"error":     err.Error(),
		})
	}

	if err := s.RecomputeAggregate(productID); err != nil {
		logger.Error("Failed to recompute product aggregate after create", err, map[string]interface{}{
			"review_id":  review.ID,
			"product_id": productID,
		})
		return nil, nil, err
	}

	loaded, err := s.reviewRepo.GetReviewByID(review.ID)
	if err != nil {
		return nil, nil, err
	}
	summary := buildReviewSummary(loaded)

	s.hub.PublishReviewEvent(websocket.EventReviewCreated, productID, summary)

	logger.Info("Review created", map[string]interface{}{
		"review_id":  review.ID,
		"user_id":    userID,
		"product_id": productID,
		"rating":     rating,
	})

	return loaded, &summary, nil
}

// UpdateReview 리뷰 수정 (작성자 또는 관리자만)
// imagesToKeep에 없는 기존 이미지는 DB 반영 성공 후에만 삭제한다
func (s *ReviewService) UpdateReview(
	reviewID uint,
	callerID uint,
	callerRole model.UserRole,
	rating *int,
	comment *string,
	imagesToKeep []string,
	newImages []string,
) (*model.Review, error) {
	review, err := s.reviewRepo.GetReviewByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.releaseImages(newImages)
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	if review.UserID != callerID && callerRole != model.RoleAdmin {
		s.releaseImages(newImages)
		return nil, ErrNotReviewAuthor
	}

	ratingChanged := false
	if rating != nil {
		if *rating < 1 || *rating > 5 {
			s.releaseImages(newImages)
			return nil, ErrInvalidRating
		}
		ratingChanged = *rating != review.Rating
		review.Rating = *rating
	}
	if comment != nil {
		if strings.TrimSpace(*comment) == "" {
			s.releaseImages(newImages)
			return nil, ErrEmptyComment
		}
		review.Comment = *comment
	}

	// 최종 이미지 = 유지 목록 ∪ 새로 업로드된 이미지
	keep := make(map[string]bool, len(imagesToKeep))
	for _, image := range imagesToKeep {
		keep[image] = true
	}
	var dropped []string
	for _, image := range review.Images {
		if !keep[image] {
			dropped = append(dropped, image)
		}
	}
	review.Images = pq.StringArray(append(imagesToKeep, newImages...))

	if err := s.reviewRepo.UpdateReview(review); err != nil {
		logger.Error("Failed to update review", err, map[string]interface{}{
			"review_id": reviewID,
		})
		s.releaseImages(newImages)
		return nil, err
	}

	// DB 반영이 끝난 뒤에만 빠진 이미지를 정리한다
	s.releaseImages(dropped)

	// 집계는 평점이 바뀐 경우에만 다시 계산
	if ratingChanged {
		if err := s.RecomputeAggregate(review.ProductID); err != nil {
			logger.Error("Failed to recompute product aggregate after update", err, map[string]interface{}{
				"review_id":  reviewID,
				"product_id": review.ProductID,
			})
			return nil, err
		}
	}

	loaded, err := s.reviewRepo.GetReviewByID(reviewID)
	if err != nil {
		return nil, err
	}

	s.hub.PublishReviewEvent(websocket.EventReviewUpdated, review.ProductID, buildReviewSummary(loaded))

	logger.Info("Review updated", map[string]interface{}{
		"review_id":      reviewID,
		"rating_changed": ratingChanged,
	})

	return loaded, nil
}

// DeleteReview 리뷰 삭제 (작성자 또는 관리자만)
// 이미지 → 정본 리뷰 → 간선 순서로 제거하고 집계는 항상 다시 계산한다
func (s *ReviewService) DeleteReview(reviewID uint, callerID uint, callerRole model.UserRole) error {
	review, err := s.reviewRepo.GetReviewByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}

	if review.UserID != callerID && callerRole != model.RoleAdmin {
		return ErrNotReviewAuthor
	}

	s.releaseImages(review.Images)

	if err := s.reviewRepo.DeleteReview(reviewID); err != nil {
		logger.Error("Failed to delete review", err, map[string]interface{}{
			"review_id": reviewID,
		})
		return err
	}

	if err := s.graphRepo.DeleteReviewEdges(reviewID); err != nil {
		logger.Warn("Failed to delete review edges", map[string]interface{}{
			"review_id": reviewID,
			"error":     err.Error(),
		})
	}

	if err := s.RecomputeAggregate(review.ProductID); err != nil {
		logger.Error("Failed to recompute product aggregate after delete", err, map[string]interface{}{
			"review_id":  reviewID,
			"product_id": review.ProductID,
		})
		return err
	}

	s.hub.PublishReviewEvent(websocket.EventReviewDeleted, review.ProductID, map[string]interface{}{
		"review_id": reviewID,
	})

	logger.Info("Review deleted", map[string]interface{}{
		"review_id":  reviewID,
		"product_id": review.ProductID,
	})

	return nil
}

// ProductReviews 상품별 리뷰 목록 + 집계
type ProductReviews struct {
	Reviews      []model.ReviewSummary `json:"reviews"`
	AvgRating    *float64              `json:"avg_rating"`
	TotalReviews int                   `json:"total_reviews"`
}

// GetReviewsByProduct 상품별 리뷰 요약 목록과 집계 반환
func (s *ReviewService) GetReviewsByProduct(productID uint) (*ProductReviews, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	reviews, err := s.reviewRepo.GetReviewsByProductID(productID)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.ReviewSummary, 0, len(reviews))
	for _, review := range reviews {
		summaries = append(summaries, buildReviewSummary(&review))
	}

	return &ProductReviews{
		Reviews:      summaries,
		AvgRating:    product.Meta.AvgRating,
		TotalReviews: product.Meta.TotalReviews,
	}, nil
}

// RecomputeAggregate 정본 리뷰에서 상품 집계를 다시 계산해 저장
// 평균은 소수 첫째 자리 반올림, 5.0 초과 방지, 리뷰가 없으면 null
// 몇 번을 다시 실행해도 결과가 같다 (보정 스윕에서도 호출됨)
func (s *ReviewService) RecomputeAggregate(productID uint) error {
	agg, err := s.reviewRepo.GetProductAggregate(productID)
	if err != nil {
		return err
	}

	var avgRating *float64
	if agg.TotalReviews > 0 {
		rounded := math.Round(agg.AvgRating*10) / 10
		if rounded > 5.0 {
			rounded = 5.0
		}
		avgRating = &rounded
	}

	if err := s.productRepo.UpdateMeta(productID, avgRating, int(agg.TotalReviews)); err != nil {
		return err
	}

	// Redis 캐시는 베스트 에포트: 실패해도 DB 집계가 정본이다
	if err := redis.CacheProductRating(context.Background(), productID, avgRating, int(agg.TotalReviews)); err != nil {
		logger.Warn("Failed to cache product rating", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
	}

	return nil
}

// RepairAllAggregates 전체 상품 집계 보정 스윕 (스케줄러에서 호출)
func (s *ReviewService) RepairAllAggregates() (int, error) {
	productIDs, err := s.productRepo.FindAllIDs()
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, productID := range productIDs {
		if err := s.RecomputeAggregate(productID); err != nil {
			logger.Error("Failed to repair product aggregate", err, map[string]interface{}{
				"product_id": productID,
			})
			continue
		}
		repaired++
	}

	logger.Info("Aggregate repair sweep completed", map[string]interface{}{
		"total":    len(productIDs),
		"repaired": repaired,
	})

	return repaired, nil
}

func (s *ReviewService) releaseImages(images []string) {
	for _, image := range images {
		if err := s.imageStore.Delete(image); err != nil {
			logger.Warn("Failed to delete review image", map[string]interface{}{
				"image": image,
				"error": err.Error(),
			})
		}
	}
}
