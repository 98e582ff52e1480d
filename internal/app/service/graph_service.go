package service

import (
	"github.com/jypark/reviewmoa-backend/internal/app/model"
	"github.com/jypark/reviewmoa-backend/internal/app/repository"
	"github.com/jypark/reviewmoa-backend/pkg/logger"
)

// GraphService 리뷰 그래프 질의
// 사용자 → 리뷰 → 상품 간선 테이블 위에서 추천/중복 탐지를 수행한다
type GraphService struct {
	graphRepo  *repository.GraphRepository
	reviewRepo *repository.ReviewRepository
}

func NewGraphService(graphRepo *repository.GraphRepository, reviewRepo *repository.ReviewRepository) *GraphService {
	return &GraphService{
		graphRepo:  graphRepo,
		reviewRepo: reviewRepo,
	}
}

// GetRecommendations 사용자가 리뷰를 통해 도달 가능한 상품 목록
// user_review_edges → review_product_edges 1~2단계 도보를 조인으로 표현
func (s *GraphService) GetRecommendations(userID uint) ([]model.Product, error) {
	products, err := s.graphRepo.GetReachableProducts(userID)
	if err != nil {
		logger.Error("Failed to run recommendation traversal", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return products, nil
}

// GetDuplicateReviews 평점과 내용이 완전히 같은 리뷰 쌍 탐지
// 전체 리뷰 셀프 조인이라 리뷰 수에 대해 O(n²)로 동작한다
func (s *GraphService) GetDuplicateReviews() ([]repository.DuplicateReviewPair, error) {
	pairs, err := s.reviewRepo.GetDuplicateReviewPairs()
	if err != nil {
		logger.Error("Failed to detect duplicate reviews", err, nil)
		return nil, err
	}

	if len(pairs) > 0 {
		logger.Warn("Duplicate review pairs detected", map[string]interface{}{
			"count": len(pairs),
		})
	}

	return pairs, nil
}
