package repository

import (
	"github.com/jypark/reviewmoa-backend/internal/app/model"

	"gorm.io/gorm"
)

// GraphRepository 사용자-리뷰-상품 간선 저장소
// 간선의 수명은 리뷰의 수명과 같다: 리뷰 생성 시 두 간선을 만들고,
// 리뷰 삭제 시 함께 제거한다
type GraphRepository struct {
	db *gorm.DB
}

func NewGraphRepository(db *gorm.DB) *GraphRepository {
	return &GraphRepository{db: db}
}

// CreateReviewEdges 사용자→리뷰, 리뷰→상품 간선 생성
func (r *GraphRepository) CreateReviewEdges(userID, reviewID, productID uint) error {
	if err := r.db.Create(&model.UserReviewEdge{
		UserID:   userID,
		ReviewID: reviewID,
	}).Error; err != nil {
		return err
	}

	return r.db.Create(&model.ReviewProductEdge{
		ReviewID:  reviewID,
		ProductID: productID,
	}).Error
}

// DeleteReviewEdges 리뷰에 걸린 간선 전부 제거
func (r *GraphRepository) DeleteReviewEdges(reviewID uint) error {
	if err := r.db.Where("review_id = ?", reviewID).
		Delete(&model.UserReviewEdge{}).Error; err != nil {
		return err
	}

	return r.db.Where("review_id = ?", reviewID).
		Delete(&model.ReviewProductEdge{}).Error
}

// CountEdgesForReview 리뷰에 걸린 간선 개수 (양방향 합)
func (r *GraphRepository) CountEdgesForReview(reviewID uint) (int64, error) {
	var userEdges, productEdges int64

	if err := r.db.Model(&model.UserReviewEdge{}).
		Where("review_id = ?", reviewID).
		Count(&userEdges).Error; err != nil {
		return 0, err
	}

	if err := r.db.Model(&model.ReviewProductEdge{}).
		Where("review_id = ?", reviewID).
		Count(&productEdges).Error; err != nil {
		return 0, err
	}

	return userEdges + productEdges, nil
}

// GetReachableProducts 사용자 노드에서 간선을 따라 1~2홉 안에 닿는 상품 목록
// (사용자→리뷰→상품 순회를 인덱스 조인으로 표현; 중복 제거 외 별도 랭킹 없음)
func (r *GraphRepository) GetReachableProducts(userID uint) ([]model.Product, error) {
	var products []model.Product

	err := r.db.Model(&model.Product{}).
		Distinct("products.*").
		Joins("JOIN review_product_edges rpe ON rpe.product_id = products.id").
		Joins("JOIN user_review_edges ure ON ure.review_id = rpe.review_id").
		Where("ure.user_id = ?", userID).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}
