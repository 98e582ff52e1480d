package repository

import (
	"github.com/jypark/reviewmoa-backend/internal/app/model"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// CreateReview 리뷰 생성
func (r *ReviewRepository) CreateReview(review *model.Review) error {
	return r.db.Create(review).Error
}

// GetReviewByID ID로 리뷰 조회
func (r *ReviewRepository) GetReviewByID(id uint) (*model.Review, error) {
	var review model.Review
	err := r.db.Preload("User").First(&review, id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetReviewsByProductID 상품별 정본 리뷰 목록 조회 (작성 순서)
func (r *ReviewRepository) GetReviewsByProductID(productID uint) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.Preload("User").
		Where("product_id = ?", productID).
		Order("created_at ASC, id ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// UpdateReview 리뷰 수정
func (r *ReviewRepository) UpdateReview(review *model.Review) error {
	return r.db.Save(review).Error
}

// DeleteReview 리뷰 삭제
func (r *ReviewRepository) DeleteReview(id uint) error {
	return r.db.Delete(&model.Review{}, id).Error
}

// ProductAggregate 상품별 리뷰 집계 결과
type ProductAggregate struct {
	TotalReviews int64
	AvgRating    float64
}

// GetProductAggregate 정본 리뷰에서 집계 파생
// 삭제된 리뷰는 소프트 삭제 조건으로 자동 제외된다
func (r *ReviewRepository) GetProductAggregate(productID uint) (*ProductAggregate, error) {
	var agg ProductAggregate

	if err := r.db.Model(&model.Review{}).
		Where("product_id = ?", productID).
		Count(&agg.TotalReviews).Error; err != nil {
		return nil, err
	}

	if agg.TotalReviews > 0 {
		if err := r.db.Model(&model.Review{}).
			Where("product_id = ?", productID).
			Select("AVG(rating)").
			Scan(&agg.AvgRating).Error; err != nil {
			return nil, err
		}
	}

	return &agg, nil
}

// DuplicateReviewPair 평점과 내용이 동일한 리뷰 쌍
type DuplicateReviewPair struct {
	ReviewIDA uint   `json:"review_id_a"`
	ReviewIDB uint   `json:"review_id_b"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// GetDuplicateReviewPairs 동일 (평점, 내용) 리뷰 쌍 전수 조회
// 전체 self-join이라 리뷰 수에 대해 O(n²)이다. 인덱스 없는 단순 비교로 충분한 규모에서만 사용
func (r *ReviewRepository) GetDuplicateReviewPairs() ([]DuplicateReviewPair, error) {
	var pairs []DuplicateReviewPair

	err := r.db.Table("reviews AS r1").
		Joins("JOIN reviews AS r2 ON r1.id < r2.id AND r1.rating = r2.rating AND r1.comment = r2.comment").
		Where("r1.deleted_at IS NULL AND r2.deleted_at IS NULL").
		Select("r1.id AS review_id_a, r2.id AS review_id_b, r1.rating AS rating, r1.comment AS comment").
		Order("r1.id ASC, r2.id ASC").
		Scan(&pairs).Error
	if err != nil {
		return nil, err
	}

	return pairs, nil
}
