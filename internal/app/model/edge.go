package model

import "time"

// 그래프 간선 모델
// 원 설계의 사용자→리뷰, 리뷰→상품 방향 간선을 그대로 테이블로 유지한다.
// 추천/중복 탐지 그래프 질의가 이 간선들을 순회한다.

// UserReviewEdge 사용자 → 리뷰 간선
type UserReviewEdge struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID   uint `gorm:"not null;index:idx_user_review_edge,unique" json:"user_id"`
	ReviewID uint `gorm:"not null;index:idx_user_review_edge,unique" json:"review_id"`

	User   User   `gorm:"foreignKey:UserID" json:"-"`
	Review Review `gorm:"foreignKey:ReviewID" json:"-"`
}

func (UserReviewEdge) TableName() string {
	return "user_review_edges"
}

// ReviewProductEdge 리뷰 → 상품 간선
type ReviewProductEdge struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ReviewID  uint `gorm:"not null;index:idx_review_product_edge,unique" json:"review_id"`
	ProductID uint `gorm:"not null;index:idx_review_product_edge,unique" json:"product_id"`

	Review  Review  `gorm:"foreignKey:ReviewID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (ReviewProductEdge) TableName() string {
	return "review_product_edges"
}
