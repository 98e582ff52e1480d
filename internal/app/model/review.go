package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Review 정본 리뷰 모델
// 상품 집계(ProductMeta)와 리뷰 요약(ReviewSummary)의 원본 데이터
type Review struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// 리뷰 기본 정보
	ProductID uint    `gorm:"not null;index" json:"product_id"`           // 상품 ID
	Product   Product `gorm:"foreignKey:ProductID" json:"-"`              // 상품 정보
	UserID    uint    `gorm:"not null;index" json:"user_id"`              // 작성자 ID
	User      User    `gorm:"foreignKey:UserID" json:"user,omitempty"`    // 작성자 정보
	Rating    int     `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"` // 평점 (1-5)
	Comment   string  `gorm:"type:text;not null" json:"comment"`          // 리뷰 내용

	// 이미지
	Images pq.StringArray `gorm:"type:text[]" json:"images,omitempty"` // 리뷰 이미지 경로 배열
}

func (Review) TableName() string {
	return "reviews"
}

// ReviewSummary 상품 조회용 리뷰 요약 (읽기 전용 프로젝션)
// 테이블이 아니라 정본 리뷰 + 작성자 이름 조인으로 만들어진다
type ReviewSummary struct {
	ReviewID  uint      `json:"review_id"`
	UserID    uint      `json:"user_id"`
	UserName  string    `json:"user_name"` // 작성 시점의 사용자 이름 (users 조인)
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Images    []string  `json:"images,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
