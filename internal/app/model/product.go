package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ProductMeta 상품에 캐시된 리뷰 집계 블록
// 원본 소스(source of truth)는 reviews 테이블이며,
// 리뷰 생성/수정/삭제 시마다 다시 계산되어 저장된다.
type ProductMeta struct {
	AvgRating    *float64 `json:"avg_rating"`                       // 평균 평점 (소수 첫째 자리, 리뷰 없으면 null)
	TotalReviews int      `gorm:"default:0" json:"total_reviews"`   // 리뷰 개수
}

type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       float64        `gorm:"not null" json:"price"`
	Images      pq.StringArray `gorm:"type:text[]" json:"images,omitempty"` // 상품 이미지 경로 배열
	Meta        ProductMeta    `gorm:"embedded;embeddedPrefix:meta_" json:"meta"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Reviews []Review `gorm:"foreignKey:ProductID" json:"-"` // 정본 리뷰 목록
}

func (Product) TableName() string {
	return "products"
}
