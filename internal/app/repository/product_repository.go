package repository

import (
	"github.com/jypark/reviewmoa-backend/internal/app/model"
	"github.com/jypark/reviewmoa-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	FindAllIDs() ([]uint, error)
	Update(product *model.Product) error
	Delete(id uint) error
	UpdateMeta(productID uint, avgRating *float64, totalReviews int) error
	BulkCreate(products []model.Product, batchSize int) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	var products []model.Product
	if err := r.db.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindAllIDs 집계 복구 스케줄러용 전체 상품 ID 목록
func (r *productRepository) FindAllIDs() ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&model.Product{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *productRepository) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepository) Delete(id uint) error {
	return r.db.Delete(&model.Product{}, id).Error
}

// UpdateMeta 캐시된 리뷰 집계를 단일 UPDATE로 저장
// 집계 값은 항상 정본 reviews 테이블에서 파생되므로 언제든 재실행해도 안전하다
func (r *productRepository) UpdateMeta(productID uint, avgRating *float64, totalReviews int) error {
	return r.db.Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"meta_avg_rating":    avgRating,
			"meta_total_reviews": totalReviews,
		}).Error
}

// BulkCreate 상품 일괄 등록 (시드 도구용)
func (r *productRepository) BulkCreate(products []model.Product, batchSize int) error {
	logger.Info("Bulk creating products", map[string]interface{}{
		"count":      len(products),
		"batch_size": batchSize,
	})
	return r.db.CreateInBatches(products, batchSize).Error
}
