package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jypark/reviewmoa-backend/internal/app/model"
	"github.com/jypark/reviewmoa-backend/internal/app/repository"
	"github.com/jypark/reviewmoa-backend/internal/storage"
	"github.com/jypark/reviewmoa-backend/pkg/logger"
	"github.com/jypark/reviewmoa-backend/pkg/redis"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrInvalidProductPayload = errors.New("invalid product payload")
)

// ProductDetail 상품 상세 응답
// 상품 본문 + 캐시된 집계 + 정본 리뷰에서 만든 요약 목록
type ProductDetail struct {
	Product   *model.Product        `json:"product"`
	Summaries []model.ReviewSummary `json:"reviews"`
}

type ProductService interface {
	ListProducts() ([]model.Product, error)
	GetProductByID(id uint) (*ProductDetail, error)
	CreateProduct(name, description string, price float64, images []string) (*model.Product, error)
	UpdateProduct(id uint, name, description string, price *float64) (*model.Product, error)
	DeleteProduct(id uint) error
}

type productService struct {
	productRepo repository.ProductRepository
	reviewRepo  *repository.ReviewRepository
	imageStore  storage.ImageStore
}

func NewProductService(
	productRepo repository.ProductRepository,
	reviewRepo *repository.ReviewRepository,
	imageStore storage.ImageStore,
) ProductService {
	return &productService{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		imageStore:  imageStore,
	}
}

func (s *productService) ListProducts() ([]model.Product, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list products", err, nil)
		return nil, err
	}

	// Redis에 집계 캐시가 있으면 DB 컬럼 대신 캐시 값을 사용
	ctx := context.Background()
	for i := range products {
		if avgRating, totalReviews, ok := redis.GetProductRating(ctx, products[i].ID); ok {
			products[i].Meta.AvgRating = avgRating
			products[i].Meta.TotalReviews = totalReviews
		}
	}

	return products, nil
}

func (s *productService) GetProductByID(id uint) (*ProductDetail, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	reviews, err := s.reviewRepo.GetReviewsByProductID(id)
	if err != nil {
		logger.Error("Failed to fetch reviews for product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	summaries := make([]model.ReviewSummary, 0, len(reviews))
	for _, review := range reviews {
		summaries = append(summaries, buildReviewSummary(&review))
	}

	return &ProductDetail{
		Product:   product,
		Summaries: summaries,
	}, nil
}

func (s *productService) CreateProduct(name, description string, price float64, images []string) (*model.Product, error) {
	if strings.TrimSpace(name) == "" || price < 0 {
		return nil, ErrInvalidProductPayload
	}

	product := &model.Product{
		Name:        name,
		Description: description,
		Price:       price,
		Images:      pq.StringArray(images),
	}

	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name": name,
		})
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	return product, nil
}

func (s *productService) UpdateProduct(id uint, name, description string, price *float64) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if name != "" {
		product.Name = name
	}
	if description != "" {
		product.Description = description
	}
	if price != nil {
		if *price < 0 {
			return nil, ErrInvalidProductPayload
		}
		product.Price = *price
	}

	if err := s.productRepo.Update(product); err != nil {
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
	})

	return product, nil
}

func (s *productService) DeleteProduct(id uint) error {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if err := s.productRepo.Delete(id); err != nil {
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	// 상품 이미지 정리 (실패해도 삭제 자체는 성공으로 처리)
	for _, image := range product.Images {
		if err := s.imageStore.Delete(image); err != nil {
			logger.Warn("Failed to delete product image", map[string]interface{}{
				"product_id": id,
				"image":      image,
				"error":      err.Error(),
			})
		}
	}

	redis.InvalidateProductRating(context.Background(), id)

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})

	return nil
}

// buildReviewSummary 정본 리뷰에서 읽기용 요약을 만든다
func buildReviewSummary(review *model.Review) model.ReviewSummary {
	return model.ReviewSummary{
		ReviewID:  review.ID,
		UserID:    review.UserID,
		UserName:  review.User.Name,
		Rating:    review.Rating,
		Comment:   review.Comment,
		Images:    []string(review.Images),
		CreatedAt: review.CreatedAt,
	}
}
