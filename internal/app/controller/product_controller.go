package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jypark/reviewmoa-backend/internal/app/service"
	apperrors "github.com/jypark/reviewmoa-backend/internal/errors"
	"github.com/jypark/reviewmoa-backend/internal/middleware"
	"github.com/jypark/reviewmoa-backend/internal/storage"
)

type ProductController struct {
	productService service.ProductService
	imageStore     storage.ImageStore
	maxImageSize   int64
}

func NewProductController(productService service.ProductService, imageStore storage.ImageStore, maxImageSize int64) *ProductController {
	return &ProductController{
		productService: productService,
		imageStore:     imageStore,
		maxImageSize:   maxImageSize,
	}
}

type UpdateProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
}

// ListProducts 상품 목록
// GET /api/v1/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	products, err := ctrl.productService.ListProducts()
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct 상품 상세 (집계 + 리뷰 요약 포함)
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "상품 ID가 올바르지 않습니다")
		return
	}

	detail, err := ctrl.productService.GetProductByID(uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "상품을 찾을 수 없습니다")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get product")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// CreateProduct 상품 등록 (manager/admin, multipart)
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	name := c.PostForm("name")
	description := c.PostForm("description")
	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || name == "" {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "상품 이름과 가격을 확인해주세요")
		return
	}

	var images []string
	if form, err := c.MultipartForm(); err == nil {
		for _, file := range form.File["images"] {
			contentType := file.Header.Get("Content-Type")
			if err := storage.ValidateContentType(contentType, allowedImageTypes); err != nil {
				apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "이미지 파일만 업로드할 수 있습니다")
				return
			}
			if err := storage.ValidateFileSize(file.Size, ctrl.maxImageSize); err != nil {
				apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "이미지 크기는 5MB를 초과할 수 없습니다")
				return
			}
			path, err := ctrl.imageStore.Save(file, "products")
			if err != nil {
				log.Error("Failed to save product image", err, nil)
				apperrors.InternalError(c, "이미지 업로드에 실패했습니다")
				return
			}
			images = append(images, path)
		}
	}

	product, err := ctrl.productService.CreateProduct(name, description, price, images)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProductPayload) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "상품 정보가 올바르지 않습니다")
			return
		}
		log.Error("Failed to create product", err, map[string]interface{}{
			"name": name,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProduct 상품 수정 (manager/admin)
// PUT /api/v1/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "상품 ID가 올바르지 않습니다")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	product, err := ctrl.productService.UpdateProduct(uint(productID), req.Name, req.Description, req.Price)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "상품을 찾을 수 없습니다")
		case errors.Is(err, service.ErrInvalidProductPayload):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "상품 정보가 올바르지 않습니다")
		default:
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update product")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"product": product,
	})
}

// DeleteProduct 상품 삭제 (manager/admin)
// DELETE /api/v1/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "상품 ID가 올바르지 않습니다")
		return
	}

	if err := ctrl.productService.DeleteProduct(uint(productID)); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "상품을 찾을 수 없습니다")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
	})
}
