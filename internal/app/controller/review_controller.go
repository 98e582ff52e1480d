package controller

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jypark/reviewmoa-backend/internal/app/service"
	apperrors "github.com/jypark/reviewmoa-backend/internal/errors"
	"github.com/jypark/reviewmoa-backend/internal/middleware"
	"github.com/jypark/reviewmoa-backend/internal/storage"
)

const maxReviewImages = 5

// 업로드 허용 이미지 타입
var allowedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

type ReviewController struct {
	reviewService *service.ReviewService
	imageStore    storage.ImageStore
	maxImageSize  int64
}

func NewReviewController(reviewService *service.ReviewService, imageStore storage.ImageStore, maxImageSize int64) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
		imageStore:    imageStore,
		maxImageSize:  maxImageSize,
	}
}

// CreateReview 리뷰 작성 (multipart)
// POST /api/v1/reviews
// 필드: product_id, rating, comment, images (최대 5개)
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	productID, err := strconv.ParseUint(c.PostForm("product_id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "상품 ID가 올바르지 않습니다")
		return
	}
	rating, err := strconv.Atoi(c.PostForm("rating"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "평점은 1에서 5 사이의 숫자여야 합니다")
		return
	}
	comment := c.PostForm("comment")

	form, err := c.MultipartForm()
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "요청 형식이 올바르지 않습니다")
		return
	}

	files := form.File["images"]
	if len(files) > maxReviewImages {
		apperrors.BadRequest(c, apperrors.ReviewTooManyImages, "이미지는 최대 5개까지 업로드할 수 있습니다")
		return
	}

	images, uploadErr := ctrl.saveImages(files)
	if uploadErr != nil {
		log.Warn("Review image upload failed", map[string]interface{}{
			"user_id": userID,
			"error":   uploadErr.Error(),
		})
		apperrors.BadRequest(c, apperrors.UploadFailed, uploadErr.Error())
		return
	}

	review, summary, err := ctrl.reviewService.CreateReview(userID, uint(productID), rating, comment, images)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "평점은 1에서 5 사이여야 합니다")
		case errors.Is(err, service.ErrEmptyComment):
			apperrors.BadRequest(c, apperrors.ReviewEmptyComment, "리뷰 내용을 입력해주세요")
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "상품을 찾을 수 없습니다")
		default:
			log.Error("Failed to create review", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create review")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Review created successfully",
		"review":  review,
		"summary": summary,
	})
}

// UpdateReview 리뷰 수정 (작성자/관리자, multipart)
// PUT /api/v1/reviews/:id
// 필드: rating?, comment?, images_to_keep (유지할 기존 경로), images (새 파일)
func (ctrl *ReviewController) UpdateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	role, _ := middleware.GetUserRole(c)

	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "리뷰 ID가 올바르지 않습니다")
		return
	}

	var rating *int
	if v := c.PostForm("rating"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "평점은 1에서 5 사이의 숫자여야 합니다")
			return
		}
		rating = &parsed
	}
	var comment *string
	if v, exists := c.GetPostForm("comment"); exists {
		comment = &v
	}

	form, err := c.MultipartForm()
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "요청 형식이 올바르지 않습니다")
		return
	}

	imagesToKeep := form.Value["images_to_keep"]
	files := form.File["images"]
	if len(imagesToKeep)+len(files) > maxReviewImages {
		apperrors.BadRequest(c, apperrors.ReviewTooManyImages, "이미지는 최대 5개까지 업로드할 수 있습니다")
		return
	}

	newImages, uploadErr := ctrl.saveImages(files)
	if uploadErr != nil {
		apperrors.BadRequest(c, apperrors.UploadFailed, uploadErr.Error())
		return
	}

	review, err := ctrl.reviewService.UpdateReview(uint(reviewID), userID, role, rating, comment, imagesToKeep, newImages)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, "리뷰를 찾을 수 없습니다")
		case errors.Is(err, service.ErrNotReviewAuthor):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "리뷰 작성자 또는 관리자만 수정할 수 있습니다")
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "평점은 1에서 5 사이여야 합니다")
		case errors.Is(err, service.ErrEmptyComment):
			apperrors.BadRequest(c, apperrors.ReviewEmptyComment, "리뷰 내용을 입력해주세요")
		default:
			log.Error("Failed to update review", err, map[string]interface{}{
				"review_id": reviewID,
				"user_id":   userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update review")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"review": review,
	})
}

// DeleteReview 리뷰 삭제 (작성자/관리자)
// DELETE /api/v1/reviews/:id
func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	role, _ := middleware.GetUserRole(c)

	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "리뷰 ID가 올바르지 않습니다")
		return
	}

	if err := ctrl.reviewService.DeleteReview(uint(reviewID), userID, role); err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, "리뷰를 찾을 수 없습니다")
		case errors.Is(err, service.ErrNotReviewAuthor):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "리뷰 작성자 또는 관리자만 삭제할 수 있습니다")
		default:
			log.Error("Failed to delete review", err, map[string]interface{}{
				"review_id": reviewID,
				"user_id":   userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete review")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// GetReviewsByProduct 상품별 리뷰 목록 + 집계
// GET /api/v1/reviews/product/:productId
func (ctrl *ReviewController) GetReviewsByProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "상품 ID가 올바르지 않습니다")
		return
	}

	result, err := ctrl.reviewService.GetReviewsByProduct(uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "상품을 찾을 수 없습니다")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get reviews")
		return
	}

	c.JSON(http.StatusOK, result)
}

// saveImages 업로드 파일을 검증 후 저장하고 경로 목록을 반환
// 중간에 실패하면 먼저 저장된 파일까지 정리하고 에러를 돌려준다
func (ctrl *ReviewController) saveImages(files []*multipart.FileHeader) ([]string, error) {
	var saved []string
	for _, file := range files {
		contentType := file.Header.Get("Content-Type")
		if err := storage.ValidateContentType(contentType, allowedImageTypes); err != nil {
			ctrl.cleanupImages(saved)
			return nil, errors.New("이미지 파일만 업로드할 수 있습니다 (JPEG, PNG, GIF, WEBP)")
		}
		if err := storage.ValidateFileSize(file.Size, ctrl.maxImageSize); err != nil {
			ctrl.cleanupImages(saved)
			return nil, errors.New("이미지 크기는 5MB를 초과할 수 없습니다")
		}

		path, err := ctrl.imageStore.Save(file, "reviews")
		if err != nil {
			ctrl.cleanupImages(saved)
			return nil, errors.New("이미지 업로드에 실패했습니다")
		}
		saved = append(saved, path)
	}
	return saved, nil
}

func (ctrl *ReviewController) cleanupImages(images []string) {
	for _, image := range images {
		_ = ctrl.imageStore.Delete(image)
	}
}
