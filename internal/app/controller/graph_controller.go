package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jypark/reviewmoa-backend/internal/app/service"
	apperrors "github.com/jypark/reviewmoa-backend/internal/errors"
)

type GraphController struct {
	graphService *service.GraphService
}

func NewGraphController(graphService *service.GraphService) *GraphController {
	return &GraphController{
		graphService: graphService,
	}
}

// GetRecommendations 리뷰 그래프 기반 상품 추천
// GET /api/v1/graph/recommend/:userId
func (ctrl *GraphController) GetRecommendations(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "사용자 ID가 올바르지 않습니다")
		return
	}

	products, err := ctrl.graphService.GetRecommendations(uint(userID))
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get recommendations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetDuplicateReviews 중복 리뷰 쌍 탐지 (manager/admin)
// GET /api/v1/graph/fraud-detection
func (ctrl *GraphController) GetDuplicateReviews(c *gin.Context) {
	pairs, err := ctrl.graphService.GetDuplicateReviews()
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "detect duplicate reviews")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pairs": pairs,
		"count": len(pairs),
	})
}
