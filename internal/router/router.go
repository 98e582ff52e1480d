package router

import (
	"github.com/gin-gonic/gin"
	"github.com/jypark/reviewmoa-backend/config"
	"github.com/jypark/reviewmoa-backend/internal/app/controller"
	"github.com/jypark/reviewmoa-backend/internal/middleware"
	"github.com/jypark/reviewmoa-backend/internal/websocket"
)

type Router struct {
	authController    *controller.AuthController
	productController *controller.ProductController
	reviewController  *controller.ReviewController
	graphController   *controller.GraphController
	authMiddleware    *middleware.AuthMiddleware
	hub               *websocket.Hub
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	reviewController *controller.ReviewController,
	graphController *controller.GraphController,
	authMiddleware *middleware.AuthMiddleware,
	hub *websocket.Hub,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		productController: productController,
		reviewController:  reviewController,
		graphController:   graphController,
		authMiddleware:    authMiddleware,
		hub:               hub,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "REVIEWMOA API is running",
		})
	})

	// 로컬 저장소일 때만 업로드 파일을 정적 서빙
	if r.config.Upload.Backend == "local" {
		router.Static("/uploads", r.config.Upload.LocalDir)
	}

	// 상품별 리뷰 실시간 피드
	router.GET("/ws/reviews", websocket.ServeReviewFeed(r.hub))

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:id", r.productController.GetProduct)

			products.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("manager", "admin"),
				r.productController.CreateProduct,
			)
			products.PUT("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("manager", "admin"),
				r.productController.UpdateProduct,
			)
			products.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("manager", "admin"),
				r.productController.DeleteProduct,
			)
		}

		reviews := v1.Group("/reviews")
		{
			reviews.GET("/product/:productId", r.reviewController.GetReviewsByProduct)

			reviews.POST("", r.authMiddleware.Authenticate(), r.reviewController.CreateReview)
			reviews.PUT("/:id", r.authMiddleware.Authenticate(), r.reviewController.UpdateReview)
			reviews.DELETE("/:id", r.authMiddleware.Authenticate(), r.reviewController.DeleteReview)
		}

		graph := v1.Group("/graph")
		{
			graph.GET("/recommend/:userId", r.graphController.GetRecommendations)
			graph.GET("/fraud-detection",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("manager", "admin"),
				r.graphController.GetDuplicateReviews,
			)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
