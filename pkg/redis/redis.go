package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jypark/reviewmoa-backend/config"
	"github.com/jypark/reviewmoa-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

const ratingCacheTTL = 24 * time.Hour

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		client = nil
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

func ratingKey(productID uint) string {
	return fmt.Sprintf("avgRating:%d", productID)
}

// CacheProductRating 상품별 평균 평점 캐시 저장
// Redis 미설정 시 조용히 건너뛴다 (캐시는 읽기 경로 최적화일 뿐)
func CacheProductRating(ctx context.Context, productID uint, avgRating *float64, totalReviews int) error {
	if client == nil {
		return nil
	}

	avg := "null"
	if avgRating != nil {
		avg = fmt.Sprintf("%.1f", *avgRating)
	}

	value := fmt.Sprintf("%s|%d", avg, totalReviews)
	if err := client.Set(ctx, ratingKey(productID), value, ratingCacheTTL).Err(); err != nil {
		logger.Error("Failed to cache product rating", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}
	return nil
}

// GetProductRating 캐시된 평균 평점 조회
// 캐시 미스 또는 Redis 미설정 시 (nil, 0, false)를 반환한다
func GetProductRating(ctx context.Context, productID uint) (*float64, int, bool) {
	if client == nil {
		return nil, 0, false
	}

	value, err := client.Get(ctx, ratingKey(productID)).Result()
	if err == redis.Nil {
		return nil, 0, false
	}
	if err != nil {
		logger.Error("Failed to read product rating cache", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, 0, false
	}

	parts := strings.SplitN(value, "|", 2)
	if len(parts) != 2 {
		// 형식이 깨진 항목은 무시하고 DB 값을 쓰게 한다
		return nil, 0, false
	}

	total, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, 0, false
	}

	if parts[0] == "null" {
		return nil, total, true
	}

	avg, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, 0, false
	}
	return &avg, total, true
}

// InvalidateProductRating 상품 평점 캐시 무효화
func InvalidateProductRating(ctx context.Context, productID uint) {
	if client == nil {
		return
	}
	if err := client.Del(ctx, ratingKey(productID)).Err(); err != nil {
		logger.Error("Failed to invalidate product rating cache", err, map[string]interface{}{
			"product_id": productID,
		})
	}
}
