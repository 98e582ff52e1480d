package service

import (
	"testing"

	"github.com/jypark/reviewmoa-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGraphServiceTest(t *testing.T) (*reviewServiceFixture, *GraphService) {
	f := setupReviewServiceTest(t)
	return f, NewGraphService(f.graphRepo, f.reviewRepo)
}

func TestGraphService_GetRecommendations(t *testing.T) {
	f, graphService := setupGraphServiceTest(t)
	user := f.createUser(t, "user@example.com", model.RoleUser)
	other := f.createUser(t, "other@example.com", model.RoleUser)

	reviewed := f.createProduct(t, "리뷰한 상품")
	unreviewed := f.createProduct(t, "리뷰 안 한 상품")

	_, _, err := f.service.CreateReview(user.ID, reviewed.ID, 5, "좋아요", nil)
	require.NoError(t, err)
	_, _, err = f.service.CreateReview(other.ID, unreviewed.ID, 3, "무난해요", nil)
	require.NoError(t, err)

	// 리뷰 간선으로 도달 가능한 상품만 반환된다
	products, err := graphService.GetRecommendations(user.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, reviewed.ID, products[0].ID)

	// 리뷰가 없는 사용자는 빈 결과
	lonely := f.createUser(t, "lonely@example.com", model.RoleUser)
	products, err = graphService.GetRecommendations(lonely.ID)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestGraphService_GetRecommendations_Distinct(t *testing.T) {
	f, graphService := setupGraphServiceTest(t)
	user := f.createUser(t, "user@example.com", model.RoleUser)
	product := f.createProduct(t, "자주 사는 상품")

	// 같은 상품에 리뷰를 여러 번 남겨도 결과는 한 번만
	_, _, err := f.service.CreateReview(user.ID, product.ID, 5, "첫 구매 후기", nil)
	require.NoError(t, err)
	_, _, err = f.service.CreateReview(user.ID, product.ID, 4, "재구매 후기", nil)
	require.NoError(t, err)

	products, err := graphService.GetRecommendations(user.ID)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestGraphService_GetDuplicateReviews(t *testing.T) {
	f, graphService := setupGraphServiceTest(t)
	a := f.createUser(t, "a@example.com", model.RoleUser)
	b := f.createUser(t, "b@example.com", model.RoleUser)
	c := f.createUser(t, "c@example.com", model.RoleUser)
	product := f.createProduct(t, "인기 상품")

	dup1, _, err := f.service.CreateReview(a.ID, product.ID, 5, "최고의 상품입니다", nil)
	require.NoError(t, err)
	dup2, _, err := f.service.CreateReview(b.ID, product.ID, 5, "최고의 상품입니다", nil)
	require.NoError(t, err)
	_, _, err = f.service.CreateReview(c.ID, product.ID, 5, "저는 조금 아쉬웠어요", nil)
	require.NoError(t, err)

	pairs, err := graphService.GetDuplicateReviews()
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	assert.Equal(t, dup1.ID, pairs[0].ReviewIDA)
	assert.Equal(t, dup2.ID, pairs[0].ReviewIDB)
	assert.Equal(t, 5, pairs[0].Rating)
	assert.Equal(t, "최고의 상품입니다", pairs[0].Comment)
}

func TestGraphService_GetDuplicateReviews_IgnoresDeleted(t *testing.T) {
	f, graphService := setupGraphServiceTest(t)
	a := f.createUser(t, "a@example.com", model.RoleUser)
	b := f.createUser(t, "b@example.com", model.RoleUser)
	product := f.createProduct(t, "인기 상품")

	dup1, _, err := f.service.CreateReview(a.ID, product.ID, 4, "복사한 리뷰", nil)
	require.NoError(t, err)
	_, _, err = f.service.CreateReview(b.ID, product.ID, 4, "복사한 리뷰", nil)
	require.NoError(t, err)

	// 한쪽을 지우면 쌍도 사라진다
	require.NoError(t, f.service.DeleteReview(dup1.ID, a.ID, model.RoleUser))

	pairs, err := graphService.GetDuplicateReviews()
	require.NoError(t, err)
	assert.Empty(t, pairs)
}
