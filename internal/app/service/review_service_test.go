package service

import (
	"mime/multipart"
	"testing"

	"github.com/jypark/reviewmoa-backend/internal/app/model"
	"github.com/jypark/reviewmoa-backend/internal/app/repository"
	"github.com/jypark/reviewmoa-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeImageStore 테스트용 이미지 저장소
// 삭제된 경로를 기록해서 이미지 정리 동작을 검증한다
type fakeImageStore struct {
	deleted []string
}

func (s *fakeImageStore) Save(file *multipart.FileHeader, folder string) (string, error) {
	return "/uploads/" + folder + "/" + file.Filename, nil
}

func (s *fakeImageStore) Delete(path string) error {
	s.deleted = append(s.deleted, path)
	return nil
}

type reviewServiceFixture struct {
	db          *gorm.DB
	service     *ReviewService
	reviewRepo  *repository.ReviewRepository
	productRepo repository.ProductRepository
	graphRepo   *repository.GraphRepository
	imageStore  *fakeImageStore
}

func setupReviewServiceTest(t *testing.T) *reviewServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	reviewRepo := repository.NewReviewRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	graphRepo := repository.NewGraphRepository(testDB)
	imageStore := &fakeImageStore{}

	svc := NewReviewService(reviewRepo, productRepo, graphRepo, imageStore, nil)

	return &reviewServiceFixture{
		db:          testDB,
		service:     svc,
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		graphRepo:   graphRepo,
		imageStore:  imageStore,
	}
}

func (f *reviewServiceFixture) createUser(t *testing.T, email string, role model.UserRole) *model.User {
	user := &model.User{
		Email:        email,
		PasswordHash: "hashed",
		Name:         "테스트 사용자",
		Role:         role,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *reviewServiceFixture) createProduct(t *testing.T, name string) *model.Product {
	product := &model.Product{
		Name:  name,
		Price: 10000,
	}
	require.NoError(t, f.productRepo.Create(product))
	return product
}

func (f *reviewServiceFixture) productMeta(t *testing.T, productID uint) model.ProductMeta {
	product, err := f.productRepo.FindByID(productID)
	require.NoError(t, err)
	return product.Meta
}

func TestReviewService_AggregateLifecycle(t *testing.T) {
	f := setupReviewServiceTest(t)
	user := f.createUser(t, "user@example.com", model.RoleUser)
	product := f.createProduct(t, "블루투스 이어폰")

	// 리뷰가 없으면 평균은 null, 개수는 0
	meta := f.productMeta(t, product.ID)
	assert.Nil(t, meta.AvgRating)
	assert.Equal(t, 0, meta.TotalReviews)

	// 첫 리뷰 (5점) 후 평균 5.0
	first, _, err := f.service.CreateReview(user.ID, product.ID, 5, "정말 만족합니다", nil)
	require.NoError(t, err)

	meta = f.productMeta(t, product.ID)
	require.NotNil(t, meta.AvgRating)
	assert.Equal(t, 5.0, *meta.AvgRating)
	assert.Equal(t, 1, meta.TotalReviews)

	// 4점 추가 후 평균 4.5
	other := f.createUser(t, "other@example.com", model.RoleUser)
	_, _, err = f.service.CreateReview(other.ID, product.ID, 4, "배송이 조금 늦었어요", nil)
	require.NoError(t, err)

	meta = f.productMeta(t, product.ID)
	require.NotNil(t, meta.AvgRating)
	assert.Equal(t, 4.5, *meta.AvgRating)
	assert.Equal(t, 2, meta.TotalReviews)

	// 5점 리뷰 삭제 후 평균 4.0
	require.NoError(t, f.service.DeleteReview(first.ID, user.ID, model.RoleUser))

	meta = f.productMeta(t, product.ID)
	require.NotNil(t, meta.AvgRating)
	assert.Equal(t, 4.0, *meta.AvgRating)
	assert.Equal(t, 1, meta.TotalReviews)
}

func TestReviewService_CreateReview_Validation(t *testing.T) {
	f := setupReviewServiceTest(t)
	user := f.createUser(t, "user@example.com", model.RoleUser)
	product := f.createProduct(t, "핸드크림")

	tests := []struct {
		name      string
		productID uint
		rating    int
		comment   string
		wantErr   error
	}{
		{"Rating too low", product.ID, 0, "내용", ErrInvalidRating},
		{"Rating too high", product.ID, 6, "내용", ErrInvalidRating},
		{"Empty comment", product.ID, 3, "   ", ErrEmptyComment},
		{"Missing product", product.ID + 999, 3, "내용", ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.service.CreateReview(user.ID, tt.productID, tt.rating, tt.comment, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// 검증 실패는 집계에 영향을 주지 않는다
	meta := f.productMeta(t, product.ID)
	assert.Nil(t, meta.AvgRating)
	assert.Equal(t, 0, meta.TotalReviews)
}

func TestReviewService_CreateReview_ValidationReleasesImages(t *testing.T) {
	f := setupReviewServiceTest(t)
	user := f.createUser(t, "user@example.com", model.RoleUser)
	product := f.createProduct(t, "텀블러")

	// 업로드는 검증보다 먼저 끝나므로, 검증에 실패한 요청의 이미지도 반드시 정리돼야 한다
	tests := []struct {
		name      string
		productID uint
		rating    int
		comment   string
		image     string
		wantErr   error
	}{
		{"Invalid rating", product.ID, 6, "내용", "/uploads/reviews/invalid-rating.jpg", ErrInvalidRating},
		{"Empty comment", product.ID, 3, "   ", "/uploads/reviews/empty-comment.jpg", ErrEmptyComment},
		{"Missing product", product.ID + 999, 3, "내용", "/uploads/reviews/missing-product.jpg", ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.service.CreateReview(user.ID, tt.productID, tt.rating, tt.comment, []string{tt.image})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, f.imageStore.deleted, tt.image)
		})
	}
}

func TestReviewService_CreateReview_SummaryAndEdges(t *testing.T) {
	f := setupReviewServiceTest(t)
	user := f.createUser(t, "user@example.com", model.RoleUser)
	product := f.createProduct(t, "무선 충전기")

	review, summary, err := f.service.CreateReview(user.ID, product.ID, 4, "충전 속도가 빨라요", []string{"/uploads/reviews/a.jpg"})
	require.NoError(t, err)
	require.NotNil(t, summary)

	// 요약은 정본 리뷰와 일치해야 한다
	assert.Equal(t, review.ID, summary.ReviewID)
	assert.Equal(t, user.ID, summary.UserID)
	assert.Equal(t, user.Name, summary.UserName)
	assert.Equal(t, 4, summary.Rating)
	assert.Equal(t, "충전 속도가 빨라요", summary.Comment)
	assert.Equal(t, []string{"/uploads/reviews/a.jpg"}, summary.Images)

	// 양쪽 간선이 모두 생성된다
	edges, err := f.graphRepo.CountEdgesForReview(review.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), edges)

	// 상품 조회 시 요약이 그대로 나온다
	reviews, err := f.reviewRepo.GetReviewsByProductID(product.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, review.ID, reviews[0].ID)
	assert.Equal(t, user.Name, reviews[0].User.Name)
}

func TestReviewService_DeleteReview_RemovesDerivedData(t *testing.T) {
	f := setupReviewServiceTest(t)
	user := f.createUser(t, "user@example.com", model.RoleUser)
	product := f.createProduct(t, "텀블러")

	review, _, err := f.service.CreateReview(user.ID, product.ID, 5, "보온이 잘 됩니다", []string{"/uploads/reviews/b.jpg"})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteReview(review.ID, user.ID, model.RoleUser))

	// 리뷰 목록에서 사라진다
	reviews, err := f.reviewRepo.GetReviewsByProductID(product.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)

	// 간선도 모두 제거된다
	edges, err := f.graphRepo.CountEdgesForReview(review.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), edges)

	// 이미지가 정리된다
	assert.Contains(t, f.imageStore.deleted, "/uploads/reviews/b.jpg")

	// 집계는 리뷰 0개 상태로 되돌아간다
	meta := f.productMeta(t, product.ID)
	assert.Nil(t, meta.AvgRating)
	assert.Equal(t, 0, meta.TotalReviews)
}

func TestReviewService_UpdateReview_CommentOnlyKeepsAverage(t *testing.T) {
	f := setupReviewServiceTest(t)
	user := f.createUser(t, "user@example.com", model.RoleUser)
	product := f.createProduct(t, "전기포트")

	review, _, err := f.service.CreateReview(user.ID, product.ID, 3, "그냥 그래요", nil)
	require.NoError(t, err)

	before := f.productMeta(t, product.ID)

	newComment := "다시 써보니 괜찮네요"
	updated, err := f.service.UpdateReview(review.ID, user.ID, model.RoleUser, nil, &newComment, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, newComment, updated.Comment)
	assert.Equal(t, 3, updated.Rating)

	// 평점이 그대로면 집계도 그대로
	after := f.productMeta(t, product.ID)
	assert.Equal(t, before, after)
}

func TestReviewService_UpdateReview_RatingChangeRecomputes(t *testing.T) {
	f := setupReviewServiceTest(t)
	user := f.createUser(t, "user@example.com", model.RoleUser)
	product := f.createProduct(t, "가습기")

	review, _, err := f.service.CreateReview(user.ID, product.ID, 2, "소음이 심해요", nil)
	require.NoError(t, err)

	newRating := 4
	_, err = f.service.UpdateReview(review.ID, user.ID, model.RoleUser, &newRating, nil, nil, nil)
	require.NoError(t, err)

	meta := f.productMeta(t, product.ID)
	require.NotNil(t, meta.AvgRating)
	assert.Equal(t, 4.0, *meta.AvgRating)
}

func TestReviewService_UpdateReview_ImageReplacement(t *testing.T) {
	f := setupReviewServiceTest(t)
	user := f.createUser(t, "user@example.com", model.RoleUser)
	product := f.createProduct(t, "디퓨저")

	review, _, err := f.service.CreateReview(user.ID, product.ID, 4, "향이 좋아요",
		[]string{"/uploads/reviews/old1.jpg", "/uploads/reviews/old2.jpg"})
	require.NoError(t, err)

	// old1만 유지하고 new1 추가
	updated, err := f.service.UpdateReview(review.ID, user.ID, model.RoleUser, nil, nil,
		[]string{"/uploads/reviews/old1.jpg"},
		[]string{"/uploads/reviews/new1.jpg"})
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"/uploads/reviews/old1.jpg", "/uploads/reviews/new1.jpg"},
		[]string(updated.Images))

	// 빠진 이미지만 삭제된다
	assert.Contains(t, f.imageStore.deleted, "/uploads/reviews/old2.jpg")
	assert.NotContains(t, f.imageStore.deleted, "/uploads/reviews/old1.jpg")
}

func TestReviewService_Authorization(t *testing.T) {
	f := setupReviewServiceTest(t)
	author := f.createUser(t, "author@example.com", model.RoleUser)
	stranger := f.createUser(t, "stranger@example.com", model.RoleUser)
	admin := f.createUser(t, "admin@example.com", model.RoleAdmin)
	product := f.createProduct(t, "노트북 거치대")

	review, _, err := f.service.CreateReview(author.ID, product.ID, 5, "튼튼합니다", nil)
	require.NoError(t, err)

	// 제3자는 수정/삭제 불가, 상태도 변하지 않는다
	newRating := 1
	_, err = f.service.UpdateReview(review.ID, stranger.ID, model.RoleUser, &newRating, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNotReviewAuthor)

	err = f.service.DeleteReview(review.ID, stranger.ID, model.RoleUser)
	assert.ErrorIs(t, err, ErrNotReviewAuthor)

	unchanged, err := f.reviewRepo.GetReviewByID(review.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, unchanged.Rating)

	meta := f.productMeta(t, product.ID)
	require.NotNil(t, meta.AvgRating)
	assert.Equal(t, 5.0, *meta.AvgRating)

	// 관리자는 작성자가 아니어도 삭제할 수 있다
	require.NoError(t, f.service.DeleteReview(review.ID, admin.ID, model.RoleAdmin))
}

func TestReviewService_GetReviewsByProduct(t *testing.T) {
	f := setupReviewServiceTest(t)
	user := f.createUser(t, "user@example.com", model.RoleUser)
	product := f.createProduct(t, "캡슐 커피머신")

	_, _, err := f.service.CreateReview(user.ID, product.ID, 5, "편하고 맛있어요", nil)
	require.NoError(t, err)

	result, err := f.service.GetReviewsByProduct(product.ID)
	require.NoError(t, err)
	require.Len(t, result.Reviews, 1)
	require.NotNil(t, result.AvgRating)
	assert.Equal(t, 5.0, *result.AvgRating)
	assert.Equal(t, 1, result.TotalReviews)

	_, err = f.service.GetReviewsByProduct(product.ID + 999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestReviewService_RepairAllAggregates(t *testing.T) {
	f := setupReviewServiceTest(t)
	user := f.createUser(t, "user@example.com", model.RoleUser)
	product := f.createProduct(t, "요가매트")

	_, _, err := f.service.CreateReview(user.ID, product.ID, 4, "쿠션감이 좋아요", nil)
	require.NoError(t, err)

	// 집계를 일부러 어긋나게 만든 뒤 보정 스윕으로 복구
	wrong := 1.0
	require.NoError(t, f.productRepo.UpdateMeta(product.ID, &wrong, 99))

	repaired, err := f.service.RepairAllAggregates()
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	meta := f.productMeta(t, product.ID)
	require.NotNil(t, meta.AvgRating)
	assert.Equal(t, 4.0, *meta.AvgRating)
	assert.Equal(t, 1, meta.TotalReviews)
}
