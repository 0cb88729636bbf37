package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/repository"
	apperrors "github.com/infLocus/Crowdsourced-Review-Platform/pkg/errors"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/pagination"
)

func TestReviewRepository_Create_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	rv := sampleReview()
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(
			rv.ID, rv.BusinessID, rv.UserID, rv.Rating, rv.Quality, rv.Service, rv.Value, rv.Title, rv.Content,
			rv.Photos, rv.Status, rv.RejectionReason, rv.Helpful, rv.CreatedAt, rv.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), &rv))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create_Duplicate(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	rv := sampleReview()
	mock.ExpectExec("INSERT INTO reviews").
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint \"reviews_business_user_key\" (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), &rv)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ALREADY_REVIEWED", appErr.Code)
	assert.Equal(t, "You have already reviewed this business", appErr.Message)
	assert.Equal(t, 400, appErr.Status)
}

func TestReviewRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	rv := sampleReview()
	mock.ExpectQuery(`(?s)FROM reviews r.+WHERE r\.id = \$1`).
		WithArgs(rv.ID).
		WillReturnRows(pgxmock.NewRows(reviewCols).AddRow(reviewRow(rv)...))

	got, err := repo.GetByID(context.Background(), rv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	require.NotNil(t, got.User)
	assert.Equal(t, "ada", got.User.Username)
	require.NotNil(t, got.Business)
	assert.Equal(t, "blue-door-cafe", got.Business.Slug)
}

func TestReviewRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectQuery("FROM reviews r").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReviewRepository_List_ApprovedForBusiness(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	rv := sampleReview()
	rv.Status = domain.StatusApproved
	mock.ExpectQuery(`(?s)WHERE r\.business_id = \$1 AND r\.status = \$2\s+ORDER BY r\.created_at DESC\s+LIMIT \$3 OFFSET \$4`).
		WithArgs(businessID, domain.StatusApproved, 10, 10).
		WillReturnRows(pgxmock.NewRows(reviewColsWithCount).AddRow(append(reviewRow(rv), 11)...))

	items, total, err := repo.List(context.Background(), repository.ReviewFilter{
		BusinessID: businessID,
		Status:     domain.StatusApproved,
		Page:       pagination.NewParams(2, 10, 10),
	})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_List_PagePastEndKeepsTotal(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectQuery(`(?s)WHERE r\.business_id = \$1 AND r\.status = \$2.+LIMIT \$3 OFFSET \$4`).
		WithArgs(businessID, domain.StatusApproved, 10, 30).
		WillReturnRows(pgxmock.NewRows(reviewColsWithCount))
	mock.ExpectQuery(`SELECT count\(\*\) FROM reviews r WHERE r\.business_id = \$1 AND r\.status = \$2$`).
		WithArgs(businessID, domain.StatusApproved).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(11))

	items, total, err := repo.List(context.Background(), repository.ReviewFilter{
		BusinessID: businessID,
		Status:     domain.StatusApproved,
		Page:       pagination.NewParams(4, 10, 10),
	})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_List_FirstPageEmptySkipsCount(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectQuery(`WHERE r\.user_id = \$1`).
		WithArgs(authorID, 10, 0).
		WillReturnRows(pgxmock.NewRows(reviewColsWithCount))

	items, total, err := repo.List(context.Background(), repository.ReviewFilter{
		UserID: authorID,
		Page:   pagination.NewParams(1, 10, 10),
	})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_UpdateStatus_ApproveRecomputesInSameTx(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	rv := sampleReview()
	rv.Status = domain.StatusApproved

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE reviews\s+SET status = \$1, rejection_reason = \$2`).
		WithArgs(domain.StatusApproved, "", pgxmock.AnyArg(), rv.ID, domain.StatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"business_id"}).AddRow(businessID))
	mock.ExpectQuery(`UPDATE businesses b\s+SET average_rating`).
		WithArgs(businessID).
		WillReturnRows(ratingRows(4.0, 3))
	mock.ExpectQuery(`FROM reviews r`).
		WithArgs(rv.ID).
		WillReturnRows(pgxmock.NewRows(reviewCols).AddRow(reviewRow(rv)...))
	mock.ExpectCommit()

	got, summary, err := repo.UpdateStatus(context.Background(), repository.StatusChange{
		ReviewID: rv.ID,
		From:     domain.StatusPending,
		To:       domain.StatusApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
	assert.Equal(t, &domain.RatingSummary{BusinessID: businessID, AverageRating: 4.0, TotalReviews: 3}, summary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_UpdateStatus_RejectOnlyApprovedDropsToZero(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	rv := sampleReview()
	rv.Status = domain.StatusRejected
	rv.RejectionReason = domain.DefaultRejectionReason

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE reviews").
		WithArgs(domain.StatusRejected, domain.DefaultRejectionReason, pgxmock.AnyArg(), rv.ID, domain.StatusApproved).
		WillReturnRows(pgxmock.NewRows([]string{"business_id"}).AddRow(businessID))
	mock.ExpectQuery("UPDATE businesses b").
		WithArgs(businessID).
		WillReturnRows(ratingRows(0, 0))
	mock.ExpectQuery("FROM reviews r").
		WithArgs(rv.ID).
		WillReturnRows(pgxmock.NewRows(reviewCols).AddRow(reviewRow(rv)...))
	mock.ExpectCommit()

	_, summary, err := repo.UpdateStatus(context.Background(), repository.StatusChange{
		ReviewID:        rv.ID,
		From:            domain.StatusApproved,
		To:              domain.StatusRejected,
		RejectionReason: domain.DefaultRejectionReason,
	})
	require.NoError(t, err)
	assert.Zero(t, summary.AverageRating)
	assert.Zero(t, summary.TotalReviews)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_UpdateStatus_StaleStatusConflicts(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE reviews").WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, _, err := repo.UpdateStatus(context.Background(), repository.StatusChange{
		ReviewID: reviewID, From: domain.StatusPending, To: domain.StatusApproved,
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_UpdateStatus_RecomputeFailureRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE reviews").
		WillReturnRows(pgxmock.NewRows([]string{"business_id"}).AddRow(businessID))
	mock.ExpectQuery("UPDATE businesses b").WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	_, _, err := repo.UpdateStatus(context.Background(), repository.StatusChange{
		ReviewID: reviewID, From: domain.StatusPending, To: domain.StatusApproved,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recompute rating")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Update_RecomputesInSameTx(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	rv := sampleReview()
	rv.Rating = 2

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE reviews\s+SET rating = \$1`).
		WithArgs(2, rv.Quality, rv.Service, rv.Value, rv.Title, rv.Content, rv.Photos, rv.Status, pgxmock.AnyArg(), rv.ID, domain.StatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("UPDATE businesses b").
		WithArgs(businessID).
		WillReturnRows(ratingRows(5.0, 1))
	mock.ExpectCommit()

	summary, err := repo.Update(context.Background(), &rv, domain.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, 5.0, summary.AverageRating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Update_StaleStatusConflicts(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	// Read as approved, rejected by an admin before the edit lands.
	rv := sampleReview()
	mock.ExpectBegin()
	mock.ExpectExec(`(?s)UPDATE reviews\s+SET rating = \$1.+WHERE id = \$10 AND status = \$11`).
		WithArgs(rv.Rating, rv.Quality, rv.Service, rv.Value, rv.Title, rv.Content, rv.Photos, domain.StatusPending, pgxmock.AnyArg(), rv.ID, domain.StatusApproved).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), &rv, domain.StatusApproved)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Delete_RecomputesInSameTx(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM reviews WHERE id").
		WithArgs(reviewID).
		WillReturnRows(pgxmock.NewRows([]string{"business_id"}).AddRow(businessID))
	mock.ExpectQuery("UPDATE businesses b").
		WithArgs(businessID).
		WillReturnRows(ratingRows(4.5, 2))
	mock.ExpectCommit()

	summary, err := repo.Delete(context.Background(), reviewID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, summary.AverageRating)
	assert.Equal(t, 2, summary.TotalReviews)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Delete_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM reviews").WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Delete(context.Background(), reviewID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReviewRepository_Recompute_UnknownBusiness(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE businesses b").WithArgs("gone").WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Recompute(context.Background(), "gone")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReviewRepository_RatingStats(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectQuery(`FROM reviews\s+WHERE business_id = \$1 AND status = 'approved'`).
		WithArgs(businessID).
		WillReturnRows(pgxmock.NewRows([]string{"r", "q", "s", "v", "c"}).AddRow(4.5, 4.0, 5.0, 3.5, 2))

	stats, err := repo.RatingStats(context.Background(), businessID)
	require.NoError(t, err)
	assert.Equal(t, domain.RatingStats{AvgRating: 4.5, AvgQuality: 4.0, AvgService: 5.0, AvgValue: 3.5, Count: 2}, stats)
}

func TestReviewRepository_CountByStatus_FillsMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectQuery("SELECT status, count").
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).AddRow("approved", 7).AddRow("pending", 2))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, counts[domain.StatusApproved])
	assert.Equal(t, 2, counts[domain.StatusPending])
	assert.Equal(t, 0, counts[domain.StatusRejected])
}
