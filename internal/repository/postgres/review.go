package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/repository"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/database"
	apperrors "github.com/infLocus/Crowdsourced-Review-Platform/pkg/errors"
)

const reviewColumns = `r.id, r.business_id, r.user_id, r.rating, r.quality, r.service, r.value, r.title, r.content,
		r.photos, r.status, r.rejection_reason, r.helpful, r.created_at, r.updated_at,
		COALESCE(u.username, ''), COALESCE(u.avatar, ''), COALESCE(u.email, ''),
		COALESCE(b.name, ''), COALESCE(b.slug, ''), COALESCE(b.category, ''), COALESCE(b.city, ''), COALESCE(b.state, '')`

const reviewFrom = `FROM reviews r
		LEFT JOIN users u ON u.id = r.user_id
		LEFT JOIN businesses b ON b.id = r.business_id`

// ErrAlreadyReviewed is returned when a user reviews the same business twice.
var ErrAlreadyReviewed = apperrors.Rule("ALREADY_REVIEWED", "You have already reviewed this business")

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a new review. New reviews are pending and do not touch the
// rating projection.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `
		INSERT INTO reviews (id, business_id, user_id, rating, quality, service, value, title, content,
		                     photos, status, rejection_reason, helpful, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	ctx, end := database.TraceQuery(ctx, "INSERT reviews", query)
	_, err := r.db.Exec(ctx, query,
		rv.ID, rv.BusinessID, rv.UserID, rv.Rating, rv.Quality, rv.Service, rv.Value, rv.Title, rv.Content,
		nonNil(rv.Photos), rv.Status, rv.RejectionReason, rv.Helpful, rv.CreatedAt, rv.UpdatedAt,
	)
	end(err)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrAlreadyReviewed
		}
		if database.IsForeignKeyViolation(err) {
			return apperrors.NotFound("Business")
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// GetByID retrieves a review by its ID with user and business summaries.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *ReviewRepository) getByID(ctx context.Context, db database.DBTX, id string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` ` + reviewFrom + ` WHERE r.id = $1`

	rv, err := scanReview(db.QueryRow(ctx, query, id), nil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("Review")
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}
	return rv, nil
}

// List returns reviews matching the filter, newest first, with the total count.
func (r *ReviewRepository) List(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.BusinessID != "" {
		conditions = append(conditions, fmt.Sprintf("r.business_id = $%d", argIndex))
		args = append(args, filter.BusinessID)
		argIndex++
	}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("r.user_id = $%d", argIndex))
		args = append(args, filter.UserID)
		argIndex++
	}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s,
		       count(*) OVER() AS total_count
		%s
		%s
		ORDER BY r.created_at DESC
		LIMIT $%d OFFSET $%d`,
		reviewColumns, reviewFrom, whereClause, argIndex, argIndex+1,
	)
	args = append(args, filter.Page.Limit, filter.Page.Offset)

	ctx, end := database.TraceQuery(ctx, "SELECT reviews", query)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		end(err)
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews []domain.Review
		total   int
	)
	for rows.Next() {
		rv, err := scanReview(rows, &total)
		if err != nil {
			end(err)
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	err = rows.Err()
	end(err)
	if err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
		if filter.Page.Offset > 0 {
			if total, err = countMatches(ctx, r.db, "reviews r", whereClause, args[:len(args)-2]); err != nil {
				return nil, 0, fmt.Errorf("count reviews: %w", err)
			}
		}
	}
	return reviews, total, nil
}

// LatestApproved returns the newest approved reviews of a business.
func (r *ReviewRepository) LatestApproved(ctx context.Context, businessID string, limit int) ([]domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` ` + reviewFrom + `
		WHERE r.business_id = $1 AND r.status = 'approved'
		ORDER BY r.created_at DESC
		LIMIT $2`
	return r.scanMany(ctx, query, businessID, limit)
}

// Recent returns the newest reviews across all businesses.
func (r *ReviewRepository) Recent(ctx context.Context, limit int) ([]domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` ` + reviewFrom + `
		ORDER BY r.created_at DESC
		LIMIT $1`
	return r.scanMany(ctx, query, limit)
}

// Update writes the author-editable fields and status of a review and
// recomputes its business's rating in the same transaction. Like
// UpdateStatus it only applies while the review is still in status from, so
// a moderation that lands between read and write is not overwritten.
func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review, from domain.ReviewStatus) (*domain.RatingSummary, error) {
	rv.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE reviews
		SET rating = $1, quality = $2, service = $3, value = $4, title = $5, content = $6,
		    photos = $7, status = $8, updated_at = $9
		WHERE id = $10 AND status = $11`

	var summary *domain.RatingSummary
	err := database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, query,
			rv.Rating, rv.Quality, rv.Service, rv.Value, rv.Title, rv.Content,
			nonNil(rv.Photos), rv.Status, rv.UpdatedAt, rv.ID, from,
		)
		if err != nil {
			return fmt.Errorf("update review: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return apperrors.Conflict("review status changed concurrently")
		}
		summary, err = recompute(ctx, tx, rv.BusinessID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// UpdateStatus moves a review between moderation states and recomputes its
// business's rating in the same transaction. The update only applies while
// the review is still in change.From, so a concurrent moderation yields a
// conflict rather than a lost update.
func (r *ReviewRepository) UpdateStatus(ctx context.Context, change repository.StatusChange) (*domain.Review, *domain.RatingSummary, error) {
	query := `
		UPDATE reviews
		SET status = $1, rejection_reason = $2, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING business_id`

	var (
		review  *domain.Review
		summary *domain.RatingSummary
	)
	err := database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var businessID string
		err := tx.QueryRow(ctx, query,
			change.To, change.RejectionReason, time.Now().UTC(), change.ReviewID, change.From,
		).Scan(&businessID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.Conflict("review status changed concurrently")
			}
			return fmt.Errorf("update review status: %w", err)
		}

		if summary, err = recompute(ctx, tx, businessID); err != nil {
			return err
		}
		review, err = r.getByID(ctx, tx, change.ReviewID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return review, summary, nil
}

// Delete removes a review and recomputes its business's rating in the same
// transaction.
func (r *ReviewRepository) Delete(ctx context.Context, id string) (*domain.RatingSummary, error) {
	var summary *domain.RatingSummary
	err := database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var businessID string
		err := tx.QueryRow(ctx, `DELETE FROM reviews WHERE id = $1 RETURNING business_id`, id).Scan(&businessID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NotFound("Review")
			}
			return fmt.Errorf("delete review: %w", err)
		}
		summary, err = recompute(ctx, tx, businessID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Recompute rebuilds a business's rating projection in its own transaction.
func (r *ReviewRepository) Recompute(ctx context.Context, businessID string) (*domain.RatingSummary, error) {
	var summary *domain.RatingSummary
	err := database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		summary, err = recompute(ctx, tx, businessID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// RatingStats averages every rating dimension over approved reviews.
func (r *ReviewRepository) RatingStats(ctx context.Context, businessID string) (domain.RatingStats, error) {
	var s domain.RatingStats
	err := r.db.QueryRow(ctx, ratingStatsQuery, businessID).Scan(
		&s.AvgRating, &s.AvgQuality, &s.AvgService, &s.AvgValue, &s.Count,
	)
	if err != nil {
		return domain.RatingStats{}, fmt.Errorf("rating stats: %w", err)
	}
	return s, nil
}

// CountByStatus counts reviews per moderation status. Statuses with no
// reviews are reported as zero.
func (r *ReviewRepository) CountByStatus(ctx context.Context) (map[domain.ReviewStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, count(*) FROM reviews GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}
	defer rows.Close()

	counts := map[domain.ReviewStatus]int{
		domain.StatusPending:  0,
		domain.StatusApproved: 0,
		domain.StatusRejected: 0,
	}
	for rows.Next() {
		var (
			status domain.ReviewStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan review count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review counts: %w", err)
	}
	return counts, nil
}

func (r *ReviewRepository) scanMany(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows, nil)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}
	return reviews, nil
}

// scanReview reads the reviewColumns projection, plus the window total when
// total is non-nil.
func scanReview(row pgx.Row, total *int) (*domain.Review, error) {
	var (
		rv                                domain.Review
		username, avatar, email           string
		bizName, bizSlug, bizCat, bizCity string
		bizState                          string
	)
	dest := []any{
		&rv.ID, &rv.BusinessID, &rv.UserID, &rv.Rating, &rv.Quality, &rv.Service, &rv.Value, &rv.Title, &rv.Content,
		&rv.Photos, &rv.Status, &rv.RejectionReason, &rv.Helpful, &rv.CreatedAt, &rv.UpdatedAt,
		&username, &avatar, &email,
		&bizName, &bizSlug, &bizCat, &bizCity, &bizState,
	}
	if total != nil {
		dest = append(dest, total)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if username != "" {
		rv.User = &domain.UserSummary{ID: rv.UserID, Username: username, Avatar: avatar, Email: email}
	}
	if bizName != "" {
		rv.Business = &domain.BusinessSummary{
			ID: rv.BusinessID, Name: bizName, Slug: bizSlug, Category: bizCat, City: bizCity, State: bizState,
		}
	}
	if rv.Photos == nil {
		rv.Photos = []string{}
	}
	return &rv, nil
}
