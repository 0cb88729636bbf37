package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/database"
	apperrors "github.com/infLocus/Crowdsourced-Review-Platform/pkg/errors"
)

// recomputeQuery rebuilds the rating projection of one business from its
// approved reviews. With none left both fields fall back to zero.
const recomputeQuery = `
	UPDATE businesses b
	SET average_rating = agg.average_rating,
	    total_reviews  = agg.total_reviews
	FROM (
		SELECT COALESCE(ROUND(AVG(rating)::numeric, 1), 0) AS average_rating,
		       count(*)                                   AS total_reviews
		FROM reviews
		WHERE business_id = $1 AND status = 'approved'
	) agg
	WHERE b.id = $1
	RETURNING b.average_rating::float8, b.total_reviews`

// recompute runs the rating aggregation on db, which is the transaction of
// the mutation that triggered it.
func recompute(ctx context.Context, db database.DBTX, businessID string) (*domain.RatingSummary, error) {
	ctx, end := database.TraceQuery(ctx, "UPDATE businesses rating", recomputeQuery)
	s := domain.RatingSummary{BusinessID: businessID}
	err := db.QueryRow(ctx, recomputeQuery, businessID).Scan(&s.AverageRating, &s.TotalReviews)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("Business")
		}
		return nil, fmt.Errorf("recompute rating: %w", err)
	}
	return &s, nil
}

const ratingStatsQuery = `
	SELECT COALESCE(ROUND(AVG(rating)::numeric, 1), 0)::float8,
	       COALESCE(ROUND(AVG(quality)::numeric, 1), 0)::float8,
	       COALESCE(ROUND(AVG(service)::numeric, 1), 0)::float8,
	       COALESCE(ROUND(AVG(value)::numeric, 1), 0)::float8,
	       count(*)
	FROM reviews
	WHERE business_id = $1 AND status = 'approved'`
