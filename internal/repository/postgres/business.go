package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/repository"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/database"
	apperrors "github.com/infLocus/Crowdsourced-Review-Platform/pkg/errors"
)

const businessColumns = `b.id, b.name, b.slug, b.description, b.category, b.address, b.city, b.state, b.zip_code,
		b.phone, b.email, b.website, b.images, b.cover_image, b.owner_id, b.is_verified, b.is_active,
		b.average_rating::float8, b.total_reviews, b.created_at, b.updated_at,
		COALESCE(u.username, ''), COALESCE(u.avatar, '')`

const businessFrom = `FROM businesses b LEFT JOIN users u ON u.id = b.owner_id`

// BusinessRepository implements repository.BusinessRepository using PostgreSQL.
type BusinessRepository struct {
	db database.DBTX
}

// NewBusinessRepository creates a new PostgreSQL-backed business repository.
func NewBusinessRepository(db database.DBTX) *BusinessRepository {
	return &BusinessRepository{db: db}
}

// Create inserts a new business into the database.
func (r *BusinessRepository) Create(ctx context.Context, b *domain.Business) error {
	query := `
		INSERT INTO businesses (id, name, slug, description, category, address, city, state, zip_code,
		                        phone, email, website, images, cover_image, owner_id, is_verified, is_active,
		                        average_rating, total_reviews, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, 0, 0, $18, $19)`

	ctx, end := database.TraceQuery(ctx, "INSERT businesses", query)
	_, err := r.db.Exec(ctx, query,
		b.ID, b.Name, b.Slug, b.Description, b.Category, b.Address, b.City, b.State, b.ZipCode,
		b.Phone, b.Email, b.Website, nonNil(b.Images), b.CoverImage, b.OwnerID, b.IsVerified, b.IsActive,
		b.CreatedAt, b.UpdatedAt,
	)
	end(err)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("business", "slug", b.Slug)
		}
		if database.IsForeignKeyViolation(err) {
			return apperrors.InvalidInput("owner does not exist")
		}
		return fmt.Errorf("insert business: %w", err)
	}
	return nil
}

// GetByID retrieves a business by its ID.
func (r *BusinessRepository) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	query := `SELECT ` + businessColumns + ` ` + businessFrom + ` WHERE b.id = $1`
	return r.scanOne(ctx, query, id)
}

// GetByIDOrSlug retrieves a business by ID when idOrSlug parses as a uuid and
// by slug otherwise.
func (r *BusinessRepository) GetByIDOrSlug(ctx context.Context, idOrSlug string) (*domain.Business, error) {
	if _, err := uuid.Parse(idOrSlug); err == nil {
		return r.GetByID(ctx, idOrSlug)
	}
	query := `SELECT ` + businessColumns + ` ` + businessFrom + ` WHERE b.slug = $1`
	return r.scanOne(ctx, query, strings.ToLower(idOrSlug))
}

// List returns businesses matching the given filter along with the total count.
func (r *BusinessRepository) List(ctx context.Context, filter repository.BusinessFilter) ([]domain.Business, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.ActiveOnly {
		conditions = append(conditions, "b.is_active = TRUE")
	}

	if filter.Verified != nil {
		conditions = append(conditions, fmt.Sprintf("b.is_verified = $%d", argIndex))
		args = append(args, *filter.Verified)
		argIndex++
	}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("b.category = $%d", argIndex))
		args = append(args, filter.Category)
		argIndex++
	}

	if filter.City != "" {
		conditions = append(conditions, fmt.Sprintf("b.city ILIKE $%d", argIndex))
		args = append(args, likePattern(filter.City))
		argIndex++
	}

	if filter.State != "" {
		conditions = append(conditions, fmt.Sprintf("b.state ILIKE $%d", argIndex))
		args = append(args, likePattern(filter.State))
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(b.name ILIKE $%d OR b.description ILIKE $%d OR b.city ILIKE $%d)", argIndex, argIndex, argIndex))
		args = append(args, likePattern(filter.Search))
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s,
		       count(*) OVER() AS total_count
		%s
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		businessColumns, businessFrom, whereClause, orderBy(filter.Sort), argIndex, argIndex+1,
	)
	args = append(args, filter.Page.Limit, filter.Page.Offset)

	ctx, end := database.TraceQuery(ctx, "SELECT businesses", query)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		end(err)
		return nil, 0, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	var (
		businesses []domain.Business
		total      int
	)
	for rows.Next() {
		b, err := scanBusiness(rows, &total)
		if err != nil {
			end(err)
			return nil, 0, fmt.Errorf("scan business row: %w", err)
		}
		businesses = append(businesses, *b)
	}
	err = rows.Err()
	end(err)
	if err != nil {
		return nil, 0, fmt.Errorf("iterate business rows: %w", err)
	}

	if businesses == nil {
		businesses = []domain.Business{}
		if filter.Page.Offset > 0 {
			if total, err = countMatches(ctx, r.db, "businesses b", whereClause, args[:len(args)-2]); err != nil {
				return nil, 0, fmt.Errorf("count businesses: %w", err)
			}
		}
	}
	return businesses, total, nil
}

// countMatches counts the rows matching where. A page past the end returns no
// rows, so the windowed total_count is not available there.
func countMatches(ctx context.Context, db database.DBTX, table, where string, args []any) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s %s`, table, where)
	ctx, end := database.TraceQuery(ctx, "SELECT count", query)
	var total int
	err := db.QueryRow(ctx, query, args...).Scan(&total)
	end(err)
	return total, err
}

func orderBy(sort string) string {
	switch domain.NormalizeSort(sort) {
	case domain.SortRating:
		return "b.average_rating DESC, b.total_reviews DESC, b.created_at DESC"
	case domain.SortName:
		return "b.name ASC"
	default:
		return "b.created_at DESC"
	}
}

// likePattern wraps s for a substring ILIKE, escaping wildcards the caller
// typed literally.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// Featured returns the top verified, active businesses.
func (r *BusinessRepository) Featured(ctx context.Context, limit int) ([]domain.Business, error) {
	query := `SELECT ` + businessColumns + ` ` + businessFrom + `
		WHERE b.is_active = TRUE AND b.is_verified = TRUE
		ORDER BY b.average_rating DESC, b.total_reviews DESC
		LIMIT $1`
	return r.scanMany(ctx, "featured businesses", query, limit)
}

// Recent returns the most recently created businesses.
func (r *BusinessRepository) Recent(ctx context.Context, limit int) ([]domain.Business, error) {
	query := `SELECT ` + businessColumns + ` ` + businessFrom + `
		ORDER BY b.created_at DESC
		LIMIT $1`
	return r.scanMany(ctx, "recent businesses", query, limit)
}

// ListAll returns every business.
func (r *BusinessRepository) ListAll(ctx context.Context) ([]domain.Business, error) {
	query := `SELECT ` + businessColumns + ` ` + businessFrom + ` ORDER BY b.created_at`
	return r.scanMany(ctx, "all businesses", query)
}

// CategoryCounts counts active businesses per category.
func (r *BusinessRepository) CategoryCounts(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT category, count(*)
		FROM businesses
		WHERE is_active = TRUE
		GROUP BY category`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			category string
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts[category] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}
	return counts, nil
}

// SlugExists reports whether slug belongs to a business other than excludeID.
func (r *BusinessRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM businesses WHERE slug = $1 AND id::text <> $2)`,
		slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

// Update modifies the editable fields of a business.
func (r *BusinessRepository) Update(ctx context.Context, b *domain.Business) error {
	b.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE businesses
		SET name = $1, slug = $2, description = $3, category = $4, address = $5, city = $6, state = $7,
		    zip_code = $8, phone = $9, email = $10, website = $11, images = $12, cover_image = $13, updated_at = $14
		WHERE id = $15`

	ctx, end := database.TraceQuery(ctx, "UPDATE businesses", query)
	ct, err := r.db.Exec(ctx, query,
		b.Name, b.Slug, b.Description, b.Category, b.Address, b.City, b.State,
		b.ZipCode, b.Phone, b.Email, b.Website, nonNil(b.Images), b.CoverImage, b.UpdatedAt,
		b.ID,
	)
	end(err)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("business", "slug", b.Slug)
		}
		return fmt.Errorf("update business: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("Business")
	}
	return nil
}

// SetVerified sets the verification flag and returns the updated business.
func (r *BusinessRepository) SetVerified(ctx context.Context, id string, verified bool) (*domain.Business, error) {
	return r.setFlag(ctx, "is_verified", id, verified)
}

// SetActive sets the active flag and returns the updated business.
func (r *BusinessRepository) SetActive(ctx context.Context, id string, active bool) (*domain.Business, error) {
	return r.setFlag(ctx, "is_active", id, active)
}

// setFlag updates one boolean column; column is always a constant.
func (r *BusinessRepository) setFlag(ctx context.Context, column, id string, value bool) (*domain.Business, error) {
	query := fmt.Sprintf(`UPDATE businesses SET %s = $1, updated_at = $2 WHERE id = $3`, column)
	ct, err := r.db.Exec(ctx, query, value, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("update business %s: %w", column, err)
	}
	if ct.RowsAffected() == 0 {
		return nil, apperrors.NotFound("Business")
	}
	return r.GetByID(ctx, id)
}

// Delete removes a business and all of its reviews in one transaction.
func (r *BusinessRepository) Delete(ctx context.Context, id string) error {
	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE business_id = $1`, id); err != nil {
			return fmt.Errorf("delete business reviews: %w", err)
		}
		ct, err := tx.Exec(ctx, `DELETE FROM businesses WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete business: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return apperrors.NotFound("Business")
		}
		return nil
	})
}

// Count returns the number of businesses.
func (r *BusinessRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM businesses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count businesses: %w", err)
	}
	return n, nil
}

func (r *BusinessRepository) scanOne(ctx context.Context, query string, args ...any) (*domain.Business, error) {
	ctx, end := database.TraceQuery(ctx, "SELECT businesses", query)
	b, err := scanBusiness(r.db.QueryRow(ctx, query, args...), nil)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("Business")
		}
		return nil, fmt.Errorf("scan business: %w", err)
	}
	return b, nil
}

func (r *BusinessRepository) scanMany(ctx context.Context, what, query string, args ...any) ([]domain.Business, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", what, err)
	}
	defer rows.Close()

	businesses := []domain.Business{}
	for rows.Next() {
		b, err := scanBusiness(rows, nil)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		businesses = append(businesses, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return businesses, nil
}

// scanBusiness reads the businessColumns projection, plus the window total
// when total is non-nil.
func scanBusiness(row pgx.Row, total *int) (*domain.Business, error) {
	var (
		b           domain.Business
		ownerName   string
		ownerAvatar string
	)
	dest := []any{
		&b.ID, &b.Name, &b.Slug, &b.Description, &b.Category, &b.Address, &b.City, &b.State, &b.ZipCode,
		&b.Phone, &b.Email, &b.Website, &b.Images, &b.CoverImage, &b.OwnerID, &b.IsVerified, &b.IsActive,
		&b.AverageRating, &b.TotalReviews, &b.CreatedAt, &b.UpdatedAt,
		&ownerName, &ownerAvatar,
	}
	if total != nil {
		dest = append(dest, total)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if ownerName != "" {
		b.Owner = &domain.UserSummary{ID: b.OwnerID, Username: ownerName, Avatar: ownerAvatar}
	}
	if b.Images == nil {
		b.Images = []string{}
	}
	return &b, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
