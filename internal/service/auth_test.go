package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/auth"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
	apperrors "github.com/infLocus/Crowdsourced-Review-Platform/pkg/errors"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/logger"
)

const testSecret = "test-secret-key-that-is-long-enough"

func newTestAuthService() (*AuthService, *mockUserRepository, *mockRefreshTokenRepository, *auth.JWTManager) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	jwtManager := auth.NewJWTManager(testSecret, 15*time.Minute, 7*24*time.Hour)

	svc := NewAuthService(userRepo, tokenRepo, jwtManager, logger.Discard())
	svc.hashCost = bcrypt.MinCost
	return svc, userRepo, tokenRepo, jwtManager
}

func hashedUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           ownerID,
		Username:     "jane",
		Email:        "jane@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		IsActive:     true,
	}
}

func TestRegister_Success(t *testing.T) {
	svc, userRepo, tokenRepo, jwtManager := newTestAuthService()
	ctx := context.Background()

	userRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "jane@example.com" && u.Username == "jane" && u.Role == domain.RoleUser &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Secret123")) == nil
	})).Return(nil).Once()
	tokenRepo.On("Create", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	user, tokens, err := svc.Register(ctx, RegisterInput{Username: " jane ", Email: "Jane@Example.com", Password: "Secret123"})
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, 900, tokens.ExpiresIn)
	claims, err := jwtManager.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)

	userRepo.AssertExpectations(t)
	tokenRepo.AssertExpectations(t)
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, userRepo, _, _ := newTestAuthService()

	tests := []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"}
	for _, pw := range tests {
		t.Run(pw, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), RegisterInput{Username: "jane", Email: "jane@example.com", Password: pw})
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, userRepo, _, _ := newTestAuthService()
	ctx := context.Background()

	userRepo.On("Create", ctx, mock.Anything).Return(apperrors.AlreadyExists("User", "email", "jane@example.com")).Once()

	_, _, err := svc.Register(ctx, RegisterInput{Username: "jane", Email: "jane@example.com", Password: "Secret123"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists))
}

func TestLogin_Success(t *testing.T) {
	svc, userRepo, tokenRepo, _ := newTestAuthService()
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "jane@example.com").Return(hashedUser(t, "Secret123"), nil).Once()
	tokenRepo.On("Create", ctx, ownerID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	user, tokens, err := svc.Login(ctx, LoginInput{Email: "JANE@example.com", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, ownerID, user.ID)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, userRepo, _, _ := newTestAuthService()
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "jane@example.com").Return(hashedUser(t, "Secret123"), nil).Once()

	_, _, err := svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "Wrong1234"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, userRepo, _, _ := newTestAuthService()
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, apperrors.NotFound("User")).Once()

	_, _, err := svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "Secret123"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestLogin_Deactivated(t *testing.T) {
	svc, userRepo, _, _ := newTestAuthService()
	ctx := context.Background()

	u := hashedUser(t, "Secret123")
	u.IsActive = false
	userRepo.On("GetByEmail", ctx, "jane@example.com").Return(u, nil).Once()

	_, _, err := svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "Secret123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deactivated")
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc, userRepo, tokenRepo, jwtManager := newTestAuthService()
	ctx := context.Background()

	old, err := jwtManager.GenerateRefreshToken(ownerID)
	require.NoError(t, err)
	oldHash := auth.HashToken(old)

	tokenRepo.On("GetByHash", ctx, oldHash).Return(&domain.RefreshToken{
		UserID: ownerID, TokenHash: oldHash, ExpiresAt: time.Now().Add(time.Hour),
	}, nil).Once()
	tokenRepo.On("Revoke", ctx, oldHash).Return(nil).Once()
	userRepo.On("GetByID", ctx, ownerID).Return(hashedUser(t, "Secret123"), nil).Once()
	tokenRepo.On("Create", ctx, ownerID, mock.MatchedBy(func(h string) bool { return h != oldHash }), mock.AnythingOfType("time.Time")).Return(nil).Once()

	tokens, err := svc.Refresh(ctx, old)
	require.NoError(t, err)
	assert.NotEqual(t, old, tokens.RefreshToken)

	tokenRepo.AssertExpectations(t)
}

func TestRefresh_ReusedTokenRejected(t *testing.T) {
	svc, _, tokenRepo, jwtManager := newTestAuthService()
	ctx := context.Background()

	old, err := jwtManager.GenerateRefreshToken(ownerID)
	require.NoError(t, err)
	revokedAt := time.Now().Add(-time.Minute)

	tokenRepo.On("GetByHash", ctx, auth.HashToken(old)).Return(&domain.RefreshToken{
		UserID: ownerID, ExpiresAt: time.Now().Add(time.Hour), RevokedAt: &revokedAt,
	}, nil).Once()

	_, err = svc.Refresh(ctx, old)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	tokenRepo.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
}

func TestRefresh_ConcurrentRevokeLoses(t *testing.T) {
	svc, _, tokenRepo, jwtManager := newTestAuthService()
	ctx := context.Background()

	old, err := jwtManager.GenerateRefreshToken(ownerID)
	require.NoError(t, err)
	hash := auth.HashToken(old)

	tokenRepo.On("GetByHash", ctx, hash).Return(&domain.RefreshToken{UserID: ownerID, ExpiresAt: time.Now().Add(time.Hour)}, nil).Once()
	tokenRepo.On("Revoke", ctx, hash).Return(apperrors.ErrNotFound).Once()

	_, err = svc.Refresh(ctx, old)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	svc, _, _, jwtManager := newTestAuthService()

	access, err := jwtManager.GenerateAccessToken(ownerID, "jane@example.com", domain.RoleUser)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), access)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestMe(t *testing.T) {
	svc, userRepo, _, _ := newTestAuthService()
	ctx := context.Background()

	userRepo.On("GetByID", ctx, ownerID).Return(&domain.User{ID: ownerID, Username: "jane"}, nil).Once()

	user, err := svc.Me(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, "jane", user.Username)
}
