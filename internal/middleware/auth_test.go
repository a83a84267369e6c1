package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/epson121/budget/internal/config"
	"github.com/epson121/budget/internal/models"
	"github.com/epson121/budget/internal/repositories"
	"github.com/epson121/budget/internal/repositories/repository_mocks"
	"github.com/epson121/budget/internal/services"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

func TestAuthMiddleware(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

type AuthMiddlewareSuite struct {
	suite.Suite
	ctrl                     *gomock.Controller
	tokenService             services.TokenServiceInterface
	mockBlacklistedTokenRepo *repository_mocks.MockBlacklistedTokenRepositoryInterface
	e                        *echo.Echo
	user                     *models.User
}

func (s *AuthMiddlewareSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.tokenService = s.createTokenService(24 * time.Hour)
	s.mockBlacklistedTokenRepo = repository_mocks.NewMockBlacklistedTokenRepositoryInterface(s.ctrl)
	s.e = echo.New()
	s.user = &models.User{ID: uuid.New(), Username: "budgeteer"}
}

func (s *AuthMiddlewareSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AuthMiddlewareSuite) createTokenService(accessTTL time.Duration) services.TokenServiceInterface {
	privateKey, publicKey, err := config.GenerateRSAKeyPair()
	s.Require().NoError(err)

	return services.NewTokenService(&config.JWTConfig{
		PrivateKey:           privateKey,
		PublicKey:            publicKey,
		Issuer:               "test-issuer",
		AccessTokenDuration:  accessTTL,
		RefreshTokenDuration: 7 * 24 * time.Hour,
	})
}

// call runs RequireAuth with the given Authorization header and reports
// whether the protected handler ran.
func (s *AuthMiddlewareSuite) call(tokenService services.TokenServiceInterface, authHeader string) (*httptest.ResponseRecorder, bool) {
	reached := false
	handler := RequireAuth(tokenService, s.mockBlacklistedTokenRepo)(func(c echo.Context) error {
		reached = true
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/user/status", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()

	// SendError writes the response and returns nil
	s.NoError(handler(s.e.NewContext(req, rec)))
	return rec, reached
}

func (s *AuthMiddlewareSuite) TestRequireAuth_ValidToken() {
	token, _, err := s.tokenService.GenerateAccessToken(s.user)
	s.Require().NoError(err)
	jti, err := s.tokenService.GetJTI(token)
	s.Require().NoError(err)

	s.mockBlacklistedTokenRepo.EXPECT().GetByJTI(jti).Return(nil, repositories.ErrTokenNotFound)

	handler := RequireAuth(s.tokenService, s.mockBlacklistedTokenRepo)(func(c echo.Context) error {
		s.Equal(s.user.ID, c.Get("user_id"))
		s.Equal(s.user.Username, c.Get("username"))
		s.Equal(jti, c.Get("token_jti"))
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/user/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	s.NoError(handler(s.e.NewContext(req, rec)))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *AuthMiddlewareSuite) TestRequireAuth_MissingAuthorizationHeader() {
	rec, reached := s.call(s.tokenService, "")
	s.False(reached)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "AUTH_002")
}

func (s *AuthMiddlewareSuite) TestRequireAuth_InvalidTokenFormat() {
	rec, reached := s.call(s.tokenService, "InvalidToken")
	s.False(reached)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "AUTH_004")
}

func (s *AuthMiddlewareSuite) TestRequireAuth_MalformedJWT() {
	rec, reached := s.call(s.tokenService, "Bearer invalid.jwt.token")
	s.False(reached)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *AuthMiddlewareSuite) TestRequireAuth_RefreshTokenIsNotAccepted() {
	refresh, _, err := s.tokenService.GenerateRefreshToken(s.user.ID)
	s.Require().NoError(err)

	rec, reached := s.call(s.tokenService, "Bearer "+refresh)
	s.False(reached)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *AuthMiddlewareSuite) TestRequireAuth_ExpiredToken() {
	short := s.createTokenService(time.Millisecond)
	token, _, err := short.GenerateAccessToken(s.user)
	s.Require().NoError(err)

	time.Sleep(10 * time.Millisecond)

	rec, reached := s.call(short, "Bearer "+token)
	s.False(reached)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "AUTH_003")
}

func (s *AuthMiddlewareSuite) TestRequireAuth_TokenSignedWithDifferentKey() {
	token, _, err := s.createTokenService(time.Hour).GenerateAccessToken(s.user)
	s.Require().NoError(err)

	rec, reached := s.call(s.tokenService, "Bearer "+token)
	s.False(reached)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *AuthMiddlewareSuite) TestRequireAuth_BlacklistedToken() {
	token, _, err := s.tokenService.GenerateAccessToken(s.user)
	s.Require().NoError(err)

	s.mockBlacklistedTokenRepo.EXPECT().GetByJTI(gomock.Any()).Return(&models.BlacklistedToken{}, nil)

	rec, reached := s.call(s.tokenService, "Bearer "+token)
	s.False(reached)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "Token has been revoked")
}

func (s *AuthMiddlewareSuite) TestRequireAuth_BlacklistLookupFailureFailsClosed() {
	token, _, err := s.tokenService.GenerateAccessToken(s.user)
	s.Require().NoError(err)

	s.mockBlacklistedTokenRepo.EXPECT().GetByJTI(gomock.Any()).Return(nil, errors.New("connection refused"))

	rec, reached := s.call(s.tokenService, "Bearer "+token)
	s.False(reached)
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.NotContains(rec.Body.String(), "connection refused")
}
