package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"icetea/internal/shared/config"
	"icetea/internal/shared/errs"
	"icetea/internal/users"
	"icetea/pkg/clock"
	"icetea/pkg/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
)

type Service interface {
	// DeviceAuth registers a device on first use and logs it in afterwards.
	DeviceAuth(ctx context.Context, req *DeviceAuthRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	GetMe(ctx context.Context, userID string) (*users.User, error)
	ValidateToken(tokenString string) (*JWTClaims, error)
}

type service struct {
	users    users.Repository
	config   *config.Config
	clock    clock.Clock
	hashCost int
	logger   *logger.Logger
}

func NewService(repo users.Repository, cfg *config.Config, clk clock.Clock) Service {
	return &service{
		users:    repo,
		config:   cfg,
		clock:    clk,
		hashCost: bcrypt.DefaultCost,
		logger:   logger.GetDefault(),
	}
}

func (s *service) DeviceAuth(ctx context.Context, req *DeviceAuthRequest) (*AuthResponse, error) {
	user, err := s.users.GetByID(ctx, req.DeviceID)
	registered := false
	switch {
	case errors.Is(err, errs.ErrNotFound):
		user, err = s.register(ctx, req)
		if err != nil {
			return nil, err
		}
		registered = true
	case err != nil:
		return nil, err
	default:
		if err := bcrypt.CompareHashAndPassword([]byte(user.DeviceSecretHash), []byte(req.DeviceSecret)); err != nil {
			return nil, ErrInvalidCredentials
		}
	}

	tokenPair, err := s.generateTokenPair(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	method := "device_login"
	if registered {
		method = "device_register"
	}
	s.logger.LogAuthSuccess(ctx, user.ID, method)

	return &AuthResponse{
		User:         users.ToResponse(user),
		Registered:   registered,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

func (s *service) register(ctx context.Context, req *DeviceAuthRequest) (*users.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.DeviceSecret), s.hashCost)
	if err != nil {
		return nil, err
	}
	user := &users.User{
		ID:               req.DeviceID,
		DisplayName:      req.DisplayName,
		Role:             users.RoleUser,
		DeviceSecretHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.validateToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if claims.Type != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	// Verify user still exists
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	return s.generateTokenPair(user.ID, string(user.Role))
}

func (s *service) GetMe(ctx context.Context, userID string) (*users.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *service) ValidateToken(tokenString string) (*JWTClaims, error) {
	return s.validateToken(tokenString)
}

func (s *service) generateTokenPair(userID, role string) (*TokenPair, error) {
	now := s.clock.Now()

	access, err := s.sign(userID, role, TokenTypeAccess, now, s.config.JWT.JWTExpiresIn)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(userID, role, TokenTypeRefresh, now, s.config.JWT.RefreshExpiresIn)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.config.JWT.JWTExpiresIn.Seconds()),
	}, nil
}

func (s *service) sign(userID, role, tokenType string, now time.Time, ttl time.Duration) (string, error) {
	claims := JWTClaims{
		UserID: userID,
		Role:   role,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "icetea",
			Subject:   userID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWT.Secret))
}

func (s *service) validateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.config.JWT.Secret), nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
