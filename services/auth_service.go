package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"article-api/config"
	"article-api/models"
	"article-api/repositories"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	EnsureAdmin(ctx context.Context, email, password string) error
	IssueToken(user *models.User) (string, error)
	ParseToken(token string) (*Claims, error)
}

type authService struct {
	userRepo repositories.UserRepository
	jwt      config.JWTConfig
	logger   *slog.Logger
	now      func() time.Time
}

func NewAuthService(userRepo repositories.UserRepository, jwtCfg config.JWTConfig, logger *slog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		jwt:      jwtCfg,
		logger:   logger.With("service", "auth"),
		now:      time.Now,
	}
}

// Register creates an account with the "user" role.
func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	user, err := s.createUser(ctx, req.Name, req.Email, req.Password, models.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.respond(user)
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	invalid := models.ErrorUnauthorized{Message: "invalid credentials"}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		var notFound models.ErrorNotFound
		if errors.As(err, &notFound) {
			return nil, invalid
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, invalid
	}

	return s.respond(user)
}

func (s *authService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// EnsureAdmin creates an admin account unless one with that email already exists.
func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	var notFound models.ErrorNotFound
	if !errors.As(err, &notFound) {
		return err
	}

	user, err := s.createUser(ctx, "admin", email, password, models.RoleAdmin)
	if err != nil {
		return err
	}
	s.logger.Info("admin account created", "user_id", user.ID)
	return nil
}

func (s *authService) IssueToken(user *models.User) (string, error) {
	now := s.now()

	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwt.Expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwt.Secret)
}

func (s *authService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwt.Secret, nil
	})
	if err != nil {
		return nil, models.ErrorUnauthorized{Message: "invalid token: " + err.Error()}
	}
	if !token.Valid || claims.Role == "" {
		return nil, models.ErrorUnauthorized{Message: "token is not valid"}
	}
	return claims, nil
}

func (s *authService) createUser(ctx context.Context, name, email, password, role string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(name),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: string(hashed),
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: *user}, nil
}
