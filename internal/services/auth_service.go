package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"grosir/internal/apperror"
	"grosir/internal/models"
	"grosir/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Role         string `json:"role" validate:"required,oneof=WHOLESALER RETAILER"`
	BusinessName string `json:"business_name" validate:"omitempty,max=255"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo       repositories.UserRepository
	wholesalerRepo repositories.WholesalerRepository
	jwtSecret      []byte
	tokenTTL       time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, wholesalerRepo repositories.WholesalerRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:       userRepo,
		wholesalerRepo: wholesalerRepo,
		jwtSecret:      []byte(jwtSecret),
		tokenTTL:       tokenTTL,
	}
}

// RegisterUser creates an account. Wholesalers also get their profile row,
// which every inventory operation resolves against.
func (s *AuthService) RegisterUser(ctx context.Context, req RegisterRequest) (*models.User, error) {
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, apperror.InvalidInput(err.Error())
	}

	if existing, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, apperror.InvalidInput(fmt.Sprintf("username '%s' already taken", req.Username))
	}
	if existing, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, apperror.InvalidInput(fmt.Sprintf("email '%s' already registered", req.Email))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	if role == models.RoleWholesaler {
		profile := &models.Wholesaler{UserID: user.ID, BusinessName: req.BusinessName}
		if err := s.wholesalerRepo.Create(ctx, profile); err != nil {
			log.Printf("User %s registered without wholesaler profile: %v", user.ID, err)
			return nil, fmt.Errorf("failed to create wholesaler profile: %w", err)
		}
	}
	return user, nil
}

// LoginUser authenticates a user and returns a signed token.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.IssueToken(user)
}

// IssueToken signs an HS256 token carrying the user's id and role.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// Authenticate validates a token and resolves the caller identity from it.
func (s *AuthService) Authenticate(tokenString string) (Identity, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return Identity{}, err
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Identity{}, fmt.Errorf("invalid token: missing user_id claim")
	}
	rawRole, _ := claims["role"].(string)
	role, err := models.ParseRole(rawRole)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid token: %w", err)
	}
	return Identity{UserID: userID, Role: role}, nil
}
