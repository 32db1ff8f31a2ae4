package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"flashxship-api/database"
	"flashxship-api/models"
	"flashxship-api/utils"
)

const (
	AccessTokenDuration  = time.Hour
	RefreshTokenDuration = 7 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already in use")
)

// Service issues short-lived HS256 access tokens and opaque refresh tokens.
// Refresh tokens live in MySQL so they can be revoked; access tokens are
// validated offline.
type Service struct {
	secretKey []byte
	issuer    string
	db        *database.Connection
}

type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

func NewService(secretKey, issuer string, db *database.Connection) *Service {
	return &Service{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		db:        db,
	}
}

// Register creates an account after checking username and email uniqueness.
func (s *Service) Register(req models.RegisterRequest) (*models.AuthUser, error) {
	taken, err := s.db.UsernameTaken(req.Username, 0)
	if err != nil {
		return nil, fmt.Errorf("database error: %v", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	taken, err = s.db.EmailTaken(req.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("database error: %v", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	id, err := s.db.CreateUser(req.Username, req.Email, utils.HashPassword(req.Password))
	if err != nil {
		return nil, fmt.Errorf("error creating user: %v", err)
	}

	return &models.AuthUser{ID: id, Username: req.Username, Email: req.Email}, nil
}

// Authenticate verifies credentials and issues a token pair. Issuing a new
// refresh token deactivates the user's previous one.
func (s *Service) Authenticate(username, password string) (*models.AuthResponse, error) {
	user, err := s.db.GetUserByCredentials(username, utils.HashPassword(password))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %v", err)
	}

	return s.issueTokens(*user)
}

func (s *Service) issueTokens(user models.AuthUser) (*models.AuthResponse, error) {
	accessToken, err := s.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %v", err)
	}

	refreshToken := uuid.New().String()
	expiresAt := time.Now().Add(RefreshTokenDuration)
	if err := s.db.StoreRefreshToken(user.ID, refreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %v", err)
	}

	return &models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(AccessTokenDuration),
		ExpiresIn:    int(AccessTokenDuration.Seconds()),
		User:         user,
	}, nil
}

// GenerateAccessToken signs a one-hour access token for the user.
func (s *Service) GenerateAccessToken(user models.AuthUser) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsStaff:  user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenDuration)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken checks an access token and returns the embedded identity.
func (s *Service) ValidateToken(tokenString string) (*models.AuthUser, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &models.AuthUser{
		ID:       claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
		IsStaff:  claims.IsStaff,
	}, nil
}

// Refresh trades an active refresh token for a new token pair. Expired
// tokens are revoked on sight. The user row is re-read so a staff flag
// change takes effect at the next refresh, not only at the next login.
func (s *Service) Refresh(refreshToken string) (*models.AuthResponse, error) {
	userID, expiresAt, err := s.db.GetRefreshToken(refreshToken)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("database error: %v", err)
	}

	if time.Now().After(expiresAt) {
		if err := s.db.RevokeRefreshToken(refreshToken); err != nil {
			return nil, fmt.Errorf("error revoking expired token: %v", err)
		}
		return nil, ErrTokenExpired
	}

	user, err := s.db.GetUserByID(userID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(*user)
}

// Logout revokes the presented refresh token. Unknown tokens are ignored;
// logout must always succeed from the client's point of view.
func (s *Service) Logout(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.db.RevokeRefreshToken(refreshToken)
}
