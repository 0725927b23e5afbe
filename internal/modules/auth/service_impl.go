package auth

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
	"github.com/lusakatech/pharmacare-backend/internal/modules/authz"
	"github.com/lusakatech/pharmacare-backend/internal/modules/user"
)

// Claims carries the identity in the session token.
type Claims struct {
	Role     string `json:"role"`
	BranchID string `json:"branch_id,omitempty"`
	jwt.StandardClaims
}

type service struct {
	userRepo user.Repository
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates a new auth service.
func NewService(userRepo user.Repository, secret string) Service {
	return &service{userRepo: userRepo, secret: []byte(secret), tokenTTL: 24 * time.Hour}
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", apperr.Validation("invalid credentials")
	}
	if !u.IsActive {
		return "", apperr.Validation("account is deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", apperr.Validation("invalid credentials")
	}

	claims := &Claims{
		Role: string(u.Role),
		StandardClaims: jwt.StandardClaims{
			Subject:   u.ID.String(),
			ExpiresAt: time.Now().Add(s.tokenTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	if u.BranchID != nil {
		claims.BranchID = u.BranchID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *service) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Validation("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, apperr.Validation("invalid or expired token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, apperr.Validation("malformed token subject")
	}
	role := authz.Role(claims.Role)
	if !role.Valid() {
		return Identity{}, apperr.Validation("malformed token role")
	}

	id := Identity{UserID: userID, Role: role}
	if claims.BranchID != "" {
		bid, err := uuid.Parse(claims.BranchID)
		if err != nil {
			return Identity{}, apperr.Validation("malformed token branch")
		}
		id.BranchID = bid
	}
	return id, nil
}
