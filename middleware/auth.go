package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"dorm-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleAdmin    = "admin"
	RoleResident = "resident"
)

// Claims is the role-tagged principal carried by every request. The core
// trusts it; no session storage is consulted.
type Claims struct {
	SubjectID uint   `json:"sub_id"`
	Role      string `json:"role"`
	Name      string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secret  []byte
	issuer  string
	expires time.Duration
}

func NewJWTManager(secret, issuer string, expires time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), issuer: issuer, expires: expires}
}

// GenerateToken issues a signed token for a principal.
func (j *JWTManager) GenerateToken(subjectID uint, role, name string) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		SubjectID: subjectID,
		Role:      role,
		Name:      name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expires)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    j.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// ValidateToken verifies a token and returns the claims.
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return j.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

const (
	PrincipalIDKey   = "principal_id"
	PrincipalRoleKey = "principal_role"
)

// RequireAuth validates the bearer token and stashes the principal on the
// gin context.
func RequireAuth(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.JSONError(c, http.StatusUnauthorized, "authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.JSONError(c, http.StatusUnauthorized, "invalid authorization format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateToken(parts[1])
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(PrincipalIDKey, claims.SubjectID)
		c.Set(PrincipalRoleKey, claims.Role)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(PrincipalRoleKey) != RoleAdmin {
			utils.JSONError(c, http.StatusForbidden, "administrator role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalID returns the authenticated subject id from the context.
func PrincipalID(c *gin.Context) uint {
	if v, ok := c.Get(PrincipalIDKey); ok {
		if id, ok2 := v.(uint); ok2 {
			return id
		}
	}
	return 0
}
