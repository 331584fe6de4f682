package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/recordstore"
)

const sessionKey = "session"

// anonymousAdmin is the session used when authentication is disabled
var anonymousAdmin = entity.Session{Type: entity.UserTypeAdmin}

// Claims are the custom claims embedded in every session token
type Claims struct {
	Email string `json:"email"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
// An issuer without a secret is disabled: it issues no tokens and every
// request runs as an anonymous administrator.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Enabled reports whether tokens are required
func (t *TokenIssuer) Enabled() bool {
	return len(t.secret) > 0
}

// Issue returns a signed token for the session
func (t *TokenIssuer) Issue(session entity.Session) (string, error) {
	if !t.Enabled() {
		return "", nil
	}

	now := t.now()
	claims := Claims{
		Email: session.Email,
		Type:  session.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies a token and returns the session it carries
func (t *TokenIssuer) Parse(tokenStr string) (entity.Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return entity.Session{}, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.Email == "" {
		return entity.Session{}, errors.New("invalid token")
	}

	return entity.Session{Email: claims.Email, Type: claims.Type, Token: tokenStr}, nil
}

// Authenticate resolves the request session from the bearer token
func Authenticate(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !issuer.Enabled() {
			c.Set(sessionKey, anonymousAdmin)
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "authentication required",
				Code:    recordstore.CodeUnauthorized,
			})
			return
		}

		session, err := issuer.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid or expired token",
				Code:    recordstore.CodeUnauthorized,
			})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// SessionFrom returns the session resolved by Authenticate
func SessionFrom(c *gin.Context) entity.Session {
	session, _ := c.MustGet(sessionKey).(entity.Session)
	return session
}
