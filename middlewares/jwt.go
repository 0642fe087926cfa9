package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eshop/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("authorization token required")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
	ErrRevokedToken = errors.New("token revoked")
)

type contextKey string

const (
	claimsKey    contextKey = "claims"
	claimsGinKey            = "claims"
)

// Gate guards every request: allow-listed requests pass untouched, the rest
// need a valid HS256 bearer token that the revocation policy accepts.
type Gate struct {
	secret []byte
	rules  AllowList
	policy RevocationPolicy
	parser *jwt.Parser
}

func NewGate(secret string, rules AllowList, policy RevocationPolicy) *Gate {
	if policy == nil {
		policy = AdminOnlyPolicy{}
	}
	return &Gate{
		secret: []byte(secret),
		rules:  rules,
		policy: policy,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if g.rules.Allows(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}

		claims, err := g.Authorize(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			slog.Debug("request rejected",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"reason", err,
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(claimsGinKey, claims)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), claimsKey, claims))
		c.Next()
	}
}

// Authorize verifies the Authorization header value and applies the
// revocation policy. The returned error says why; callers must not expose it.
func (g *Gate) Authorize(ctx context.Context, authHeader string) (*utils.Claims, error) {
	tokenString, err := bearerToken(authHeader)
	if err != nil {
		return nil, err
	}

	claims := &utils.Claims{}
	token, err := g.parser.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return g.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	revoked, err := g.policy.IsRevoked(ctx, claims)
	if err != nil {
		return nil, errors.Join(ErrRevokedToken, err)
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

func bearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingToken
	}
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}

// ClaimsFrom returns the claims the gate attached. Bypassed requests have none.
func ClaimsFrom(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(claimsGinKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}

func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*utils.Claims)
	return claims, ok
}
