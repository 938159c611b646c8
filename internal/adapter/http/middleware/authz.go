package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sMiccu/shoporder/configs"
)

// Authz guards routes with HS256 bearer tokens issued by the token endpoint.
type Authz struct {
	secret   []byte
	issuer   string
	audience string
}

func NewAuthz(cfg configs.Config) *Authz {
	return &Authz{
		secret:   []byte(cfg.Security.JWTSecret),
		issuer:   cfg.Security.Issuer,
		audience: cfg.Security.Audience,
	}
}

// Require validates the bearer token and checks that every listed permission
// is present in its perms claim. The client id lands in the gin context
// under "client_id".
func (a *Authz) Require(perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := a.parse(c)
		if !ok {
			return
		}

		granted := grantedPerms(claims)
		for _, p := range perms {
			if _, ok := granted[p]; !ok {
				abortAuth(c, http.StatusForbidden, "insufficient_scope", "missing required permissions")
				return
			}
		}

		if sub, _ := claims["sub"].(string); sub != "" {
			c.Set("client_id", sub)
		}
		c.Next()
	}
}

func (a *Authz) parse(c *gin.Context) (jwt.MapClaims, bool) {
	header := c.GetHeader("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		abortAuth(c, http.StatusUnauthorized, "invalid_request", "missing bearer token")
		return nil, false
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	},
		jwt.WithIssuer(a.issuer),
		jwt.WithAudience(a.audience),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil || !token.Valid {
		abortAuth(c, http.StatusUnauthorized, "invalid_token", "invalid jwt")
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		abortAuth(c, http.StatusUnauthorized, "invalid_token", "claims parsing error")
		return nil, false
	}
	return claims, true
}

func grantedPerms(claims jwt.MapClaims) map[string]struct{} {
	out := make(map[string]struct{})
	arr, _ := claims["perms"].([]any)
	for _, v := range arr {
		if s, ok := v.(string); ok && s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}

func abortAuth(c *gin.Context, status int, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(status, gin.H{"error": code, "error_description": desc})
}
