package middleware

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// CallerIDKey is the gin context key carrying the caller's stable identity.
const CallerIDKey = "caller_id"

// Identity resolves a stable caller identity for quota attribution. A valid
// Bearer token contributes its subject; everything else falls back to the
// client IP. The middleware never rejects: discovery is an open surface and
// identity only scopes quota accounting.
func Identity() gin.HandlerFunc {
	secretKey := os.Getenv("SECRET_KEY")
	return func(ctx *gin.Context) {
		callerID := ctx.ClientIP()
		if subject := tokenSubject(ctx.Request.Header.Get("Authorization"), secretKey); subject != "" {
			callerID = subject
		}
		ctx.Set(CallerIDKey, callerID)
		ctx.Next()
	}
}

// CallerID reads the identity set by Identity, falling back to the client IP
// when the middleware did not run.
func CallerID(ctx *gin.Context) string {
	if v, ok := ctx.Get(CallerIDKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ctx.ClientIP()
}

func tokenSubject(authorization, secretKey string) string {
	if authorization == "" || secretKey == "" {
		return ""
	}
	parts := strings.Split(authorization, "Bearer ")
	if len(parts) != 2 {
		return ""
	}

	var claims jwt.StandardClaims
	token, err := jwt.ParseWithClaims(parts[1], &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	if claims.Subject != "" {
		return claims.Subject
	}
	return claims.Issuer
}
