package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eventpass/eventpass-api/internal/api/handler/v1/response"
	"github.com/eventpass/eventpass-api/internal/pkg/jwthelper"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "user_role"
)

type Authenticator struct {
	signingKey string
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: signingKey,
	}
}

// VerifyJWT resolves the principal from the Authorization header and puts
// its ID and role on the gin context. Requests without a valid token are
// rejected.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, ok := a.parse(ctx)
		if !ok {
			response.RenderErr(ctx, response.ErrUnauthorized())
			ctx.Abort()
			return
		}

		ctx.Set(ContextKeyUserID, claims.UserID)
		ctx.Set(ContextKeyRole, claims.Role)
		ctx.Next()
	}
}

// VerifyJWTOptional resolves the principal when a token is present but
// lets anonymous requests through. Used for the public event endpoints.
func (a *Authenticator) VerifyJWTOptional() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if claims, ok := a.parse(ctx); ok {
			ctx.Set(ContextKeyUserID, claims.UserID)
			ctx.Set(ContextKeyRole, claims.Role)
		}
		ctx.Next()
	}
}

func (a *Authenticator) parse(ctx *gin.Context) (*jwthelper.Claims, bool) {
	header := ctx.GetHeader("Authorization")
	if header == "" {
		return nil, false
	}

	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == header {
		return nil, false
	}

	claims, err := jwthelper.ParseToken(a.signingKey, tokenString)
	if err != nil {
		return nil, false
	}

	return claims, true
}
