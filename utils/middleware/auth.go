package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sahilchouksey/partner-hub/utils"
	"github.com/sahilchouksey/partner-hub/utils/auth"
	"github.com/sahilchouksey/partner-hub/utils/response"
)

// Locals keys set by Passthrough.
const (
	LocalToken  = "token"
	LocalClaims = "claims"
)

// AuthMiddleware forwards the caller's bearer token to the partnership API.
// The partnership API owns authentication; this service only reads claims
// for route gating and logging.
type AuthMiddleware struct {
	now func() time.Time
	log *zap.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = utils.Log
	}
	return &AuthMiddleware{now: time.Now, log: logger.Named("auth")}
}

// Passthrough stores the bearer token (when present) and the request ID in
// the request's user context. Requests without a token continue
// unauthenticated. An expired token is logged and still forwarded.
func (m *AuthMiddleware) Passthrough() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		requestID := c.GetRespHeader(fiber.HeaderXRequestID)
		ctx = utils.ContextWithRequestID(ctx, requestID)

		token, err := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if err == nil {
			ctx = auth.ContextWithToken(ctx, token)
			c.Locals(LocalToken, token)

			if claims, claimsErr := auth.ExtractClaims(token); claimsErr == nil {
				c.Locals(LocalClaims, claims)
				if claims.Expired(m.now()) {
					m.log.Warn("forwarding expired token",
						zap.String("request_id", requestID),
						zap.String("user_id", claims.UserID),
						zap.Time("expired_at", claims.ExpiresAt.Time))
				}
			}
		} else if !errors.Is(err, auth.ErrMissingToken) {
			m.log.Debug("ignoring malformed authorization header", zap.String("request_id", requestID))
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// RequireAdmin rejects requests whose token does not carry the admin role.
// It must run after Passthrough.
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(LocalToken) == nil {
			return response.Unauthorized(c, "Missing authorization token")
		}
		claims := GetClaims(c)
		if claims == nil {
			return response.Unauthorized(c, "Invalid token")
		}
		if !claims.IsAdmin() {
			return response.Forbidden(c, "Admin access required")
		}
		return c.Next()
	}
}

// GetClaims returns the decoded token claims, or nil.
func GetClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(LocalClaims).(*auth.Claims)
	return claims
}
