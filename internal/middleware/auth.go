package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/loadlinkhq/loadlink-backend/internal/dto"
	"github.com/loadlinkhq/loadlink-backend/internal/token"
)

// Canonical extraction order: accessToken cookie, then Authorization
// header. Download routes additionally accept ?token= because window.open
// cannot set headers. Missing and invalid tokens both answer 401; 403 is
// reserved for role mismatches.
const (
	tokenLookup         = "cookie:accessToken,header:Authorization"
	tokenLookupDownload = "cookie:accessToken,header:Authorization,query:token"
)

// Protected verifies the bearer credential on a route and stores the parsed
// token in c.Locals("user") for the identity helpers.
func Protected(issuer *token.Issuer) fiber.Handler {
	return protected(issuer, tokenLookup)
}

// ProtectedDownload is Protected plus the query-parameter fallback, for
// document download endpoints only.
func ProtectedDownload(issuer *token.Issuer) fiber.Handler {
	return protected(issuer, tokenLookupDownload)
}

func protected(issuer *token.Issuer, lookup string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{Key: issuer.Secret()},
		TokenLookup: lookup,
		AuthScheme:  "Bearer",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}
