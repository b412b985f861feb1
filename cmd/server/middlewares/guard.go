package middlewares

import (
	"time"

	"trailhead/cmd/server/handlers/httperr"
	"trailhead/internal/config"
	"trailhead/internal/services/auth"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Protect returns a configured Fiber middleware that:
//
//   - validates the Bearer token signature using cfg.JWTSecret
//   - loads the subject user and makes sure it still exists and has not
//     rotated its password since the token was issued
//   - stores the user in ctx.Locals("currentUser") so downstream handlers
//     can trust it.
//
// On any problem it bubbles up a 401 via the global httperr handler.
func Protect(cfg config.Config, users auth.UsersRepo) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		SuccessHandler: func(c *fiber.Ctx) error {
			// Token already verified at this point.
			token := c.Locals("user").(*jwt.Token)
			claims, _ := token.Claims.(jwt.MapClaims)

			sub, ok := claims["sub"].(string)
			if !ok || sub == "" {
				return httperr.Fail(httperr.ErrUnauthorized)
			}
			userID, err := bson.ObjectIDFromHex(sub)
			if err != nil {
				return httperr.Fail(httperr.ErrUnauthorized)
			}
			iat, ok := claims["iat"].(float64)
			if !ok {
				return httperr.Fail(httperr.ErrUnauthorized)
			}

			user, err := users.FindByID(c.Context(), userID)
			if err != nil {
				return httperr.Fail(httperr.New(fiber.StatusUnauthorized,
					"the user belonging to this token no longer exists"))
			}
			if user.PasswordChangedAfter(time.Unix(int64(iat), 0)) {
				return httperr.Fail(httperr.New(fiber.StatusUnauthorized,
					"password was changed recently, please log in again"))
			}

			c.Locals("currentUser", user)
			return c.Next()
		},

		// Override the default "unauthorized" JSON to match the project style
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return httperr.Fail(httperr.ErrUnauthorized)
		},
	})
}

// RestrictTo allows only the given roles past. It must run after Protect.
func RestrictTo(roles ...auth.Role) fiber.Handler {
	allowed := make(map[auth.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("currentUser").(*auth.User)
		if !ok || user == nil {
			return httperr.Fail(httperr.ErrUnauthorized)
		}
		if _, ok := allowed[user.Role]; !ok {
			return httperr.Fail(httperr.ErrForbidden)
		}
		return c.Next()
	}
}
