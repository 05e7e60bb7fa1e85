package helpers

import (
	"github.com/labstack/echo/v4"

	"github.com/revelohq/revelo/core"
)

func roleMiddleware(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := GetContextClaims(ctx)
			if err != nil {
				// browser sessions carry the role cookie instead of a
				// bearer header
				if claims, err = cookieClaims(ctx, role); err != nil {
					return err
				}
			}
			if claims.Role != role {
				return ErrHttpForbidden
			}
			return next(ctx)
		}
	}
}

func AdminMiddleware() echo.MiddlewareFunc     { return roleMiddleware(core.RoleAdmin) }
func InstituteMiddleware() echo.MiddlewareFunc { return roleMiddleware(core.RoleInstitute) }
func UserMiddleware() echo.MiddlewareFunc      { return roleMiddleware(core.RoleUser) }
