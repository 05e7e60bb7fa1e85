package helpers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/revelohq/revelo/core"
)

type guardRule struct {
	prefix   string
	excludes []string
	role     string
	redirect string
}

// guardRules covers the cookie-authenticated page areas. Paths not
// matching any rule pass through untouched.
var guardRules = []guardRule{
	{prefix: "/institute", excludes: []string{"/institute/login"}, role: core.RoleInstitute, redirect: "/institute/login"},
	{prefix: "/admin", excludes: []string{"/admin/login"}, role: core.RoleAdmin, redirect: "/"},
	{prefix: "/user/dashboard", role: core.RoleUser, redirect: "/auth/signin"},
}

// matchesPrefix reports whether path falls under prefix at a path
// boundary: "/institute/x" matches "/institute", "/institutes" does not.
func matchesPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// ruleFor returns the guard rule covering path, or nil when the path is
// unguarded or hits a rule's exclusion.
func ruleFor(path string) *guardRule {
	for i := range guardRules {
		rule := &guardRules[i]
		if !matchesPrefix(path, rule.prefix) {
			continue
		}
		for _, ex := range rule.excludes {
			if matchesPrefix(path, ex) {
				return nil
			}
		}
		return rule
	}
	return nil
}

// Guard is the app-wide cookie authentication middleware. It verifies
// the role cookie for guarded areas, checks the denylist, and stashes
// the claims for handlers. Requests carrying a bearer header instead of
// a cookie fall through to the per-group role middleware, which answers
// in JSON rather than redirecting.
func Guard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			rule := ruleFor(ctx.Request().URL.Path)
			if rule == nil {
				return next(ctx)
			}

			cookie, err := ctx.Cookie(CookieNameForRole(rule.role))
			if err != nil || cookie.Value == "" {
				if bearerToken(ctx) != "" {
					return next(ctx)
				}
				return ctx.Redirect(http.StatusFound, rule.redirect)
			}

			// fail closed on denylist errors
			if revoked, err := denylist.IsRevoked(ctx.Request().Context(), cookie.Value); err != nil || revoked {
				ClearAuthCookie(ctx, rule.role)
				return ctx.Redirect(http.StatusFound, rule.redirect)
			}

			claims, err := VerifyToken(cookie.Value, SecretForRole(rule.role))
			if err != nil || claims.Role != rule.role {
				ClearAuthCookie(ctx, rule.role)
				return ctx.Redirect(http.StatusFound, rule.redirect)
			}

			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}
