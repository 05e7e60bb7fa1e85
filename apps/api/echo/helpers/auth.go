package helpers

import (
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"

	"github.com/revelohq/revelo/core"
	"github.com/revelohq/revelo/core/institute"
	"github.com/revelohq/revelo/core/user"
)

const contextClaimsKey = "claims"

// Cookie names, one per role. A browser session can hold all three at
// once without them clobbering each other.
const (
	AdminCookieName     = "admin_token"
	InstituteCookieName = "institute_token"
	UserCookieName      = "user_token"
)

var (
	conf     *core.Config
	denylist core.TokenDenylist
)

// ConfigureAuth wires the token codec to the app config and the revoked
// token store. Must be called before the server starts routing.
func ConfigureAuth(c *core.Config, dl core.TokenDenylist) {
	conf = c
	denylist = dl
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Role string `json:"role,omitempty"`
	Name string `json:"name,omitempty"` // institute display name
}

// SecretForRole returns the signing key for a role. Admin tokens use a
// separate secret so an institute or user token can never be replayed
// against an admin route.
func SecretForRole(role string) []byte {
	if role == core.RoleAdmin {
		return conf.AdminSecretKey
	}
	return conf.SecretKey
}

func TokenTTLForRole(role string) time.Duration {
	switch role {
	case core.RoleAdmin:
		return conf.Server.AdminTokenTTL
	case core.RoleInstitute:
		return conf.Server.InstituteTokenTTL
	default:
		return conf.Server.UserTokenTTL
	}
}

func CookieNameForRole(role string) string {
	switch role {
	case core.RoleAdmin:
		return AdminCookieName
	case core.RoleInstitute:
		return InstituteCookieName
	default:
		return UserCookieName
	}
}

func newClaims(role, subject, name string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   subject,
			ExpiresAt: now.Add(TokenTTLForRole(role)).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role: role,
		Name: name,
	}
}

// NewAdminClaims carries no subject; the platform has a single static
// admin credential pair.
func NewAdminClaims() *Claims { return newClaims(core.RoleAdmin, "", "") }

func NewInstituteClaims(inst institute.Institute) *Claims {
	return newClaims(core.RoleInstitute, inst.ID, inst.Name)
}

func NewUserClaims(usr user.User) *Claims {
	return newClaims(core.RoleUser, usr.ID, "")
}

// GenerateToken generates a signed JWT token string representing the
// Claims, using the secret matching their role.
func GenerateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(SecretForRole(claims.Role))
	if err != nil {
		return "", errTokenSigningFailed
	}
	return ss, nil
}

// VerifyToken parses ss against secret. It fails closed: malformed
// input, a non-HMAC method, a bad signature, expiry or a missing role
// claim all yield an error, never partial claims.
func VerifyToken(ss string, secret []byte) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(ss, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}
		return secret, nil
	})
	if err != nil {
		return nil, ErrHttpUnauthorized
	}
	if !token.Valid || claims.Role == "" {
		return nil, ErrHttpUnauthorized
	}
	return claims, nil
}

// verifyAnyToken verifies a token whose role is not known up front
// (bearer-header clients). The role claim picks the candidate secret,
// so a token claiming admin still has to verify under the admin key.
func verifyAnyToken(ss string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(ss, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}
		return SecretForRole(claims.Role), nil
	})
	if err != nil {
		return nil, ErrHttpUnauthorized
	}
	if !token.Valid || claims.Role == "" {
		return nil, ErrHttpUnauthorized
	}
	return claims, nil
}

func bearerToken(ctx echo.Context) string {
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return auth[7:]
	}
	return ""
}

// GetContextClaims returns the verified claims for the request: either
// stashed by the route guard (cookie flows) or verified on the spot
// from the Authorization header (API clients). Revoked or unreadable
// denylist state fails closed, same as the cookie paths.
func GetContextClaims(ctx echo.Context) (*Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*Claims); ok {
		return claims, nil
	}
	ss := bearerToken(ctx)
	if ss == "" {
		return nil, ErrHttpUnauthorized
	}
	if revoked, err := denylist.IsRevoked(ctx.Request().Context(), ss); err != nil || revoked {
		return nil, ErrHttpUnauthorized
	}
	claims, err := verifyAnyToken(ss)
	if err != nil {
		return nil, err
	}
	ctx.Set(contextClaimsKey, claims)
	return claims, nil
}

// cookieClaims verifies the role's auth cookie on routes the guard does
// not cover (API-style endpoints hit from a browser session). Revoked or
// unreadable denylist state fails closed.
func cookieClaims(ctx echo.Context, role string) (*Claims, error) {
	cookie, err := ctx.Cookie(CookieNameForRole(role))
	if err != nil || cookie.Value == "" {
		return nil, ErrHttpUnauthorized
	}
	if revoked, err := denylist.IsRevoked(ctx.Request().Context(), cookie.Value); err != nil || revoked {
		return nil, ErrHttpUnauthorized
	}
	claims, err := VerifyToken(cookie.Value, SecretForRole(role))
	if err != nil {
		return nil, err
	}
	ctx.Set(contextClaimsKey, claims)
	return claims, nil
}

// SetAuthCookie sets the role's HTTP-only auth cookie. Max-age matches
// the token TTL so the cookie never outlives its token.
func SetAuthCookie(ctx echo.Context, role, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     CookieNameForRole(role),
		Value:    token,
		Path:     "/",
		MaxAge:   int(TokenTTLForRole(role).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !conf.Debug,
	})
}

func ClearAuthCookie(ctx echo.Context, role string) {
	ctx.SetCookie(&http.Cookie{
		Name:     CookieNameForRole(role),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !conf.Debug,
	})
}

// RevokeAuthCookie clears the role's cookie and pushes the live token
// onto the denylist for its remaining validity. Logout without a cookie
// is a no-op success.
func RevokeAuthCookie(ctx echo.Context, role string) error {
	cookie, err := ctx.Cookie(CookieNameForRole(role))
	if err != nil || cookie.Value == "" {
		return nil
	}
	defer ClearAuthCookie(ctx, role)

	claims, err := VerifyToken(cookie.Value, SecretForRole(role))
	if err != nil {
		return nil // already unusable
	}
	ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
	if ttl <= 0 {
		return nil
	}
	return denylist.Revoke(ctx.Request().Context(), cookie.Value, ttl)
}
