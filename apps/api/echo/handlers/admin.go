package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/revelohq/revelo/apps/api/echo/helpers"
	"github.com/revelohq/revelo/core"
	"github.com/revelohq/revelo/core/institute"
)

type adminApi struct {
	instituteSvc *institute.Service
	conf         *core.Config
}

func RegisterAdminAPI(g *echo.Group, instSvc *institute.Service, conf *core.Config) {
	api := adminApi{instituteSvc: instSvc, conf: conf}

	// un-authed endpoints
	g.POST("/admin/login", api.adminLogin)

	// authed endpoints
	ag := g.Group("/admin", helpers.AdminMiddleware())
	ag.GET("/logout", api.adminLogout)
	ag.GET("/institutes", api.instituteQuery)
	ag.PUT("/institutes/:id/verify", api.instituteVerify)
}

// Handlers

func (api *adminApi) adminLogin(ctx echo.Context) error {
	data := new(AdminLoginRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	// constant-time on both fields; the single admin credential pair
	// lives in config, not the store
	emailOK := subtle.ConstantTimeCompare([]byte(data.Email), []byte(api.conf.AdminEmail))
	secretOK := subtle.ConstantTimeCompare([]byte(data.Password), []byte(api.conf.AdminSecret))
	if emailOK&secretOK != 1 {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid admin credentials")
	}

	token, err := helpers.GenerateToken(helpers.NewAdminClaims())
	if err != nil {
		return err
	}
	helpers.SetAuthCookie(ctx, core.RoleAdmin, token)
	return ctx.JSON(http.StatusOK, LoginResponse{Success: true, Token: token})
}

func (api *adminApi) adminLogout(ctx echo.Context) error {
	if err := helpers.RevokeAuthCookie(ctx, core.RoleAdmin); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true})
}

func (api *adminApi) instituteQuery(ctx echo.Context) error {
	claims, err := helpers.GetContextClaims(ctx)
	if err != nil {
		return err
	}
	part, err := api.instituteSvc.ListByVerification(ctx.Request().Context(), claims.Role)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, part)
}

func (api *adminApi) instituteVerify(ctx echo.Context) error {
	claims, err := helpers.GetContextClaims(ctx)
	if err != nil {
		return err
	}
	inst, err := api.instituteSvc.Approve(ctx.Request().Context(), ctx.Param("id"), claims.Role)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inst)
}
