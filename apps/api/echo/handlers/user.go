package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/revelohq/revelo/apps/api/echo/helpers"
	"github.com/revelohq/revelo/core"
	"github.com/revelohq/revelo/core/user"
)

type userApi struct {
	service *user.Service
}

func RegisterUserAPI(g *echo.Group, svc *user.Service) {
	api := userApi{service: svc}

	// un-authed endpoints
	g.POST("/register", api.userCreate)
	g.POST("/verify", api.userVerifyEmail)
	g.POST("/login", api.userLogin)

	// authed endpoints
	ug := g.Group("/user", helpers.UserMiddleware())
	ug.GET("/logout", api.userLogout)
}

// Handlers

func (api *userApi) userCreate(ctx echo.Context) error {
	data := new(user.NewUser)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	usr, err := api.service.Register(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) userVerifyEmail(ctx echo.Context) error {
	data := new(user.VerifyEmail)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	usr, err := api.service.VerifyEmail(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) userLogin(ctx echo.Context) error {
	data := new(UserLoginRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := api.service.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return err
	}

	token, err := helpers.GenerateToken(helpers.NewUserClaims(usr))
	if err != nil {
		return err
	}
	helpers.SetAuthCookie(ctx, core.RoleUser, token)
	return ctx.JSON(http.StatusOK, LoginResponse{Success: true, Token: token})
}

func (api *userApi) userLogout(ctx echo.Context) error {
	if err := helpers.RevokeAuthCookie(ctx, core.RoleUser); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true})
}
