package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/revelohq/revelo/apps/api/echo/helpers"
	"github.com/revelohq/revelo/core"
	"github.com/revelohq/revelo/core/event"
	"github.com/revelohq/revelo/core/institute"
)

type instituteApi struct {
	service  *institute.Service
	eventSvc *event.Service
	files    core.FileStorage
}

func RegisterInstituteAPI(g *echo.Group, svc *institute.Service, eventSvc *event.Service, files core.FileStorage) {
	api := instituteApi{service: svc, eventSvc: eventSvc, files: files}

	// un-authed endpoints
	g.POST("/institute-login", api.instituteLogin)
	g.POST("/institutes/register", api.instituteRegister)
	g.GET("/institutes/:id", api.instituteRetrieve)

	// authed endpoints
	ig := g.Group("/institute", helpers.InstituteMiddleware())
	ig.GET("/logout", api.instituteLogout)
	ig.GET("/me", api.instituteMe)
}

// Handlers

// instituteRegister accepts a multipart form: text fields plus the logo
// and verification-letter files, which are uploaded before the record
// is created.
func (api *instituteApi) instituteRegister(ctx echo.Context) error {
	data := institute.NewInstitute{
		Name:          ctx.FormValue("instituteName"),
		Address:       ctx.FormValue("address"),
		State:         ctx.FormValue("state"),
		Country:       ctx.FormValue("country"),
		ContactNumber: ctx.FormValue("contactNumber"),
		OfficeEmail:   ctx.FormValue("officeEmail"),
		Password:      ctx.FormValue("password"),
		Type:          ctx.FormValue("instituteType"),
	}

	var err error
	if data.LogoURL, err = api.uploadFormFile(ctx, "logo"); err != nil {
		return err
	}
	if data.VerificationLetterURL, err = api.uploadFormFile(ctx, "verificationLetter"); err != nil {
		return err
	}

	inst, err := api.service.Register(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, inst)
}

func (api *instituteApi) instituteLogin(ctx echo.Context) error {
	data := new(InstituteLoginRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	inst, err := api.service.Authenticate(ctx.Request().Context(), data.Institute, data.Password)
	if err != nil {
		// a missing institute answers 403 here, not 404: login must not
		// behave differently from a failed password for route probing
		if errors.Is(err, institute.ErrNotFound) {
			return echo.NewHTTPError(http.StatusForbidden, "institute does not exist")
		}
		return err
	}

	token, err := helpers.GenerateToken(helpers.NewInstituteClaims(inst))
	if err != nil {
		return err
	}
	helpers.SetAuthCookie(ctx, core.RoleInstitute, token)
	return ctx.JSON(http.StatusOK, LoginResponse{Success: true, Token: token})
}

func (api *instituteApi) instituteLogout(ctx echo.Context) error {
	if err := helpers.RevokeAuthCookie(ctx, core.RoleInstitute); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true})
}

// instituteMe resolves the caller's own institute from its token.
func (api *instituteApi) instituteMe(ctx echo.Context) error {
	claims, err := helpers.GetContextClaims(ctx)
	if err != nil {
		return err
	}
	return api.retrieveWithEvents(ctx, claims.Subject)
}

func (api *instituteApi) instituteRetrieve(ctx echo.Context) error {
	return api.retrieveWithEvents(ctx, ctx.Param("id"))
}

func (api *instituteApi) retrieveWithEvents(ctx echo.Context, id string) error {
	rctx := ctx.Request().Context()
	inst, err := api.service.GetByID(rctx, id)
	if err != nil {
		return err
	}
	events, err := api.eventSvc.ListByIDs(rctx, inst.EventIDs)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"institute": inst, "events": events})
}

func (api *instituteApi) uploadFormFile(ctx echo.Context, field string) (string, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		return "", core.NewFieldError(field, "this file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	url, err := api.files.Upload(ctx.Request().Context(), "institutes", fh.Filename, f)
	if err != nil {
		return "", core.NewExternalServiceError("file storage", err)
	}
	return url, nil
}
