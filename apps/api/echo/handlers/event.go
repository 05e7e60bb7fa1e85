package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/revelohq/revelo/apps/api/echo/helpers"
	"github.com/revelohq/revelo/core/event"
)

type eventApi struct {
	service *event.Service
}

func RegisterEventAPI(g *echo.Group, svc *event.Service) {
	api := eventApi{service: svc}

	eg := g.Group("/events")
	eg.GET("/:id", api.eventRetrieve) // public

	// institute-only endpoints
	ag := eg.Group("", helpers.InstituteMiddleware())
	ag.POST("/create", api.eventCreate)
	ag.PUT("/:id", api.eventUpdate)
	ag.POST("/:id/publish", api.eventPublish)
	ag.POST("/add-flyer", api.flyerCreate)
	ag.POST("/add-video", api.videoCreate)

	sg := g.Group("/sub-events", helpers.InstituteMiddleware())
	sg.POST("/create", api.subEventCreate)
	sg.PUT("/:id", api.subEventUpdate)

	ig := g.Group("/institute", helpers.InstituteMiddleware())
	ig.DELETE("/delete-subevent", api.subEventDestroy)
}

// Handlers

func (api *eventApi) eventCreate(ctx echo.Context) error {
	data := new(event.NewEvent)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	// ownership comes from the token, never from the payload
	claims, err := helpers.GetContextClaims(ctx)
	if err != nil {
		return err
	}
	data.InstituteID = claims.Subject

	ev, err := api.service.Create(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ev)
}

func (api *eventApi) eventRetrieve(ctx echo.Context) error {
	detail, err := api.service.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *eventApi) eventUpdate(ctx echo.Context) error {
	data := new(event.UpdateEvent)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	ev, err := api.service.Update(ctx.Request().Context(), ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *eventApi) eventPublish(ctx echo.Context) error {
	ev, err := api.service.Publish(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *eventApi) subEventCreate(ctx echo.Context) error {
	data := new(event.NewSubEvent)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	se, err := api.service.CreateSubEvent(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, se)
}

func (api *eventApi) subEventUpdate(ctx echo.Context) error {
	data := new(event.UpdateSubEvent)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	se, err := api.service.UpdateSubEvent(ctx.Request().Context(), ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, se)
}

func (api *eventApi) subEventDestroy(ctx echo.Context) error {
	data := new(DeleteSubEventRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if err := api.service.DeleteSubEvent(ctx.Request().Context(), data.EventID, data.SubEventID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true})
}

func (api *eventApi) flyerCreate(ctx echo.Context) error {
	data := new(event.NewFlyer)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	f, err := api.service.AddFlyer(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, f)
}

func (api *eventApi) videoCreate(ctx echo.Context) error {
	data := new(event.NewVideo)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	v, err := api.service.AddVideo(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, v)
}
