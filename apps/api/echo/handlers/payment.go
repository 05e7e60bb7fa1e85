package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/revelohq/revelo/apps/api/echo/helpers"
	"github.com/revelohq/revelo/core/payment"
)

type paymentApi struct {
	service *payment.Service
}

func RegisterPaymentAPI(g *echo.Group, svc *payment.Service) {
	api := paymentApi{service: svc}

	pg := g.Group("/payment", helpers.InstituteMiddleware())
	pg.POST("/create-order", api.orderCreate)
}

// Handlers

// orderCreate opens a platform-fee order for the calling institute; the
// client captures it and posts the confirmation with the event payload.
func (api *paymentApi) orderCreate(ctx echo.Context) error {
	claims, err := helpers.GetContextClaims(ctx)
	if err != nil {
		return err
	}
	order, err := api.service.CreateOrder(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, order)
}
