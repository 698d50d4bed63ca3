package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-daily-summary/internal/render"
	"github.com/i474232898/weather-daily-summary/internal/store"
	"github.com/i474232898/weather-daily-summary/internal/weather"
)

var validate = validator.New()

// renderTimeout bounds the one-shot forecast endpoint.
const renderTimeout = 20 * time.Second

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	v1.Post("/widgets", func(c *fiber.Ctx) error {
		w, err := service.Mount()
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		return c.Status(fiber.StatusAccepted).JSON(newWidgetResponse(w.View()))
	})

	v1.Get("/widgets/:id", func(c *fiber.Ctx) error {
		var req widgetQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		w, err := service.Get(req.ID)
		if err != nil {
			return widgetLookupError(err)
		}

		if req.WaitSeconds > 0 {
			ctx, cancel := context.WithTimeout(c.UserContext(), time.Duration(req.WaitSeconds)*time.Second)
			_ = w.Wait(ctx)
			cancel()
		}

		return c.JSON(newWidgetResponse(w.View()))
	})

	v1.Delete("/widgets/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := validate.Var(id, "required,uuid4"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid widget id")
		}

		if err := service.Unmount(id); err != nil {
			return widgetLookupError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/forecast/days", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), renderTimeout)
		defer cancel()

		view, err := service.RenderOnce(ctx)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(newWidgetResponse(view))
		}
		return c.JSON(newWidgetResponse(view))
	})
}

// widgetResponse is the JSON body for a widget view.
type widgetResponse struct {
	weather.View
	Cards   []render.Card `json:"cards,omitempty"`
	Message string        `json:"message,omitempty"`
}

func newWidgetResponse(v weather.View) widgetResponse {
	resp := widgetResponse{View: v}
	switch v.State {
	case weather.StateReady:
		resp.Cards = render.Cards(v.Days)
	case weather.StateLoading:
		resp.Message = render.LoadingText
	}
	return resp
}

func widgetLookupError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "no widget mounted with this id")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to look up widget")
}

// widgetQuery holds the path and query parameters of the widget endpoint.
type widgetQuery struct {
	ID          string `validate:"required,uuid4"`
	WaitSeconds int    `validate:"gte=0,lte=30"`
}

func (q *widgetQuery) bind(c *fiber.Ctx) error {
	q.ID = c.Params("id")

	if s := c.Query("wait"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("wait must be a number of seconds")
		}
		q.WaitSeconds = n
	}

	return validate.Struct(q)
}
