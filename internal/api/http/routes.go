// Package httpapi exposes the dashboard hub over HTTP.
package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/luki/climadash/internal/dashboard"
	"github.com/luki/climadash/internal/feed"
	"github.com/luki/climadash/internal/history"
	"github.com/luki/climadash/internal/logger"
	"github.com/luki/climadash/internal/reading"
)

// Hub is the part of dashboard.Hub the API needs.
type Hub interface {
	Ingest(p *reading.Payload) (feed.Update, bool)
	Latest() (feed.Update, error)
	Query(r history.Range) history.Series
	Status() dashboard.Status
	Connected() bool
	Demo() bool
	Len() int
	Capacity() int
}

// NewApp creates a Fiber app with the central error handler, request
// logging into the application log and panic recovery.
func NewApp(name string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               name,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New(fiberlogger.Config{Output: logger.Writer()}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": name,
		})
	})
	return app
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, hub Hub) {
	v1 := app.Group("/api/v1")

	// Pushed readings take the same path as the live feed and count as one
	// for demo detection. Anything that does not decode is acknowledged and
	// dropped.
	v1.Post("/readings", func(c *fiber.Ctx) error {
		p, err := reading.Decode(c.Body())
		if err != nil {
			logger.Component("api").WithError(err).Debug("dropping undecodable reading")
			return c.Status(fiber.StatusAccepted).JSON(ingestResponse{})
		}
		u, ok := hub.Ingest(p)
		if !ok {
			return c.Status(fiber.StatusAccepted).JSON(ingestResponse{})
		}
		return c.Status(fiber.StatusAccepted).JSON(ingestResponse{Accepted: true, Stored: u.Stored, Update: &u})
	})

	v1.Get("/readings/latest", func(c *fiber.Ctx) error {
		u, err := hub.Latest()
		if err != nil {
			if errors.Is(err, dashboard.ErrNoData) {
				return fiber.NewError(fiber.StatusNotFound, "no readings yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read latest reading")
		}
		return c.JSON(u)
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		r := history.ParseRange(c.Query("range"))
		return c.JSON(historyResponse{Range: r, Series: hub.Query(r)})
	})

	v1.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(statusResponse{
			Status:    hub.Status(),
			Connected: hub.Connected(),
			Demo:      hub.Demo(),
			Points:    hub.Len(),
			Capacity:  hub.Capacity(),
		})
	})
}

type ingestResponse struct {
	Accepted bool         `json:"accepted"`
	Stored   bool         `json:"stored"`
	Update   *feed.Update `json:"update,omitempty"`
}

type historyResponse struct {
	Range history.Range `json:"range"`
	history.Series
}

type statusResponse struct {
	dashboard.Status
	Connected bool `json:"connected"`
	Demo      bool `json:"demo"`
	Points    int  `json:"points"`
	Capacity  int  `json:"capacity"`
}
