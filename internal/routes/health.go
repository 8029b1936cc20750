package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ultraauth/auth-api/internal/response"
)

const (
	healthStatusOK       = "ok"
	healthStatusDown     = "down"
	healthStatusDisabled = "disabled"

	healthMessage = "Health check completed successfully"
	healthTimeout = 2 * time.Second
)

type appHealth struct {
	Status  string
	Version string
	Ts      string
	Uptime  float64
	Started string
}

type dependencyHealth struct {
	Status    string
	Connected bool
	Timestamp string
}

type applicationHealth struct {
	Status  string
	Version string
	Uptime  float64
}

type dbHealth struct {
	Database    dependencyHealth
	Cache       dependencyHealth
	Application applicationHealth
}

// RegisterHealthRoutes adds liveness and datastore readiness endpoints.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	uptime := func() float64 {
		return time.Since(d.StartedAt).Round(time.Millisecond).Seconds()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return response.OK(c, healthMessage, appHealth{
			Status:  healthStatusOK,
			Version: d.Cfg.AppVersion,
			Ts:      time.Now().UTC().Format(time.RFC3339Nano),
			Uptime:  uptime(),
			Started: d.StartedAt.UTC().Format(time.RFC3339Nano),
		})
	})

	app.Get("/health/db", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		report := dbHealth{
			Database: probe(func() error { return d.Store.Ping(ctx) }),
			Cache:    dependencyHealth{Status: healthStatusDisabled, Timestamp: now()},
			Application: applicationHealth{
				Status:  healthStatusOK,
				Version: d.Cfg.AppVersion,
				Uptime:  uptime(),
			},
		}
		if d.Cache != nil {
			report.Cache = probe(func() error { return d.Cache.Ping(ctx).Err() })
		}

		status := http.StatusOK
		if !report.Database.Connected {
			d.Logger.Warn("health: database unreachable")
			status = http.StatusServiceUnavailable
		}
		return response.Send(c, status, healthMessage, report)
	})
}

func probe(ping func() error) dependencyHealth {
	h := dependencyHealth{Status: healthStatusOK, Connected: true, Timestamp: now()}
	if err := ping(); err != nil {
		h.Status = healthStatusDown
		h.Connected = false
	}
	return h
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
