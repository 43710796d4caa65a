package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"golang.org/x/time/rate"
)

// ServerOptions configures the echo instance.
type ServerOptions struct {
	RateLimit   float64 // requests per second per client; 0 disables
	CORSOrigins []string
	LogLevel    string
}

// NewServer builds an echo instance with middleware and the handler's routes.
func NewServer(h *Handler, opts ServerOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = JSONSerializer{}
	e.Logger.SetLevel(ParseLevel(opts.LogLevel))

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	if len(opts.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: opts.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		}))
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(opts.RateLimit),
			Burst:     burst * 2,
			ExpiresIn: 3 * time.Minute,
		})
		e.Use(middleware.RateLimiter(store))
	}

	h.RegisterRoutes(e)
	return e
}

// ParseLevel maps a config level name onto gommon's levels; unknown names mean info.
func ParseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
