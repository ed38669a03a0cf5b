package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docbridge/internal/invocation"
)

// Invoker runs invocations; implemented by dispatcher.Dispatcher.
type Invoker interface {
	Handle(ctx context.Context, raw []byte) invocation.Response
	Dispatch(ctx context.Context, inv invocation.Invocation) invocation.Response
}

// Pinger reports backing store reachability; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db Pinger, inv Invoker, gatherer prometheus.Gatherer) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", Metrics(gatherer))

	// Every method reaches the dispatcher; only GET is answered with data.
	app.All("/documents", Documents(inv))
	app.Post("/invocations", Invocations(inv))
}

// HealthCheck checks table store connectivity only.
func HealthCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Metrics exposes gatherer in the Prometheus text format.
func Metrics(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

// Documents turns the request into an HTTP invocation.
func Documents(inv Invoker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := inv.Dispatch(c.UserContext(), invocation.HTTP{
			Method: utils.CopyString(c.Method()),
			Path:   utils.CopyString(c.Path()),
			Query:  copyQueries(c.Queries()),
		})
		return writeInvocation(c, resp)
	}
}

// copyQueries detaches the query map from fiber's request buffers.
func copyQueries(q map[string]string) map[string]string {
	out := make(map[string]string, len(q))
	for k, v := range q {
		out[utils.CopyString(k)] = utils.CopyString(v)
	}
	return out
}

// Invocations accepts a raw invocation payload, as a trigger would deliver it.
func Invocations(inv Invoker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := append([]byte(nil), c.Body()...)
		return writeInvocation(c, inv.Handle(c.UserContext(), raw))
	}
}

// writeInvocation writes resp as is; an empty body stays empty.
func writeInvocation(c *fiber.Ctx, resp invocation.Response) error {
	for k, v := range resp.Headers {
		c.Set(k, v)
	}
	c.Status(resp.StatusCode)
	if resp.Body == "" {
		return nil
	}
	if len(resp.Headers) == 0 {
		c.Type("txt", "utf-8")
	}
	return c.SendString(resp.Body)
}
