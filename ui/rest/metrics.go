package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// InitRestMetrics exposes the collectors gathered by g in the Prometheus
// text format.
func InitRestMetrics(app fiber.Router, g prometheus.Gatherer) {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	app.Get("/metrics", func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	})
}
