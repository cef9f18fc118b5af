// Package httpapi exposes the reservation core over HTTP. Authentication is
// an upstream concern: the caller identity arrives in the X-User-ID header,
// and role checks (ops vs customer) are expected to have happened at the
// gateway. This layer only parses input, injects the clock and maps error
// kinds to status codes.
package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/devketanpro/eafoods-preorder/internal/model"
	"github.com/devketanpro/eafoods-preorder/internal/service"
)

type Server struct {
	app *fiber.App
	svc *service.PreOrderService
	log *zap.Logger

	// now is the injected clock; tests replace it to pin cut-off and
	// window behavior.
	now func() time.Time
}

func New(svc *service.PreOrderService, log *zap.Logger) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{DisableStartupMessage: true}),
		svc: svc,
		log: log,
		now: time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(recover.New())

	api := s.app.Group("/api/v1")

	api.Get("/products", s.listProducts)
	api.Get("/products/resolve", s.resolveProduct)
	api.Get("/products/:id", s.getProduct)
	api.Get("/slots", s.listSlots)
	api.Get("/orders", s.ordersBySlot)
	api.Get("/reports/top-products", s.topProducts)

	// Mutating routes need a caller identity and are rate limited per IP.
	mutating := api.Group("/", requireIdentity(), limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded"})
		},
	}))
	mutating.Post("/preorders", s.placeOrder)
	mutating.Post("/preorders/:id/cancel", s.cancelOrder)
	mutating.Put("/stock/:productID", s.adjustStock)
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

func requireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user identity"})
		}
		c.Locals("user_id", userID)
		return c.Next()
	}
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

var kindStatus = map[model.ErrorKind]int{
	model.KindInvalidInput:      fiber.StatusBadRequest,
	model.KindNotFound:          fiber.StatusNotFound,
	model.KindAmbiguous:         fiber.StatusMultipleChoices,
	model.KindInsufficientStock: fiber.StatusConflict,
	model.KindAlreadyCancelled:  fiber.StatusConflict,
	model.KindOutOfWindow:       fiber.StatusForbidden,
}

// writeError maps domain error kinds to responses. Anything outside the
// closed taxonomy is an infrastructure fault: logged, never echoed.
func (s *Server) writeError(c *fiber.Ctx, err error) error {
	var de *model.Error
	if errors.As(err, &de) {
		body := fiber.Map{"error": de.Message}
		if de.Kind == model.KindAmbiguous {
			body["suggestions"] = productRefs(de.Candidates)
		}
		if de.Kind == model.KindInsufficientStock {
			body["available"] = de.Available
		}
		return c.Status(kindStatus[de.Kind]).JSON(body)
	}

	s.log.Error("request failed",
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
