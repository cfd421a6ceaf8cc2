package http_server

import (
	"artmarket/internal/http/auctionhandler"
	"artmarket/internal/http/checkouthandler"
	"artmarket/internal/http/webhookhandler"
	"artmarket/internal/services/auction"
	"artmarket/internal/services/checkout"
	"artmarket/internal/services/settlement"
	"artmarket/internal/ws"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abrar71/swaggerfilesv2" // swagger embed files
)

const requestIDHeader = "X-Request-ID"

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingerFunc adapts a plain function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Services are the handlers' dependencies.
type Services struct {
	Checkout   checkout.ICheckoutService
	Auction    auction.IAuctionService
	Settlement settlement.ISettlementService
	Events     webhookhandler.EventParser
	Ws         *ws.WsServer
	// checked by /healthz, keyed by name
	Health map[string]Pinger
}

type httpServer struct {
	listenPort uint16
	srv        http.Server
	ln         net.Listener
	services   Services
	ctx        context.Context
}

func NewHttpServer(ctx context.Context, listenPort uint16, services Services) *httpServer {
	return &httpServer{
		listenPort: listenPort,
		services:   services,
		ctx:        ctx,
	}
}

// Start blocks serving requests until Dispose is called; it then returns
// http.ErrServerClosed.
func (h *httpServer) Start() error {
	var err error
	listenAddr := fmt.Sprintf(":%d", h.listenPort)
	h.ln, err = net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	h.srv = http.Server{
		Handler:           newRouter(h.services),
		ReadHeaderTimeout: 10 * time.Second,
	}
	zap.L().Info("http_listening", zap.String("addr", listenAddr))
	return h.srv.Serve(h.ln)
}

func newRouter(s Services) *gin.Engine {
	routerEngine := gin.New()
	routerEngine.HandleMethodNotAllowed = true
	routerEngine.NoMethod(func(c *gin.Context) {
		c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	routerEngine.Use(requestID())
	routerEngine.Use(ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/healthz"},
		Context: func(c *gin.Context) []zapcore.Field {
			return []zapcore.Field{zap.String("request_id", c.GetString(requestIDHeader))}
		},
	}))
	routerEngine.Use(ginzap.RecoveryWithZap(zap.L(), true))

	// Swagger UI and API specs
	routerEngine.StaticFS("/swagger-apis", http.FS(swaggerfilesv2.FS))
	routerEngine.Static("/api-specs", "api_specs")

	routerEngine.GET("/healthz", health(s.Health))

	if s.Ws != nil {
		routerEngine.GET("/ws", s.Ws.Handle)
	}

	checkouthandler.New(s.Checkout).Register(routerEngine)
	auctionhandler.New(s.Auction).Register(routerEngine)
	webhookhandler.New(s.Events, s.Settlement).Register(routerEngine)

	return routerEngine
}

// requestID propagates the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// @Summary		Health check
// @Tags			Ops
// @Success		200
// @Failure		503	{object}	map[string]string
// @Router			/healthz [get]
func health(deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		out := gin.H{"status": "ok"}
		code := http.StatusOK
		for name, p := range deps {
			if err := p.PingContext(ctx); err != nil {
				out[name] = err.Error()
				out["status"] = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
		c.JSON(code, out)
	}
}

// Dispose gracefully shuts the HTTP server down.
// It waits up to 10 s for in-flight requests to finish.
func (h *httpServer) Dispose() error {
	// h.ctx is usually already cancelled by the time we shut down
	ctx, cancel := context.WithTimeout(context.WithoutCancel(h.ctx), 10*time.Second)
	defer cancel()

	if err := h.srv.Shutdown(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			zap.L().Error("http_dispose", zap.Error(errors.New("shutdown timed out")))
		} else {
			zap.L().Error("http_dispose", zap.Error(err))
		}
		return err
	}
	return nil
}
