// internal/router/router.go
package router

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/vibing/vibing-client/internal/config"
	"github.com/vibing/vibing-client/internal/handlers"
	"github.com/vibing/vibing-client/internal/middleware"
	"github.com/vibing/vibing-client/internal/payment"
)

const version = "1.0.0"

// Server is the loopback HTTP server the hosted checkout redirects back to.
// It listens lazily, on the first checkout that needs it.
type Server struct {
	addr    string
	engine  *gin.Engine
	limiter *middleware.RateLimiter
	log     *logrus.Entry

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
}

func New(cfg *config.Config, hub *payment.Hub, tr handlers.Translator) *Server {
	log := logrus.WithField("component", "callback_server")
	limiter := middleware.NewRateLimiter(rate.Every(100*time.Millisecond), 20)
	paymentHandler := handlers.NewPaymentHandler(hub, tr)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.Payment.CheckoutURL))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(limiter.Middleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
			"pending": hub.Pending(),
		})
	})

	purchase := r.Group("/purchase")
	{
		purchase.GET("/success", paymentHandler.Success)
		purchase.GET("/fail", paymentHandler.Fail)
	}

	return &Server{
		addr:    cfg.Payment.CallbackAddr(),
		engine:  r,
		limiter: limiter,
		log:     log,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// EnsureRunning starts listening if the server is not already up.
func (s *Server) EnsureRunning() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.srv = srv
	s.listener = ln

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("Callback server stopped")
		}
	}()
	s.log.WithField("addr", ln.Addr().String()).Info("Callback server listening")
	return nil
}

// Addr is the bound address once running, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Shutdown stops the server and the rate limiter's cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.listener = nil
	s.mu.Unlock()

	s.limiter.Stop()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
