// Package api exposes the bot's operational surface: health, consumer
// status, and Prometheus metrics.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lorekeep/iris/src/iris/components/consumer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	engine   *gin.Engine
	http     *http.Server
	consumer *consumer.Consumer
}

func NewServer(addr string, c *consumer.Consumer, reg *prometheus.Registry) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:   engine,
		http:     &http.Server{Addr: addr, Handler: engine},
		consumer: c,
	}

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/status", s.handleStatus)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return s
}

// Start serves in a goroutine; the status server is best effort and never
// blocks the pipeline.
func (s *Server) Start() {
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("status server: %v", err)
		}
	}()
}

// Shutdown stops the status server, waiting for in-flight requests up to
// the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state": s.consumer.State().String(),
		"cycle": s.consumer.CycleID(),
	})
}
