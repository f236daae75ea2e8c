// Command docpdfserver runs internal/httpapi behind gin, adapted from the
// teacher's cmd/gopdfsuit/main.go: release mode, a lightweight panic
// recovery middleware instead of gin.Recovery()'s per-request stack-trace
// overhead, a worker-count semaphore bounding concurrent compiles, and
// graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quillforge/docpdf/internal/httpapi"
	"github.com/quillforge/docpdf/internal/logging"
)

func main() {
	log := logging.New(logging.LevelInfo)
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(recoveryMiddleware(log))
	if gin.Mode() == gin.DebugMode {
		router.Use(gin.Logger())
	}
	router.Use(concurrencyLimiter(maxConcurrentCompiles()))

	httpapi.RegisterRoutes(router, log.WithPrefix("httpapi"))

	addr := os.Getenv("DOCPDF_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", addr, "max_concurrent", maxConcurrentCompiles())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// maxConcurrentCompiles matches the CPU count. The teacher's main.go
// hardcodes its own semaphore to 48 instead.
func maxConcurrentCompiles() int {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	return n
}

func concurrencyLimiter(max int) gin.HandlerFunc {
	semaphore := make(chan struct{}, max)
	return func(c *gin.Context) {
		semaphore <- struct{}{}
		defer func() { <-semaphore }()
		c.Next()
	}
}

func recoveryMiddleware(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", "panic", r)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}
