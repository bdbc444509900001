package api

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"stockrank/metrics"
)

// Options 服务参数
type Options struct {
	Port int
	// StaticDir 非空时从磁盘目录提供静态文件，否则使用 StaticFS
	StaticDir string
	StaticFS  fs.FS
}

// Server HTTP服务器
type Server struct {
	engine   *gin.Engine
	server   *http.Server
	staticFS fs.FS
	metrics  *metrics.Registry
	log      zerolog.Logger
}

// NewServer 创建服务器
func NewServer(opt Options, q KlineQuerier, reg *metrics.Registry, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	log = log.With().Str("component", "api").Logger()

	s := &Server{
		engine:   engine,
		staticFS: opt.StaticFS,
		metrics:  reg,
		log:      log,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", opt.Port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	if opt.StaticDir != "" {
		s.staticFS = os.DirFS(opt.StaticDir)
	}

	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(s.loggerMiddleware())

	s.setupRoutes(NewHandler(q, log))
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(handler *Handler) {
	api := s.engine.Group("/api")
	{
		api.GET("/kline", handler.GetKline)
	}

	// 健康检查
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	// 其余路径走静态文件
	s.engine.NoRoute(s.staticHandler())
}

func (s *Server) staticHandler() gin.HandlerFunc {
	if s.staticFS == nil {
		return func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		}
	}
	files := http.FileServer(http.FS(s.staticFS))
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}

// Handler 返回底层 http.Handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start 启动服务器，阻塞直到关闭
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("服务启动")
	s.log.Info().Msg("可用接口: GET /api/kline?code=<代码>, GET /health, GET /metrics")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// loggerMiddleware 日志与请求计数
func (s *Server) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "static"
		}
		s.metrics.HTTP(c.Request.Method, route, strconv.Itoa(status))
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// corsMiddleware CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
