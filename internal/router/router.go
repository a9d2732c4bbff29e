package router

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/m-karthika14/mindmirrorai/internal/config"
	"github.com/m-karthika14/mindmirrorai/internal/handlers"
	"github.com/unrolled/secure"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Deps are the handlers and settings the router wires together.
type Deps struct {
	Server      config.ServerConfig
	ServiceName string
	Scoring     *handlers.ScoringHandler
	Reports     *handlers.ReportsHandler
}

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.Header("Retry-After", time.Until(info.ResetTime).Round(time.Second).String())
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Try again later."})
}

// corsConfig allows any origin without credentials when none are configured.
func corsConfig(origins []string) cors.Config {
	conf := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		conf.AllowAllOrigins = true
		return conf
	}
	conf.AllowOrigins = origins
	conf.AllowCredentials = true
	return conf
}

func Setup(log *zap.Logger, deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(deps.ServiceName))
	router.Use(RequestLogger(log))

	router.Use(cors.New(corsConfig(deps.Server.AllowedOrigins)))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "no-referrer",
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		c.Next()
	})

	limit := deps.Server.RateLimit
	if limit.Requests < 1 {
		limit.Requests = 60
	}
	if limit.Window <= 0 {
		limit.Window = time.Minute
	}
	limiter := ratelimit.RateLimiter(ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  limit.Window,
		Limit: uint(limit.Requests),
	}), &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	router.GET("/healthz", handlers.Health)

	api := router.Group("/api")
	{
		sessions := api.Group("/sessions")
		{
			sessions.POST("/validate", deps.Scoring.Validate)
			sessions.POST("/score", limiter, deps.Scoring.Score)
			sessions.POST("/score/batch", limiter, deps.Scoring.ScoreBatch)
		}

		reports := api.Group("/reports")
		{
			reports.GET("/:id", deps.Reports.Get)
			reports.GET("/:id/charts", deps.Reports.Charts)
			reports.POST("/:id/narrative", limiter, deps.Reports.Narrative)
		}

		users := api.Group("/users/:userId")
		{
			users.GET("/reports", deps.Reports.List)
			users.GET("/reports/export", deps.Reports.Export)
			users.GET("/charts/trend", deps.Reports.Trend)
		}
	}

	return router
}
