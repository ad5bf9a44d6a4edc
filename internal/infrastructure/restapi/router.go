package restapi

import (
	"net/http"
	"net/http/pprof"
	"strings"

	"dusthunter/internal/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers groups the API handlers mounted under /api/v1.
type Handlers struct {
	Analysis  *AnalysisHandler
	Holdings  *HoldingsHandler
	Watchlist *WatchlistHandler
}

// RouterOptions toggles the operational endpoints.
type RouterOptions struct {
	SwaggerEnabled  bool
	SwaggerPath     string // e.g. "/swagger"
	SwaggerSpecFile string // served at /docs/swagger.yaml
	EnablePprof     bool
}

// SetupRouter builds the gin engine with middleware, API routes and the
// operational endpoints.
func SetupRouter(h Handlers, opts RouterOptions, zapLogger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))
	router.Use(logger.ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/analysis", h.Analysis.Analyze)
		apiV1.GET("/prices", h.Holdings.GetPrices)

		sessions := apiV1.Group("/holdings/sessions")
		sessions.POST("", h.Holdings.OpenSession)
		sessions.GET("/:id", h.Holdings.GetSession)
		sessions.PUT("/:id", h.Holdings.ReplaceSession)
		sessions.DELETE("/:id", h.Holdings.CloseSession)

		watchlist := apiV1.Group("/watchlist")
		watchlist.GET("", h.Watchlist.List)
		watchlist.POST("", h.Watchlist.Save)
		watchlist.DELETE("/:address", h.Watchlist.Remove)
		watchlist.POST("/:address/reanalyze", h.Watchlist.Reanalyze)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.SwaggerEnabled {
		router.StaticFile("/docs/swagger.yaml", opts.SwaggerSpecFile)
		path := strings.TrimRight(opts.SwaggerPath, "/")
		router.GET(path+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/docs/swagger.yaml")))
		zapLogger.Info("Swagger UI enabled", zap.String("path", path+"/index.html"))
	}

	// Keep these behind a private network in production.
	if opts.EnablePprof {
		pprofRouter := router.Group("/debug/pprof")
		{
			pprofRouter.GET("/", gin.WrapF(pprof.Index))
			pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
			pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
			pprofRouter.POST("/symbol", gin.WrapF(pprof.Symbol))
			pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
			pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
			pprofRouter.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
			pprofRouter.GET("/block", gin.WrapH(pprof.Handler("block")))
			pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
			pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
			pprofRouter.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
			pprofRouter.GET("/threadcreate", gin.WrapH(pprof.Handler("threadcreate")))
		}
	}

	return router
}
