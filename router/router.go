package router

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rsscat/rsscat/controllers"
	"github.com/rsscat/rsscat/middlewares"
	"github.com/rsscat/rsscat/store"
	"github.com/rsscat/rsscat/templates"
)

type Deps struct {
	Store          *store.Store
	AllowedOrigins []string
	Logger         *slog.Logger
}

func InitRouter(d Deps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(d.Logger))

	allowedOrigins := make([]string, 0, len(d.AllowedOrigins))
	for _, v := range d.AllowedOrigins {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			allowedOrigins = append(allowedOrigins, trimmed)
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	allowCreds := true
	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		allowCreds = false
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCreds,
		MaxAge:           12 * time.Hour,
	}))

	tmpl, err := templates.HTML()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(templates.Static()))

	articles := controllers.NewArticleController(d.Store)
	health := controllers.NewHealthController(d.Store)

	r.GET("/", articles.Index)

	// Public health endpoint for liveness/readiness checks
	r.GET("/api/health", health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r, nil
}
