package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/iconsmith/iconsmith-backend/internal/api/http"
	"github.com/iconsmith/iconsmith-backend/internal/api/http/middleware"
	"github.com/iconsmith/iconsmith-backend/internal/auth"
	imhttp "github.com/iconsmith/iconsmith-backend/internal/icon_matching/http"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	Checks      map[string]httpapi.Check

	// Auth identifies the caller. Nil falls back to auth.DevUser.
	Auth  gin.HandlerFunc
	Users auth.UserRegistry
	Icons *imhttp.Handler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(corsConfig(dep.CORSOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Checks)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	authn := dep.Auth
	if authn == nil {
		authn = auth.DevUser()
	}
	api.Use(authn)
	if dep.Users != nil {
		api.Use(auth.WithUser(dep.Users))
	}

	if dep.Icons != nil {
		dep.Icons.Register(api)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID, "X-User-Id"},
		ExposeHeaders: []string{middleware.HeaderRequestID, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
