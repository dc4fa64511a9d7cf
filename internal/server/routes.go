package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	docsPath      = "/api-docs.json"
	swaggerUIPath = "/swagger"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(s.log))
	r.Use(cors.New(s.corsConfig()))

	r.POST("/webhook", s.WebhookHandler)

	r.GET("/orders/:id", s.GetOrderHandler)
	r.GET("/payments/:id", s.GetPaymentHandler)
	r.GET("/tickets", s.ListTicketsHandler)
	r.GET("/webhook-logs", s.ListWebhookLogsHandler)

	r.POST("/seed", s.SeedHandler)
	r.POST("/reset", s.ResetHandler)

	r.GET("/health", s.HealthHandler)
	r.GET(docsPath, s.APIDocsHandler)

	// interactive docs, backed by the document above
	r.GET("/api-docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, swaggerUIPath+"/index.html")
	})
	r.GET(swaggerUIPath+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL(docsPath),
		ginSwagger.DocExpansion("list"),
	))

	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
	}
	if len(s.cfg.CORSOrigins) == 0 || (len(s.cfg.CORSOrigins) == 1 && s.cfg.CORSOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.cfg.CORSOrigins
	}
	return cfg
}
