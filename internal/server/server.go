package server

import (
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog"

	"github.com/rajkumar-hr-ps/webhook-poc/internal/config"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/service"
)

type Server struct {
	cfg      config.Config
	log      zerolog.Logger
	webhooks service.WebhookService
	records  service.RecordService
	docs     *openapi3.T
}

func New(
	cfg config.Config,
	log zerolog.Logger,
	webhooks service.WebhookService,
	records service.RecordService,
	docs *openapi3.T,
) *Server {
	return &Server{
		cfg:      cfg,
		log:      log,
		webhooks: webhooks,
		records:  records,
		docs:     docs,
	}
}

func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
