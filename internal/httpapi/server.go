// Package httpapi is the HTTP adapter the core's capability facade is
// deliberately silent about: it maps chi routes onto a Sorcerer and
// publishes job progress over a websocket. None of the orchestration
// logic lives here; every handler is a thin translation to and from
// internal/sorcerer.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/flecs-run/edge-core/internal/middleware"
	"github.com/flecs-run/edge-core/internal/quest"
	"github.com/flecs-run/edge-core/internal/sorcerer"
	"github.com/flecs-run/edge-core/pkg/logger"
)

// Server wires the Instancius and Jobs facades behind a chi router.
type Server struct {
	instancius sorcerer.Instancius
	jobs       sorcerer.Jobs
	quests     *quest.Registry
	log        *logger.Logger
	metrics    *middleware.Metrics
}

// NewServer builds a Server. quests is the same *quest.Registry the
// Instancius facade's CreateInstance runs sub-quests under; the server
// needs it directly too, to open new root quests for create requests.
func NewServer(instancius sorcerer.Instancius, jobs sorcerer.Jobs, quests *quest.Registry, log *logger.Logger, metrics *middleware.Metrics) *Server {
	return &Server{instancius: instancius, jobs: jobs, quests: quests, log: log, metrics: metrics}
}

// Router assembles the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(s.log))
	r.Use(middleware.Logging(s.log))
	if s.metrics != nil {
		r.Use(s.metrics.Instrument)
	}

	r.Get("/healthz", s.handleHealthz)
	if s.metrics != nil {
		r.Handle("/metrics", metricsHandler())
	}

	r.Route("/v2/instances", func(r chi.Router) {
		r.Get("/", s.handleListInstances)
		r.Post("/", s.handleCreateInstance)
		r.Route("/{instanceId}", func(r chi.Router) {
			r.Get("/", s.handleGetInstance)
			r.Delete("/", s.handleDeleteInstance)
			r.Post("/start", s.handleStartInstance)
			r.Post("/stop", s.handleStopInstance)
			r.Get("/logs", s.handleInstanceLogs)
			r.Get("/config/environment", s.handleGetEnvironment)
			r.Get("/config/environment/{name}", s.handleGetEnvironmentVariable)
			r.Put("/config/environment/{name}", s.handlePutEnvironmentVariable)
			r.Delete("/config/environment/{name}", s.handleDeleteEnvironmentVariable)
			r.Get("/editor", s.handleRedirectEditorRequest)
			r.Get("/config/ports", s.handleGetPortMappings)
			r.Delete("/config/ports", s.handleDeletePortMappings)
			r.Route("/config/ports/{protocol}", func(r chi.Router) {
				r.Get("/", s.handleGetProtocolPortMappings)
				r.Delete("/", s.handleDeleteProtocolPortMappings)
				r.Get("/{hostPort}", s.handleGetPortMapping)
				r.Put("/{hostPort}", s.handlePutPortMapping)
				r.Delete("/{hostPort}", s.handleDeletePortMappingRange)
			})
			r.Get("/config/usb-devices", s.handleGetUsbDevices)
			r.Delete("/config/usb-devices", s.handleDeleteUsbDevices)
			r.Get("/config/usb-devices/{port}", s.handleGetUsbDevice)
			r.Put("/config/usb-devices/{port}", s.handlePutUsbDevice)
			r.Delete("/config/usb-devices/{port}", s.handleDeleteUsbDevice)
		})
	})

	r.Route("/v2/jobs", func(r chi.Router) {
		r.Get("/", s.handleListJobs)
		r.Get("/{jobId}", s.handleGetJob)
		r.Delete("/{jobId}", s.handleDeleteJob)
		r.Get("/{jobId}/ws", s.handleJobProgressWS)
	})

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
