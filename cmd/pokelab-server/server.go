package main

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daniacca/pokelab/internal/catalog"
	"github.com/daniacca/pokelab/internal/catalog/notifiers"
)

// eventsNotifierID is the built-in websocket notifier behind /ws/events.
const eventsNotifierID = "ws-events"

const requestIDHeader = "X-Request-ID"

// Server represents the HTTP server for pokelab
type Server struct {
	registry    *catalog.Registry
	notifierMgr *catalog.NotificationManager
	events      *notifiers.WebSocketNotifier
	snapshotDir string
	logger      *zap.SugaredLogger
	metrics     *serverMetrics
	validate    *validator.Validate
}

// NewServer creates a server with an empty registry and the websocket event
// stream registered as a notifier.
func NewServer(logger *zap.SugaredLogger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		registry:    catalog.NewRegistry(logger),
		notifierMgr: catalog.NewNotificationManager(logger),
		events:      notifiers.NewWebSocketNotifier(eventsNotifierID, logger),
		logger:      logger,
		metrics:     newServerMetrics(),
		validate:    validator.New(),
	}
	if err := s.notifierMgr.RegisterNotifier(s.events); err != nil {
		s.notifierMgr.Close()
		return nil, fmt.Errorf("failed to register event stream: %w", err)
	}
	return s, nil
}

// SetSnapshotDir enables persistence of uploaded datasets under dir.
func (s *Server) SetSnapshotDir(dir string) {
	s.snapshotDir = dir
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.metrics.instrument("healthz", s.handleHealth))
	mux.Handle("/metrics", s.metrics.handler())
	mux.HandleFunc("/datasets", s.metrics.instrument("datasets", s.handleListDatasets))
	mux.HandleFunc("/datasets/", s.handleDatasetRoutes)
	mux.HandleFunc("/battle", s.metrics.instrument("battle", s.handleBattle))
	mux.HandleFunc("/notifiers", s.metrics.instrument("notifiers", s.handleNotifiersRoutes))
	mux.HandleFunc("/notifiers/", s.metrics.instrument("notifiers", s.handleNotifiersRoutes))
	mux.Handle("/ws/events", s.events)
	return s.withRequestID(mux)
}

// withRequestID tags every response with a request id, reusing the one the
// caller sent if any.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		s.logger.Debugf("Request: id=%s method=%s path=%s", id, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// Close stops notification delivery and disconnects websocket clients.
func (s *Server) Close() error {
	return s.notifierMgr.Close()
}

// loadDefaultDataset registers the dataset served as "default": the file
// when one is configured, otherwise the bundled dataset.
func (s *Server) loadDefaultDataset(path string) error {
	ds := catalog.Default()
	if path != "" {
		var err error
		if ds, err = catalog.LoadDatasetFile(path, s.logger); err != nil {
			return fmt.Errorf("failed to load dataset file: %w", err)
		}
		s.logger.Infof("Dataset loaded from file: path=%s name=%s", path, ds.Name)
	}
	if _, err := s.registry.Put(catalog.DefaultDatasetID, ds); err != nil {
		return err
	}
	s.metrics.datasets.Set(float64(s.registry.Len()))
	return nil
}

// restoreSnapshots registers every dataset persisted under the snapshot dir.
func (s *Server) restoreSnapshots() error {
	if s.snapshotDir == "" {
		return nil
	}
	snaps, err := catalog.LoadSnapshots(s.snapshotDir, s.logger)
	if err != nil {
		return err
	}
	n := catalog.Restore(s.registry, snaps, s.logger)
	s.metrics.datasets.Set(float64(s.registry.Len()))
	s.logger.Infof("Snapshots restored: dir=%s count=%d", s.snapshotDir, n)
	return nil
}

// registerWebhooks registers the webhooks listed in the config file.
func (s *Server) registerWebhooks(hooks []WebhookConfig) error {
	for _, h := range hooks {
		wh := notifiers.NewWebhookNotifier(h.ID, h.URL)
		for k, v := range h.Headers {
			wh.SetHeader(k, v)
		}
		if err := s.notifierMgr.RegisterNotifier(wh); err != nil {
			return err
		}
	}
	return nil
}

// publish queues an event for every registered notifier.
func (s *Server) publish(id catalog.DatasetID, kind catalog.EventKind, request, result any) {
	s.notifierMgr.EnqueueAll(catalog.NewEvaluationEvent(id, kind, request, result))
}
