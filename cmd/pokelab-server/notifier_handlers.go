package main

import (
	"net/http"
	"strings"

	"github.com/daniacca/pokelab/internal/catalog/notifiers"
)

// handleNotifiersRoutes handles notifier management endpoints
func (s *Server) handleNotifiersRoutes(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/notifiers" && r.Method == http.MethodGet:
		s.handleListNotifiers(w, r)
	case r.URL.Path == "/notifiers" && r.Method == http.MethodPost:
		s.handleRegisterNotifier(w, r)
	case strings.HasPrefix(r.URL.Path, "/notifiers/") && r.Method == http.MethodDelete:
		s.handleUnregisterNotifier(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

type notifierView struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

// GET /notifiers
func (s *Server) handleListNotifiers(w http.ResponseWriter, _ *http.Request) {
	ids := s.notifierMgr.ListNotifiers()
	views := make([]notifierView, 0, len(ids))
	for _, id := range ids {
		n, ok := s.notifierMgr.GetNotifier(id)
		if !ok {
			continue
		}
		view := notifierView{ID: id, Type: n.Type()}
		if wh, ok := n.(*notifiers.WebhookNotifier); ok {
			view.URL = wh.URL()
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, map[string][]notifierView{"notifiers": views})
}

// POST /notifiers
// Body: { "type": "webhook", "id": "my-webhook", "config": { "url": "http://..." } }
type registerNotifierRequest struct {
	Type   string         `json:"type" validate:"required,oneof=webhook"`
	ID     string         `json:"id" validate:"required,max=64"`
	Config notifierConfig `json:"config"`
}

type notifierConfig struct {
	URL     string            `json:"url" validate:"required,url"`
	Headers map[string]string `json:"headers"`
}

func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerNotifierRequest
	if err := s.decodeRequest(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	wh := notifiers.NewWebhookNotifier(req.ID, req.Config.URL)
	for k, v := range req.Config.Headers {
		wh.SetHeader(k, v)
	}

	if err := s.notifierMgr.RegisterNotifier(wh); err != nil {
		http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte("notifier registered"))
}

// DELETE /notifiers/{id}
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/notifiers/")
	if id == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}
	if id == eventsNotifierID {
		http.Error(w, "the event stream notifier cannot be removed", http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.UnregisterNotifier(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier unregistered"))
}
