package notifiers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniacca/pokelab/internal/catalog"
)

func TestWebhookNotifier(t *testing.T) {
	var (
		gotBody   []byte
		gotHeader http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier("hook", srv.URL)
	notifier.SetHeader("X-Token", "secret")
	assert.Equal(t, "hook", notifier.ID())
	assert.Equal(t, "webhook", notifier.Type())
	assert.Equal(t, srv.URL, notifier.URL())

	event := catalog.NewEvaluationEvent("default", catalog.EventEvolutionNext,
		map[string]any{"species": 25}, map[string]any{"evolved": true})
	require.NoError(t, notifier.Notify(context.Background(), event))

	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "secret", gotHeader.Get("X-Token"))
	assert.Equal(t, "evolution.next", gotHeader.Get("X-Pokelab-Event"))

	var decoded catalog.EvaluationEvent
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, catalog.DatasetID("default"), decoded.DatasetID)
	assert.Equal(t, catalog.EventEvolutionNext, decoded.Kind)

	assert.NoError(t, notifier.Close())
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier("hook", srv.URL)
	err := notifier.Notify(context.Background(), catalog.NewEvaluationEvent("", catalog.EventBattleFinished, nil, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWebhookNotifier_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	notifier := NewWebhookNotifier("hook", url)
	err := notifier.Notify(context.Background(), catalog.NewEvaluationEvent("", catalog.EventBattleFinished, nil, nil))
	assert.Error(t, err)
}
