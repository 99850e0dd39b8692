package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/daniacca/pokelab/internal/battle"
	"github.com/daniacca/pokelab/internal/catalog"
	"github.com/daniacca/pokelab/internal/evolution"
	"github.com/daniacca/pokelab/internal/typechart"
)

const maxDatasetBytes = 8 << 20

// extractDatasetID extracts the dataset ID from a path like "/datasets/{id}/..."
// Returns the dataset ID and the remaining path, or empty string if not found
func extractDatasetID(path string) (catalog.DatasetID, string) {
	rest, ok := strings.CutPrefix(path, "/datasets/")
	if !ok {
		return "", ""
	}
	id, remaining, found := strings.Cut(rest, "/")
	if !found {
		return catalog.DatasetID(id), ""
	}
	return catalog.DatasetID(id), "/" + remaining
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeRequest decodes a JSON body into v and runs its validate tags.
func (s *Server) decodeRequest(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// GET /datasets
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]catalog.DatasetID{"datasets": s.registry.List()})
}

// handleDatasetRoutes routes requests under /datasets/{id}
func (s *Server) handleDatasetRoutes(w http.ResponseWriter, r *http.Request) {
	id, remaining := extractDatasetID(r.URL.Path)
	if id == "" {
		http.Error(w, "dataset ID is required in path: /datasets/{id}/...", http.StatusBadRequest)
		return
	}
	segs := strings.Split(strings.Trim(remaining, "/"), "/")
	if remaining == "" || remaining == "/" {
		segs = nil
	}

	route, handler := s.datasetRoute(r.Method, segs)
	if handler == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	s.metrics.instrument(route, func(w http.ResponseWriter, r *http.Request) {
		handler(w, r, id, segs)
	})(w, r)
}

type datasetHandler func(w http.ResponseWriter, r *http.Request, id catalog.DatasetID, segs []string)

func (s *Server) datasetRoute(method string, segs []string) (string, datasetHandler) {
	switch {
	case len(segs) == 0 && method == http.MethodGet:
		return "dataset.get", s.handleGetDataset
	case len(segs) == 0 && (method == http.MethodPost || method == http.MethodPut):
		return "dataset.put", s.handlePutDataset
	case len(segs) == 0 && method == http.MethodDelete:
		return "dataset.delete", s.handleDeleteDataset
	case len(segs) == 1 && segs[0] == "snapshot" && method == http.MethodGet:
		return "dataset.snapshot.get", s.handleGetSnapshot
	case len(segs) == 1 && segs[0] == "snapshot" && method == http.MethodPost:
		return "dataset.snapshot.save", s.handleSaveSnapshot
	case len(segs) == 2 && segs[0] == "evolution" && segs[1] == "next" && method == http.MethodPost:
		return "evolution.next", s.handleNextEvolution
	case len(segs) == 2 && segs[0] == "evolution" && method == http.MethodGet:
		return "evolution.transitions", s.handleTransitions
	case len(segs) == 3 && segs[0] == "evolution" && segs[2] == "progress" && method == http.MethodGet:
		return "evolution.progress", s.handleProgress
	case len(segs) == 3 && segs[0] == "evolution" && segs[2] == "line" && method == http.MethodGet:
		return "evolution.line", s.handleEvolutionLine
	case len(segs) == 2 && segs[0] == "stones" && method == http.MethodGet:
		return "stones", s.handleSpeciesByStone
	case len(segs) == 2 && segs[0] == "types" && segs[1] == "classify" && method == http.MethodPost:
		return "types.classify", s.handleClassify
	}
	return "", nil
}

func (s *Server) lookup(w http.ResponseWriter, id catalog.DatasetID) (*catalog.Dataset, bool) {
	ds, ok := s.registry.Get(id)
	if !ok {
		http.Error(w, "dataset not found", http.StatusNotFound)
	}
	return ds, ok
}

func parseSpecies(w http.ResponseWriter, raw string) (evolution.SpeciesID, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		http.Error(w, "invalid species id: must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return evolution.SpeciesID(n), true
}

type datasetSummary struct {
	ID      catalog.DatasetID `json:"id"`
	Name    string            `json:"name"`
	Version string            `json:"version,omitempty"`
	Chains  int               `json:"chains"`
	Species int               `json:"species"`
}

func summarize(id catalog.DatasetID, ds *catalog.Dataset) datasetSummary {
	return datasetSummary{
		ID:      id,
		Name:    ds.Name,
		Version: ds.Version,
		Chains:  ds.Dex.Len(),
		Species: len(ds.Config().Species),
	}
}

// GET /datasets/{id}
func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request, id catalog.DatasetID, _ []string) {
	ds, ok := s.lookup(w, id)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summarize(id, ds))
}

// POST /datasets/{id}
// Body: dataset config as JSON, or YAML when Content-Type says so.
// Creates the dataset or replaces an existing one.
func (s *Server) handlePutDataset(w http.ResponseWriter, r *http.Request, id catalog.DatasetID, _ []string) {
	defer r.Body.Close()

	if err := catalog.ValidateDatasetID(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDatasetBytes))
	if err != nil {
		http.Error(w, "cannot read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	cfg, err := catalog.DecodeDataset(data, r.Header.Get("Content-Type"))
	if err != nil {
		http.Error(w, "invalid dataset: "+err.Error(), http.StatusBadRequest)
		return
	}
	ds, err := catalog.BuildDataset(cfg, s.logger)
	if err != nil {
		http.Error(w, "cannot build dataset: "+err.Error(), http.StatusBadRequest)
		return
	}

	if s.snapshotDir != "" {
		if err := catalog.SaveSnapshot(s.snapshotDir, id, cfg); err != nil {
			s.logger.Errorf("Failed to persist dataset: dataset_id=%s error=%v", id, err)
			http.Error(w, "failed to persist dataset: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}
	replaced, err := s.registry.Put(id, ds)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.datasets.Set(float64(s.registry.Len()))

	summary := summarize(id, ds)
	s.publish(id, catalog.EventDatasetPut, nil, summary)

	status := http.StatusCreated
	if replaced {
		status = http.StatusOK
	}
	writeJSON(w, status, summary)
}

// DELETE /datasets/{id}
func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request, id catalog.DatasetID, _ []string) {
	if err := s.registry.Delete(id); err != nil {
		s.logger.Warnf("Failed to delete dataset: dataset_id=%s error=%v", id, err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.metrics.datasets.Set(float64(s.registry.Len()))
	if s.snapshotDir != "" {
		if err := catalog.RemoveSnapshot(s.snapshotDir, id); err != nil {
			s.logger.Warnf("Failed to remove snapshot: dataset_id=%s error=%v", id, err)
		}
	}
	s.publish(id, catalog.EventDatasetDeleted, nil, nil)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("dataset deleted"))
}

// POST /datasets/{id}/snapshot
// Writes the dataset's configuration to the snapshot dir synchronously.
func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request, id catalog.DatasetID, _ []string) {
	ds, ok := s.lookup(w, id)
	if !ok {
		return
	}
	if s.snapshotDir == "" {
		http.Error(w, "snapshot directory not configured", http.StatusInternalServerError)
		return
	}
	if err := catalog.SaveSnapshot(s.snapshotDir, id, ds.Config()); err != nil {
		s.logger.Errorf("Failed to save snapshot: dataset_id=%s error=%v", id, err)
		http.Error(w, "failed to save snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}
	path := catalog.SnapshotPath(s.snapshotDir, id)
	s.logger.Debugf("Snapshot saved: dataset_id=%s path=%s", id, path)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "path": path})
}

// GET /datasets/{id}/snapshot
// Returns the raw snapshot JSON if it exists
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request, id catalog.DatasetID, _ []string) {
	if _, ok := s.lookup(w, id); !ok {
		return
	}
	if s.snapshotDir == "" {
		http.Error(w, "snapshot directory not configured", http.StatusInternalServerError)
		return
	}
	data, err := os.ReadFile(catalog.SnapshotPath(s.snapshotDir, id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.Error(w, "snapshot not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to read snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// contextRequest is the trainer context of an evaluation request.
type contextRequest struct {
	Level      *int   `json:"level" validate:"omitempty,gte=0"`
	HeldItem   string `json:"heldItem"`
	Friendship int    `json:"friendship" validate:"gte=0"`
	TimeOfDay  string `json:"timeOfDay" validate:"omitempty,oneof=day night"`
	Location   string `json:"location"`
	Trading    bool   `json:"trading"`
}

// toContext fills what the request leaves out from evolution.DefaultContext.
func (c *contextRequest) toContext() evolution.Context {
	ctx := evolution.DefaultContext()
	if c == nil {
		return ctx
	}
	if c.Level != nil {
		ctx.Level = *c.Level
	}
	return evolution.Context{
		Level:      ctx.Level,
		HeldItem:   c.HeldItem,
		Friendship: c.Friendship,
		TimeOfDay:  evolution.TimeOfDay(c.TimeOfDay),
		Location:   c.Location,
		Trading:    c.Trading,
	}
}

// POST /datasets/{id}/evolution/next
// Body: { "species": 25, "context": { "level": 10, "heldItem": "Thunder Stone" } }
type nextEvolutionRequest struct {
	Species int             `json:"species" validate:"gt=0"`
	Context *contextRequest `json:"context"`
}

type nextEvolutionResponse struct {
	Species evolution.SpeciesID `json:"species"`
	Evolves bool                `json:"evolves"`
	Next    evolution.SpeciesID `json:"next,omitempty"`
	Outcome evolution.Outcome   `json:"outcome"`
}

func (s *Server) handleNextEvolution(w http.ResponseWriter, r *http.Request, id catalog.DatasetID, _ []string) {
	defer r.Body.Close()

	ds, ok := s.lookup(w, id)
	if !ok {
		return
	}
	var req nextEvolutionRequest
	if err := s.decodeRequest(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	species := evolution.SpeciesID(req.Species)
	ctx := req.Context.toContext()
	next, evolves := ds.Dex.NextEvolution(species, ctx)
	resp := nextEvolutionResponse{
		Species: species,
		Evolves: evolves,
		Next:    next,
		Outcome: ds.Dex.Evolve(species, ctx, ds),
	}

	outcome := "not_met"
	if evolves {
		outcome = "evolves"
	}
	s.metrics.evaluations.WithLabelValues(string(catalog.EventEvolutionNext), outcome).Inc()
	s.logger.Debugf("Evolution evaluated: dataset_id=%s species=%d evolves=%t next=%d", id, species, evolves, next)
	s.publish(id, catalog.EventEvolutionNext, req, resp)

	writeJSON(w, http.StatusOK, resp)
}

type transitionView struct {
	Target      evolution.SpeciesID       `json:"target"`
	Name        string                    `json:"name,omitempty"`
	Method      evolution.Kind            `json:"method"`
	Description string                    `json:"description"`
	Requirement catalog.RequirementConfig `json:"requirement"`
}

// GET /datasets/{id}/evolution/{species}
func (s *Server) handleTransitions(w http.ResponseWriter, r *http.Request, id catalog.DatasetID, segs []string) {
	ds, ok := s.lookup(w, id)
	if !ok {
		return
	}
	species, ok := parseSpecies(w, segs[1])
	if !ok {
		return
	}

	transitions := ds.Dex.PossibleEvolutions(species)
	views := make([]transitionView, 0, len(transitions))
	for _, t := range transitions {
		name, _ := ds.SpeciesName(t.Target)
		views = append(views, transitionView{
			Target:      t.Target,
			Name:        name,
			Method:      t.Requirement.Kind(),
			Description: evolution.Describe(t.Requirement),
			Requirement: catalog.RequirementToConfig(t.Requirement),
		})
	}
	name, _ := ds.SpeciesName(species)
	writeJSON(w, http.StatusOK, map[string]any{
		"species":     species,
		"name":        name,
		"transitions": views,
	})
}

// GET /datasets/{id}/evolution/{species}/progress?level=&friendship=
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request, id catalog.DatasetID, segs []string) {
	ds, ok := s.lookup(w, id)
	if !ok {
		return
	}
	species, ok := parseSpecies(w, segs[1])
	if !ok {
		return
	}

	level, friendship := 0, 0
	q := r.URL.Query()
	for name, dst := range map[string]*int{"level": &level, "friendship": &friendship} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, fmt.Sprintf("invalid %s: must be a non-negative integer", name), http.StatusBadRequest)
			return
		}
		*dst = n
	}

	progress := ds.Dex.Progress(species, level, friendship)
	s.metrics.evaluations.WithLabelValues(string(catalog.EventEvolutionProgress), "ok").Inc()
	resp := map[string]any{"species": species, "level": level, "friendship": friendship, "progress": progress}
	s.publish(id, catalog.EventEvolutionProgress, nil, resp)
	writeJSON(w, http.StatusOK, resp)
}

type speciesView struct {
	ID   evolution.SpeciesID `json:"id"`
	Name string              `json:"name,omitempty"`
}

func namedSpecies(ds *catalog.Dataset, ids []evolution.SpeciesID) []speciesView {
	out := make([]speciesView, 0, len(ids))
	for _, sp := range ids {
		name, _ := ds.SpeciesName(sp)
		out = append(out, speciesView{ID: sp, Name: name})
	}
	return out
}

// GET /datasets/{id}/evolution/{species}/line
func (s *Server) handleEvolutionLine(w http.ResponseWriter, r *http.Request, id catalog.DatasetID, segs []string) {
	ds, ok := s.lookup(w, id)
	if !ok {
		return
	}
	species, ok := parseSpecies(w, segs[1])
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"species": species,
		"line":    namedSpecies(ds, ds.Dex.EvolutionLine(species)),
	})
}

// GET /datasets/{id}/stones/{stone}
func (s *Server) handleSpeciesByStone(w http.ResponseWriter, r *http.Request, id catalog.DatasetID, segs []string) {
	ds, ok := s.lookup(w, id)
	if !ok {
		return
	}
	stone := segs[1]
	writeJSON(w, http.StatusOK, map[string]any{
		"stone":   stone,
		"species": namedSpecies(ds, ds.Dex.SpeciesByStone(stone)),
	})
}

// POST /datasets/{id}/types/classify
// Body: { "attacking": "fire", "defending": ["grass", "water"] }
type classifyRequest struct {
	Attacking string   `json:"attacking" validate:"required"`
	Defending []string `json:"defending" validate:"dive,required"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request, id catalog.DatasetID, _ []string) {
	defer r.Body.Close()

	ds, ok := s.lookup(w, id)
	if !ok {
		return
	}
	var req classifyRequest
	if err := s.decodeRequest(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	defending := make([]typechart.Type, 0, len(req.Defending))
	for _, d := range req.Defending {
		defending = append(defending, typechart.Type(d))
	}
	res := ds.Chart.Classify(typechart.Type(req.Attacking), defending...)

	outcome := "classified"
	if res.Empty() {
		outcome = "neutral"
	}
	s.metrics.evaluations.WithLabelValues(string(catalog.EventTypesClassify), outcome).Inc()
	s.publish(id, catalog.EventTypesClassify, req, res)
	writeJSON(w, http.StatusOK, res)
}

// POST /battle
// Body: { "a": {...}, "b": {...}, "seed": 42, "maxSteps": 1000 }
type battleRequest struct {
	A        battle.Combatant `json:"a"`
	B        battle.Combatant `json:"b"`
	Seed     *int64           `json:"seed"`
	MaxSteps int              `json:"maxSteps" validate:"gte=0,lte=100000"`
}

func (s *Server) handleBattle(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req battleRequest
	if err := s.decodeRequest(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var random func() float64
	if req.Seed != nil {
		random = rand.New(rand.NewSource(*req.Seed)).Float64
	}
	b, err := battle.New(req.A, req.B, random)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	maxSteps := req.MaxSteps
	if maxSteps == 0 {
		maxSteps = battle.DefaultMaxSteps
	}
	state := b.RunToEnd(maxSteps)

	outcome := "win"
	if state.Draw {
		outcome = "draw"
	}
	s.metrics.evaluations.WithLabelValues(string(catalog.EventBattleFinished), outcome).Inc()
	s.logger.Debugf("Battle finished: a=%s b=%s rounds=%d winner=%s", req.A.Name, req.B.Name, state.Round, state.Winner)
	s.publish("", catalog.EventBattleFinished, req, state)
	writeJSON(w, http.StatusOK, state)
}
