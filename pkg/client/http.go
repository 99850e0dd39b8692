package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/daniacca/pokelab/internal/battle"
	"github.com/daniacca/pokelab/internal/catalog"
	"github.com/daniacca/pokelab/internal/evolution"
	"github.com/daniacca/pokelab/internal/typechart"
)

// APIError is returned when the server answers with an unexpected status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// Client talks to a pokelab server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the server at baseURL (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DatasetSummary describes a registered dataset.
type DatasetSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Chains  int    `json:"chains"`
	Species int    `json:"species"`
}

// NextEvolution is the answer to an evolution attempt.
type NextEvolution struct {
	Species evolution.SpeciesID `json:"species"`
	Evolves bool                `json:"evolves"`
	Next    evolution.SpeciesID `json:"next,omitempty"`
	Outcome evolution.Outcome   `json:"outcome"`
}

// Transition is one evolution a species can take.
type Transition struct {
	Target      evolution.SpeciesID       `json:"target"`
	Name        string                    `json:"name,omitempty"`
	Method      evolution.Kind            `json:"method"`
	Description string                    `json:"description"`
	Requirement catalog.RequirementConfig `json:"requirement"`
}

// Species is a species id with its display name, when the dataset has one.
type Species struct {
	ID   evolution.SpeciesID `json:"id"`
	Name string              `json:"name,omitempty"`
}

// Notifier describes a registered notifier.
type Notifier struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

// BattleRequest describes a battle to simulate. A nil Seed lets the server
// pick one; MaxSteps of zero uses the server default.
type BattleRequest struct {
	A        battle.Combatant `json:"a"`
	B        battle.Combatant `json:"b"`
	Seed     *int64           `json:"seed,omitempty"`
	MaxSteps int              `json:"maxSteps,omitempty"`
}

func (c *Client) endpoint(segs ...string) (string, error) {
	u, err := url.JoinPath(c.baseURL, segs...)
	if err != nil {
		return "", fmt.Errorf("failed to build URL: %w", err)
	}
	return u, nil
}

// do sends a request and decodes a JSON response into out when out is not nil.
// Any status outside accepted (200 when empty) becomes an *APIError.
func (c *Client) do(ctx context.Context, method, u, contentType string, body io.Reader, out any, accepted ...int) error {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if len(accepted) == 0 {
		accepted = []int{http.StatusOK}
	}
	if !slices.Contains(accepted, resp.StatusCode) {
		msg, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, u string, in, out any, accepted ...int) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, method, u, "application/json", bytes.NewReader(data), out, accepted...)
}

// Health reports whether the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	u, err := c.endpoint("healthz")
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodGet, u, "", nil, nil)
}

// ListDatasets returns the ids of the registered datasets.
func (c *Client) ListDatasets(ctx context.Context) ([]string, error) {
	u, err := c.endpoint("datasets")
	if err != nil {
		return nil, err
	}
	var resp struct {
		Datasets []string `json:"datasets"`
	}
	if err := c.do(ctx, http.MethodGet, u, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Datasets, nil
}

// GetDataset returns the summary of a dataset.
func (c *Client) GetDataset(ctx context.Context, id string) (DatasetSummary, error) {
	var summary DatasetSummary
	u, err := c.endpoint("datasets", id)
	if err != nil {
		return summary, err
	}
	err = c.do(ctx, http.MethodGet, u, "", nil, &summary)
	return summary, err
}

// PutDataset creates or replaces a dataset.
func (c *Client) PutDataset(ctx context.Context, id string, cfg catalog.DatasetConfig) (DatasetSummary, error) {
	var summary DatasetSummary
	u, err := c.endpoint("datasets", id)
	if err != nil {
		return summary, err
	}
	data, err := catalog.EncodeDatasetJSON(cfg)
	if err != nil {
		return summary, err
	}
	err = c.do(ctx, http.MethodPut, u, "application/json", bytes.NewReader(data), &summary, http.StatusOK, http.StatusCreated)
	return summary, err
}

// DeleteDataset removes a dataset and its snapshot.
func (c *Client) DeleteDataset(ctx context.Context, id string) error {
	u, err := c.endpoint("datasets", id)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, u, "", nil, nil)
}

// SaveSnapshot asks the server to persist a dataset and returns the file path.
func (c *Client) SaveSnapshot(ctx context.Context, id string) (string, error) {
	u, err := c.endpoint("datasets", id, "snapshot")
	if err != nil {
		return "", err
	}
	var resp struct {
		Path string `json:"path"`
	}
	if err := c.do(ctx, http.MethodPost, u, "", nil, &resp); err != nil {
		return "", err
	}
	return resp.Path, nil
}

// GetSnapshot fetches the persisted snapshot of a dataset.
func (c *Client) GetSnapshot(ctx context.Context, id string) (catalog.Snapshot, error) {
	var snap catalog.Snapshot
	u, err := c.endpoint("datasets", id, "snapshot")
	if err != nil {
		return snap, err
	}
	err = c.do(ctx, http.MethodGet, u, "", nil, &snap)
	return snap, err
}

// NextEvolution attempts to evolve species under ctxEval.
func (c *Client) NextEvolution(ctx context.Context, id string, species evolution.SpeciesID, ctxEval evolution.Context) (NextEvolution, error) {
	var result NextEvolution
	u, err := c.endpoint("datasets", id, "evolution", "next")
	if err != nil {
		return result, err
	}
	body := struct {
		Species evolution.SpeciesID `json:"species"`
		Context evolution.Context   `json:"context"`
	}{species, ctxEval}
	err = c.doJSON(ctx, http.MethodPost, u, body, &result)
	return result, err
}

// Transitions lists the evolutions species can take.
func (c *Client) Transitions(ctx context.Context, id string, species evolution.SpeciesID) ([]Transition, error) {
	u, err := c.endpoint("datasets", id, "evolution", strconv.Itoa(int(species)))
	if err != nil {
		return nil, err
	}
	var resp struct {
		Transitions []Transition `json:"transitions"`
	}
	if err := c.do(ctx, http.MethodGet, u, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Transitions, nil
}

// Progress returns how close species is to its first evolution, in percent.
func (c *Client) Progress(ctx context.Context, id string, species evolution.SpeciesID, level, friendship int) (float64, error) {
	u, err := c.endpoint("datasets", id, "evolution", strconv.Itoa(int(species)), "progress")
	if err != nil {
		return 0, err
	}
	q := url.Values{}
	q.Set("level", strconv.Itoa(level))
	q.Set("friendship", strconv.Itoa(friendship))

	var resp struct {
		Progress float64 `json:"progress"`
	}
	if err := c.do(ctx, http.MethodGet, u+"?"+q.Encode(), "", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Progress, nil
}

// EvolutionLine returns the family of species, root first.
func (c *Client) EvolutionLine(ctx context.Context, id string, species evolution.SpeciesID) ([]Species, error) {
	u, err := c.endpoint("datasets", id, "evolution", strconv.Itoa(int(species)), "line")
	if err != nil {
		return nil, err
	}
	var resp struct {
		Line []Species `json:"line"`
	}
	if err := c.do(ctx, http.MethodGet, u, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Line, nil
}

// SpeciesByStone lists the species that evolve with stone.
func (c *Client) SpeciesByStone(ctx context.Context, id, stone string) ([]Species, error) {
	u, err := c.endpoint("datasets", id, "stones", stone)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Species []Species `json:"species"`
	}
	if err := c.do(ctx, http.MethodGet, u, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Species, nil
}

// Classify groups defending types by how attacking affects them.
func (c *Client) Classify(ctx context.Context, id string, attacking typechart.Type, defending ...typechart.Type) (typechart.Result, error) {
	var res typechart.Result
	u, err := c.endpoint("datasets", id, "types", "classify")
	if err != nil {
		return res, err
	}
	if defending == nil {
		defending = []typechart.Type{}
	}
	body := struct {
		Attacking typechart.Type   `json:"attacking"`
		Defending []typechart.Type `json:"defending"`
	}{attacking, defending}
	err = c.doJSON(ctx, http.MethodPost, u, body, &res)
	return res, err
}

// Battle simulates a battle to the end and returns its final state.
func (c *Client) Battle(ctx context.Context, req BattleRequest) (battle.State, error) {
	var state battle.State
	u, err := c.endpoint("battle")
	if err != nil {
		return state, err
	}
	err = c.doJSON(ctx, http.MethodPost, u, req, &state)
	return state, err
}

// ListNotifiers returns the registered notifiers.
func (c *Client) ListNotifiers(ctx context.Context) ([]Notifier, error) {
	u, err := c.endpoint("notifiers")
	if err != nil {
		return nil, err
	}
	var resp struct {
		Notifiers []Notifier `json:"notifiers"`
	}
	if err := c.do(ctx, http.MethodGet, u, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notifiers, nil
}

// RegisterWebhook registers a webhook that receives every evaluation event.
func (c *Client) RegisterWebhook(ctx context.Context, id, webhookURL string, headers map[string]string) error {
	u, err := c.endpoint("notifiers")
	if err != nil {
		return err
	}
	body := map[string]any{
		"type": "webhook",
		"id":   id,
		"config": map[string]any{
			"url":     webhookURL,
			"headers": headers,
		},
	}
	return c.doJSON(ctx, http.MethodPost, u, body, nil, http.StatusCreated)
}

// UnregisterNotifier removes a notifier.
func (c *Client) UnregisterNotifier(ctx context.Context, id string) error {
	u, err := c.endpoint("notifiers", id)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, u, "", nil, nil)
}

// ApplyDataset uploads the dataset built by builder to the server at baseURL.
func ApplyDataset(ctx context.Context, baseURL, id string, builder *DatasetBuilder) error {
	_, err := New(baseURL).PutDataset(ctx, id, builder.Build())
	return err
}
