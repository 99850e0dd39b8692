package catalog

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniacca/pokelab/internal/evolution"
	"github.com/daniacca/pokelab/internal/typechart"
)

// recordingLogger keeps formatted messages per level.
type recordingLogger struct {
	mu   sync.Mutex
	logs map[string][]string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{logs: make(map[string][]string)}
}

func (l *recordingLogger) record(level, format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs[level] = append(l.logs[level], fmt.Sprintf(format, v...))
}

func (l *recordingLogger) Debugf(format string, v ...any) { l.record("debug", format, v...) }
func (l *recordingLogger) Infof(format string, v ...any)  { l.record("info", format, v...) }
func (l *recordingLogger) Warnf(format string, v ...any)  { l.record("warn", format, v...) }
func (l *recordingLogger) Errorf(format string, v ...any) { l.record("error", format, v...) }

func (l *recordingLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.logs[level]...)
}

func TestBuildDataset(t *testing.T) {
	cfg := validConfig()
	cfg.Version = "2"
	cfg.Chains = append(cfg.Chains, ChainConfig{Species: 95, EvolvesTo: []TransitionConfig{
		{Species: 208, Requirement: RequirementConfig{Method: "trade", Trade: true, HeldItem: "Metal Coat"}},
	}})

	logger := newRecordingLogger()
	ds, err := BuildDataset(cfg, logger)
	require.NoError(t, err)

	assert.Equal(t, "test", ds.Name)
	assert.Equal(t, "2", ds.Version)
	assert.Equal(t, 2, ds.Dex.Len())
	assert.Same(t, typechart.Default(), ds.Chart)

	next, ok := ds.Dex.NextEvolution(1, evolution.Context{Level: 16})
	require.True(t, ok)
	assert.Equal(t, evolution.SpeciesID(2), next)

	name, ok := ds.SpeciesName(2)
	require.True(t, ok)
	assert.Equal(t, "Ivysaur", name)

	info, ok := ds.Species(1)
	require.True(t, ok)
	assert.Equal(t, []typechart.Type{typechart.Grass, typechart.Poison}, info.Types)

	warnings := logger.messages("warn")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "held item on trade is not enforced")
	assert.Contains(t, warnings[0], "Metal Coat")

	// the held item is not checked
	next, ok = ds.Dex.NextEvolution(95, evolution.Context{Level: 1, Trading: true})
	require.True(t, ok)
	assert.Equal(t, evolution.SpeciesID(208), next)
}

func TestBuildDataset_Invalid(t *testing.T) {
	_, err := BuildDataset(DatasetConfig{}, nil)
	require.Error(t, err)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestBuildDataset_CustomTypes(t *testing.T) {
	cfg := validConfig()
	cfg.Types = make(map[string]RelationsConfig)
	for _, tp := range typechart.AllTypes() {
		cfg.Types[string(tp)] = RelationsConfig{}
	}
	cfg.Types["fire"] = RelationsConfig{Strong: []string{"water"}}

	ds, err := BuildDataset(cfg, nil)
	require.NoError(t, err)
	assert.NotSame(t, typechart.Default(), ds.Chart)

	got := ds.Chart.Classify(typechart.Fire, typechart.Water, typechart.Grass)
	assert.Equal(t, []typechart.Type{typechart.Water}, got.SuperEffective)
	assert.Empty(t, got.NotVeryEffective)
}

func TestBuildDataset_ConfigRetained(t *testing.T) {
	cfg := validConfig()
	ds, err := BuildDataset(cfg, nil)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, ds.Config()); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestRequirementConfigRoundTrip(t *testing.T) {
	reqs := []evolution.Requirement{
		evolution.Level{Level: 16},
		evolution.Stone{Stone: "Moon Stone"},
		evolution.Friendship{Friendship: 220, Time: evolution.Night},
		evolution.Location{Location: "Mt. Coronet"},
		evolution.Trade{HeldItem: "King's Rock"},
		evolution.Item{Item: "Oval Stone"},
		evolution.Other{Notes: "Special"},
	}
	for _, req := range reqs {
		t.Run(string(req.Kind()), func(t *testing.T) {
			got, err := RequirementFromConfig(RequirementToConfig(req))
			require.NoError(t, err)
			assert.Equal(t, req, got)
		})
	}
}

func TestRequirementFromConfig_TradeItemFallback(t *testing.T) {
	got, err := RequirementFromConfig(RequirementConfig{Method: "trade", Item: "Metal Coat"})
	require.NoError(t, err)
	assert.Equal(t, evolution.Trade{HeldItem: "Metal Coat"}, got)
}

func TestRequirementFromConfig_Invalid(t *testing.T) {
	_, err := RequirementFromConfig(RequirementConfig{Method: "level"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "requirement: "))
}

func TestDefaultDataset(t *testing.T) {
	ds := Default()
	require.NotNil(t, ds)
	assert.Equal(t, "default", ds.Name)
	assert.Same(t, ds, Default())

	tests := []struct {
		name    string
		species evolution.SpeciesID
		ctx     evolution.Context
		want    evolution.SpeciesID
		ok      bool
	}{
		{"bulbasaur at 16", 1, evolution.Context{Level: 16}, 2, true},
		{"bulbasaur at 15", 1, evolution.Context{Level: 15}, 0, false},
		{"pikachu thunder stone", 25, evolution.Context{Level: 1, HeldItem: "Thunder Stone"}, 26, true},
		{"gloom sun stone", 44, evolution.Context{Level: 1, HeldItem: "Sun Stone"}, 182, true},
		{"eevee night", 133, evolution.Context{Level: 1, Friendship: 220, TimeOfDay: evolution.Night}, 197, true},
		{"eevee eterna forest", 133, evolution.Context{Level: 1, Location: "Eterna Forest"}, 470, true},
		{"machoke trade", 67, evolution.Context{Level: 1, Trading: true}, 68, true},
		{"happiny oval stone", 440, evolution.Context{Level: 1, HeldItem: "Oval Stone"}, 113, true},
		{"mantyke never", 458, evolution.Context{Level: 100, Friendship: 255, Trading: true}, 0, false},
		{"mewtwo final", 150, evolution.Context{Level: 100}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ds.Dex.NextEvolution(tt.species, tt.ctx)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	out := ds.Dex.Evolve(25, evolution.Context{Level: 1, HeldItem: "Thunder Stone"}, ds)
	assert.Equal(t, "Evolved into Raichu!", out.Message)
}
