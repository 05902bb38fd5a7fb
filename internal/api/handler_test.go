package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bravo-deck-backend/config"
	"bravo-deck-backend/internal/deck"
	"bravo-deck-backend/internal/driver"
	"bravo-deck-backend/internal/model"
	"bravo-deck-backend/internal/store"
)

type testEnv struct {
	router *gin.Engine
	state  *deck.DeckState
	sim    *driver.Simulator
	store  store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.LabwareEntry{}, &model.PushSubscription{}))

	state := deck.New(9)
	sim := driver.NewSimulator(state, "bravo")
	s := store.NewGormStore(db)
	cfg := config.ServerConfig{RateLimitPerSec: 1000, CacheTTLSeconds: 1}
	router := NewRouter(state, sim, s, nil, nil, cfg)

	return &testEnv{router: router, state: state, sim: sim, store: s}
}

func (e *testEnv) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestGetDeckSummary(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/deck", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary deck.DeckSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 9, summary.DeckInfo.NumNests)
	assert.Equal(t, 0, summary.ActiveOperations)
}

func TestGetNestAndNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/nests/3", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/api/nests/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.request(t, http.MethodGet, "/api/nests/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Rejected lookups must not disturb the deck counters.
	assert.Equal(t, 0, env.state.GetDeckSummary().DeckInfo.ErrorCount)
}

func TestPutNestLabware(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPut, "/api/nests/2/labware", gin.H{
		"labware_type": "microplate_96",
		"labware_name": "Assay Plate",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var view deck.NestView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, deck.LabwareMicroplate96, view.LabwareType)
	assert.Equal(t, "Assay Plate", view.LabwareName)

	w = env.request(t, http.MethodPut, "/api/nests/99/labware", gin.H{"labware_type": "microplate_96"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStartOperationRejectsUnknownLabel(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/nests/1/operations", gin.H{"operation": "aspirating"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodPost, "/api/nests/1/operations", gin.H{"operation": "levitating"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodPost, "/api/nests/50/operations", gin.H{"operation": "aspirating"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1, env.state.GetDeckSummary().DeckInfo.GlobalOperationCount)
}

func TestOperationLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	env.request(t, http.MethodPost, "/api/nests/4/operations", gin.H{"operation": "mixing"})

	w := env.request(t, http.MethodPost, "/api/nests/4/progress", gin.H{"progress": 55.0})
	require.Equal(t, http.StatusOK, w.Code)
	var view deck.NestView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 55.0, view.Progress)

	w = env.request(t, http.MethodPost, "/api/nests/4/operations/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, deck.StatusIdle, view.OperationStatus)
	assert.Equal(t, 100.0, view.Progress)

	w = env.request(t, http.MethodGet, "/api/operations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Operations []deck.ActiveOperation `json:"operations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Operations)
}

func TestVolumeAndTipsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/nests/5/volume", gin.H{"volume_aspirated": 100.0})
	require.Equal(t, http.StatusOK, w.Code)
	var view deck.NestView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 100.0, view.Volume.CurrentVolume)

	w = env.request(t, http.MethodPost, "/api/nests/5/tips", gin.H{"tips_on": true, "tip_type": "200uL"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.True(t, view.Tips.TipsLoaded)
	assert.Equal(t, "200uL", view.Tips.TipType)
}

func TestNestFilters(t *testing.T) {
	env := newTestEnv(t)
	env.state.SetLabwareAtNest(1, "microplate_96", "Plate A")
	env.state.SetLabwareAtNest(2, "reservoir", "Buffer")
	env.state.UpdateTipsAtNest(3, true, "200uL")

	w := env.request(t, http.MethodGet, "/api/nests?labware_type=microplate_96", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Nests []int `json:"nests"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []int{1}, resp.Nests)

	w = env.request(t, http.MethodGet, "/api/nests?tips=true", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []int{3}, resp.Nests)

	w = env.request(t, http.MethodGet, "/api/nests?empty=true", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Nests, 7)
}

func TestDeckResetEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.state.SetLabwareAtNest(1, "microplate_96", "Plate A")
	env.state.StartOperationAtNest(1, "aspirating", nil)

	w := env.request(t, http.MethodPost, "/api/deck/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary deck.DeckSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 0, summary.ActiveOperations)
	assert.Equal(t, 0, summary.NestsWithLabware)
	assert.Equal(t, 0, summary.DeckInfo.GlobalOperationCount)
}

func TestDeckExportEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/deck/export", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var exported deck.ExportedState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exported))
	assert.Equal(t, deck.ExportVersion, exported.Version)
	assert.Len(t, exported.DeckState.Nests, 9)
}

func TestDriverEndpoints(t *testing.T) {
	env := newTestEnv(t)

	// Commands before connect are rejected with 409.
	w := env.request(t, http.MethodPost, "/api/driver/aspirate", gin.H{"nest": 2, "volume": 100.0})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.request(t, http.MethodPost, "/api/driver/connect", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodPost, "/api/driver/aspirate", gin.H{"nest": 2, "volume": 100.0})
	require.Equal(t, http.StatusOK, w.Code)
	var view deck.NestView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 100.0, view.Volume.CurrentVolume)

	w = env.request(t, http.MethodPost, "/api/driver/dispense", gin.H{"nest": 3, "volume": 100.0})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodPost, "/api/driver/aspirate", gin.H{"nest": 2, "volume": -5.0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodPost, "/api/driver/disconnect", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDriverPickAndPlaceEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.sim.Connect()
	env.state.SetLabwareAtNest(1, "microplate_96", "Source Plate")

	w := env.request(t, http.MethodPost, "/api/driver/pick_and_place", gin.H{"from": 1, "to": 5})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, deck.LabwareEmpty, env.state.GetNest(1).LabwareType)
	assert.Equal(t, "Source Plate", env.state.GetNest(5).LabwareName)

	w = env.request(t, http.MethodPost, "/api/driver/pick_and_place", gin.H{"from": 1, "to": 40})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLabwareCatalogEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPut, "/api/labware", gin.H{
		"name":            "Custom Plate",
		"description":     "in-house 96 well",
		"base_class":      model.BaseClassPlate,
		"number_of_wells": 96,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, "/api/labware/Custom Plate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entry model.LabwareEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.Equal(t, 96, entry.NumberOfWells)

	w = env.request(t, http.MethodPost, "/api/labware/Custom Plate/clone", gin.H{"new_name": "Custom Plate v2"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, "/api/labware", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Labware []model.LabwareEntry `json:"labware"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Labware, 2)

	w = env.request(t, http.MethodDelete, "/api/labware/Custom Plate v2", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.request(t, http.MethodGet, "/api/labware/No Such Plate", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscriptionEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPut, "/api/subscriptions", gin.H{
		"endpoint": "https://push.example.com/sub1",
		"p256dh":   "key",
		"auth":     "secret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, "/api/subscriptions?endpoint=https://push.example.com/sub1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodDelete, "/api/subscriptions", gin.H{"endpoint": "https://push.example.com/sub1"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.request(t, http.MethodGet, "/api/subscriptions?endpoint=https://push.example.com/sub1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVAPIDKeyUnconfigured(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/vapid_public_key", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
