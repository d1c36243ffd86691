// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/recsengine/internal/models"
	"github.com/tomtom215/recsengine/internal/recommend"
)

// fakeEngine records calls and returns canned results.
type fakeEngine struct {
	mu sync.Mutex

	recs       []recommend.Recommendation
	trackErr   error
	historyErr error
	statsErr   error
	similarErr error

	lastUserID    string
	lastProductID string
	lastOptions   recommend.Options
	lastLimit     int
	lastDays      int
	lastSession   []string
	lastType      recommend.InteractionType
	tracked       []recommend.Interaction
	similarCalls  int
	calls         int
}

func (f *fakeEngine) record() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeEngine) GetPersonalizedRecommendations(_ context.Context, userID string, opts recommend.Options) []recommend.Recommendation {
	f.record()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUserID, f.lastOptions = userID, opts
	return f.recs
}

func (f *fakeEngine) GetPopularRecommendations(_ context.Context, limit, days int) []recommend.Recommendation {
	f.record()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit, f.lastDays = limit, days
	return f.recs
}

func (f *fakeEngine) GetAlsoBought(_ context.Context, productID string, limit int) []recommend.Recommendation {
	f.record()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastProductID, f.lastLimit = productID, limit
	return f.recs
}

func (f *fakeEngine) GetSessionBasedRecommendations(_ context.Context, products []string, limit int) []recommend.Recommendation {
	f.record()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSession, f.lastLimit = products, limit
	return f.recs
}

func (f *fakeEngine) GetSimilarProducts(_ context.Context, productID string, limit int) []recommend.Recommendation {
	f.record()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastProductID, f.lastLimit = productID, limit
	return f.recs
}

func (f *fakeEngine) CalculateProductSimilarities(_ context.Context, productID string, _ recommend.ProductData) error {
	f.record()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastProductID = productID
	f.similarCalls++
	return f.similarErr
}

func (f *fakeEngine) TrackInteraction(_ context.Context, in recommend.Interaction) (recommend.Interaction, error) {
	f.record()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.trackErr != nil {
		return recommend.Interaction{}, f.trackErr
	}
	in.ID = "int-1"
	in.Weight = in.Type.Weight()
	f.tracked = append(f.tracked, in)
	return in, nil
}

func (f *fakeEngine) BatchTrackInteractions(_ context.Context, items []recommend.Interaction) recommend.BatchResult {
	f.record()
	result := recommend.BatchResult{Total: len(items)}
	for i, in := range items {
		if in.UserID == "" {
			result.Failed++
			result.Failures = append(result.Failures, recommend.BatchFailure{Index: i, Error: "userId: is required"})
			continue
		}
		result.Successful++
	}
	return result
}

func (f *fakeEngine) UserHistory(_ context.Context, userID string, limit int, t recommend.InteractionType) ([]recommend.Interaction, error) {
	f.record()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUserID, f.lastLimit, f.lastType = userID, limit, t
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return nil, nil
}

func (f *fakeEngine) Stats(_ context.Context, days int) (recommend.Stats, error) {
	f.record()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastDays = days
	if f.statsErr != nil {
		return recommend.Stats{}, f.statsErr
	}
	return recommend.Stats{Days: 7, Total: 3, ByType: map[recommend.InteractionType]int{recommend.InteractionView: 3}}, nil
}

func (f *fakeEngine) Algorithms() []string {
	return []string{recommend.AlgorithmCollaborative, recommend.AlgorithmContent, recommend.AlgorithmHybrid}
}

func (f *fakeEngine) Config() *recommend.Config {
	return recommend.DefaultConfig()
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePublisher struct {
	mu        sync.Mutex
	err       error
	published []string
}

func (p *fakePublisher) PublishSimilarityRecompute(_ context.Context, productID string, _ recommend.ProductData) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, productID)
	return nil
}

type fakeChecker struct{ err error }

func (c fakeChecker) Ping(context.Context) error { return c.err }

type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func newTestServer(t *testing.T, engine *fakeEngine, opts ...HandlerOption) http.Handler {
	t.Helper()
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	return NewRouter(NewHandler(engine, zerolog.Nop(), opts...), cfg, zerolog.Nop()).SetupChi()
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func sampleRecs() []recommend.Recommendation {
	return []recommend.Recommendation{
		{ProductID: "p1", Score: 0.9, Reason: recommend.ReasonUsersAlsoLiked},
		{ProductID: "p2", Score: 0.5, Reason: recommend.ReasonUsersAlsoLiked},
	}
}

func TestPersonalizedRecommendations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		target        string
		wantAlgorithm string
		wantOptions   recommend.Options
	}{
		{
			name:          "primary query names",
			target:        "/api/v1/recommendations/user/u1?limit=5&algorithm=collaborative&exclude=a,b&category=books",
			wantAlgorithm: recommend.AlgorithmCollaborative,
			wantOptions: recommend.Options{
				Limit: 5, Algorithm: "collaborative", ExcludeProducts: []string{"a", "b"}, CategoryFilter: "books",
			},
		},
		{
			name:          "alias query names",
			target:        "/api/v1/recommendations/user/u1?excludeProducts=a,%20b,&categoryFilter=toys",
			wantAlgorithm: recommend.AlgorithmHybrid,
			wantOptions:   recommend.Options{ExcludeProducts: []string{"a", "b"}, CategoryFilter: "toys"},
		},
		{
			name:          "unknown algorithm reported as hybrid",
			target:        "/api/v1/recommendations/user/u1?algorithm=magic",
			wantAlgorithm: recommend.AlgorithmHybrid,
			wantOptions:   recommend.Options{Algorithm: "magic"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := &fakeEngine{recs: sampleRecs()}
			rec, env := do(t, newTestServer(t, engine), http.MethodGet, tt.target, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}

			var data models.RecommendationsResponse
			if err := json.Unmarshal(env.Data, &data); err != nil {
				t.Fatal(err)
			}
			if data.Algorithm != tt.wantAlgorithm {
				t.Errorf("algorithm = %q, want %q", data.Algorithm, tt.wantAlgorithm)
			}
			if data.Count != 2 || len(data.Recommendations) != 2 {
				t.Errorf("count = %d, recs = %d", data.Count, len(data.Recommendations))
			}

			got := engine.lastOptions
			if engine.lastUserID != "u1" {
				t.Errorf("user = %q", engine.lastUserID)
			}
			if got.Limit != tt.wantOptions.Limit || got.Algorithm != tt.wantOptions.Algorithm ||
				got.CategoryFilter != tt.wantOptions.CategoryFilter ||
				strings.Join(got.ExcludeProducts, ",") != strings.Join(tt.wantOptions.ExcludeProducts, ",") {
				t.Errorf("options = %+v, want %+v", got, tt.wantOptions)
			}
		})
	}
}

func TestQueryValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
	}{
		{"limit above max", "/api/v1/recommendations/user/u1?limit=500"},
		{"negative limit", "/api/v1/recommendations/popular?limit=-1"},
		{"days above max", "/api/v1/recommendations/popular?days=400"},
		{"stats days above max", "/api/v1/recommendations/stats?days=366"},
		{"unknown history type", "/api/v1/recommendations/history/u1?interactionType=like"},
		{"similar limit above max", "/api/v1/recommendations/similar/p1?limit=101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := &fakeEngine{}
			rec, env := do(t, newTestServer(t, engine), http.MethodGet, tt.target, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if env.Error == nil || env.Error.Code != ErrCodeValidation {
				t.Errorf("error = %+v, want %s", env.Error, ErrCodeValidation)
			}
			if engine.callCount() != 0 {
				t.Error("engine called for invalid request")
			}
		})
	}
}

func TestPopularRecommendations_DefaultPeriod(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{recs: sampleRecs()}
	rec, env := do(t, newTestServer(t, engine), http.MethodGet, "/api/v1/recommendations/popular?limit=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var data models.RecommendationsResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	wantDays := recommend.DefaultConfig().Popularity.DefaultDays
	if engine.lastDays != wantDays || engine.lastLimit != 3 {
		t.Errorf("engine got limit=%d days=%d", engine.lastLimit, engine.lastDays)
	}
	if want := fmt.Sprintf("%d days", wantDays); data.Period != want {
		t.Errorf("period = %q, want %q", data.Period, want)
	}
}

func TestProductEndpoints(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"also-bought", "similar"} {
		t.Run(path, func(t *testing.T) {
			t.Parallel()

			engine := &fakeEngine{}
			rec, env := do(t, newTestServer(t, engine), http.MethodGet, "/api/v1/recommendations/"+path+"/p9?limit=4", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if engine.lastProductID != "p9" || engine.lastLimit != 4 {
				t.Errorf("engine got product=%q limit=%d", engine.lastProductID, engine.lastLimit)
			}

			var data models.RecommendationsResponse
			if err := json.Unmarshal(env.Data, &data); err != nil {
				t.Fatal(err)
			}
			if data.ProductID != "p9" {
				t.Errorf("productId = %q", data.ProductID)
			}
			if data.Recommendations == nil {
				t.Error("empty result must encode as []")
			}
		})
	}
}

func TestSessionRecommendations(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{recs: sampleRecs()}
	srv := newTestServer(t, engine)

	rec, _ := do(t, srv, http.MethodPost, "/api/v1/recommendations/session", `{"sessionProducts":["a","b"],"limit":6}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Join(engine.lastSession, ",") != "a,b" || engine.lastLimit != 6 {
		t.Errorf("engine got %v limit %d", engine.lastSession, engine.lastLimit)
	}

	rec, env := do(t, srv, http.MethodPost, "/api/v1/recommendations/session", `{"sessionProducts":["a",""]}`)
	if rec.Code != http.StatusBadRequest || env.Error.Code != ErrCodeValidation {
		t.Errorf("empty session product: status = %d error = %+v", rec.Code, env.Error)
	}
}

func TestTrackInteraction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		trackErr   error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "valid",
			body:       `{"userId":"u1","productId":"p1","interactionType":"purchase"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unknown type",
			body:       `{"userId":"u1","productId":"p1","interactionType":"like"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidation,
		},
		{
			name:       "missing user",
			body:       `{"productId":"p1","interactionType":"view"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidation,
		},
		{
			name:       "user with key separator",
			body:       `{"userId":"a:b","productId":"p1","interactionType":"view"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidation,
		},
		{
			name:       "malformed json",
			body:       `{"userId":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeInvalidBody,
		},
		{
			name:       "store down",
			body:       `{"userId":"u1","productId":"p1","interactionType":"view"}`,
			trackErr:   recommend.StoreError("append", errors.New("connection refused")),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   ErrCodeStoreUnavailable,
		},
		{
			name:       "engine validation",
			body:       `{"userId":"u1","productId":"p1","interactionType":"view"}`,
			trackErr:   &recommend.ValidationError{Field: "productId", Message: "is required"},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidation,
		},
		{
			name:       "unexpected failure",
			body:       `{"userId":"u1","productId":"p1","interactionType":"view"}`,
			trackErr:   errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := &fakeEngine{trackErr: tt.trackErr}
			rec, env := do(t, newTestServer(t, engine), http.MethodPost, "/api/v1/recommendations/track", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if env.Error == nil || env.Error.Code != tt.wantCode {
					t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
				}
				return
			}

			var data models.TrackResponse
			if err := json.Unmarshal(env.Data, &data); err != nil {
				t.Fatal(err)
			}
			if data.Interaction.ID == "" || data.Interaction.Weight != recommend.InteractionPurchase.Weight() {
				t.Errorf("interaction = %+v", data.Interaction)
			}
		})
	}
}

func TestBatchTrackInteractions(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	srv := newTestServer(t, engine)

	body := `{"interactions":[
		{"userId":"u1","productId":"p1","interactionType":"view"},
		{"productId":"p2","interactionType":"view"}
	]}`
	rec, env := do(t, srv, http.MethodPost, "/api/v1/recommendations/track/batch", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}

	var result recommend.BatchResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatal(err)
	}
	if result.Total != 2 || result.Successful != 1 || result.Failed != 1 {
		t.Errorf("result = %+v", result)
	}

	rec, env = do(t, srv, http.MethodPost, "/api/v1/recommendations/track/batch", `{"interactions":[]}`)
	if rec.Code != http.StatusBadRequest || env.Error.Code != ErrCodeValidation {
		t.Errorf("empty batch: status = %d error = %+v", rec.Code, env.Error)
	}
}

func TestCalculateSimilarities(t *testing.T) {
	t.Parallel()

	body := `{"productData":{"category":"books","tags":["go"],"price":30}}`

	t.Run("queued through publisher", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{}
		pub := &fakePublisher{}
		rec, env := do(t, newTestServer(t, engine, WithSimilarityPublisher(pub)),
			http.MethodPost, "/api/v1/recommendations/similarities/p1", body)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d", rec.Code)
		}
		var data models.SimilarityResponse
		if err := json.Unmarshal(env.Data, &data); err != nil {
			t.Fatal(err)
		}
		if !data.Queued || len(pub.published) != 1 || pub.published[0] != "p1" {
			t.Errorf("queued = %v published = %v", data.Queued, pub.published)
		}
		if engine.similarCalls != 0 {
			t.Error("engine called inline despite publisher")
		}
	})

	t.Run("publish failure", func(t *testing.T) {
		t.Parallel()

		pub := &fakePublisher{err: errors.New("broker down")}
		rec, env := do(t, newTestServer(t, &fakeEngine{}, WithSimilarityPublisher(pub)),
			http.MethodPost, "/api/v1/recommendations/similarities/p1", body)
		if rec.Code != http.StatusServiceUnavailable || env.Error.Code != ErrCodePublishFailed {
			t.Errorf("status = %d error = %+v", rec.Code, env.Error)
		}
	})

	t.Run("inline without publisher and empty body", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{}
		rec, _ := do(t, newTestServer(t, engine), http.MethodPost, "/api/v1/recommendations/similarities/p7", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if engine.similarCalls != 1 || engine.lastProductID != "p7" {
			t.Errorf("calls = %d product = %q", engine.similarCalls, engine.lastProductID)
		}
	})

	t.Run("inline store failure", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{similarErr: recommend.StoreError("upsert", errors.New("down"))}
		rec, _ := do(t, newTestServer(t, engine), http.MethodPost, "/api/v1/recommendations/similarities/p7", body)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestUserHistoryAndStats(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	srv := newTestServer(t, engine)

	rec, env := do(t, srv, http.MethodGet, "/api/v1/recommendations/history/u5?limit=20&interactionType=purchase", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d", rec.Code)
	}
	if engine.lastUserID != "u5" || engine.lastLimit != 20 || engine.lastType != recommend.InteractionPurchase {
		t.Errorf("engine got %q %d %q", engine.lastUserID, engine.lastLimit, engine.lastType)
	}
	var history models.HistoryResponse
	if err := json.Unmarshal(env.Data, &history); err != nil {
		t.Fatal(err)
	}
	if history.History == nil || history.Count != 0 {
		t.Errorf("history = %+v", history)
	}

	rec, env = do(t, srv, http.MethodGet, "/api/v1/recommendations/stats?days=30", "")
	if rec.Code != http.StatusOK || engine.lastDays != 30 {
		t.Fatalf("stats status = %d days = %d", rec.Code, engine.lastDays)
	}
	var stats recommend.Stats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Total != 3 {
		t.Errorf("stats = %+v", stats)
	}

	failing := &fakeEngine{statsErr: recommend.StoreError("aggregate", errors.New("down"))}
	rec, _ = do(t, newTestServer(t, failing), http.MethodGet, "/api/v1/recommendations/stats", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("failing stats status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       []HandlerOption
		wantStatus int
		wantHealth string
		wantStore  string
		wantCache  string
	}{
		{
			name:       "all dependencies up",
			opts:       []HandlerOption{WithStoreCheck(fakeChecker{}), WithCacheCheck(fakeChecker{})},
			wantStatus: http.StatusOK,
			wantHealth: HealthHealthy,
			wantStore:  checkOK,
			wantCache:  checkOK,
		},
		{
			name:       "cache down degrades",
			opts:       []HandlerOption{WithStoreCheck(fakeChecker{}), WithCacheCheck(fakeChecker{err: errors.New("redis down")})},
			wantStatus: http.StatusOK,
			wantHealth: HealthDegraded,
			wantStore:  checkOK,
			wantCache:  checkUnreachable,
		},
		{
			name:       "store down is unhealthy",
			opts:       []HandlerOption{WithStoreCheck(fakeChecker{err: errors.New("mongo down")}), WithCacheCheck(fakeChecker{})},
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: HealthUnhealthy,
			wantStore:  checkUnreachable,
			wantCache:  checkOK,
		},
		{
			name:       "no checks configured",
			wantStatus: http.StatusOK,
			wantHealth: HealthHealthy,
			wantStore:  checkDisabled,
			wantCache:  checkDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newTestServer(t, &fakeEngine{}, tt.opts...)
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp models.HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != tt.wantHealth || resp.Checks["store"] != tt.wantStore || resp.Checks["cache"] != tt.wantCache {
				t.Errorf("health = %+v", resp)
			}
		})
	}
}
