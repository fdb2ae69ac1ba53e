package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/WebTargetLtd/wolves-cli-helper/pkg/api"
	"github.com/WebTargetLtd/wolves-cli-helper/pkg/logging"
	"github.com/WebTargetLtd/wolves-cli-helper/pkg/sysinfo"
	"github.com/WebTargetLtd/wolves-cli-helper/pkg/timers"
	"github.com/gorilla/mux"
)

type stubProvider struct {
	info *sysinfo.SystemInfo
	err  error
}

func (p stubProvider) Snapshot(ctx context.Context) (*sysinfo.SystemInfo, error) {
	return p.info, p.err
}

func newRouter(t *testing.T, p sysinfo.Provider) (*mux.Router, *timers.Locked) {
	t.Helper()
	reg := timers.NewLocked("server")
	handler := api.NewTimerHandler(reg, p, logging.Discard())
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router, reg
}

func do(router *mux.Router, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTimerLifecycle(t *testing.T) {
	router, reg := newRouter(t, stubProvider{})

	w := do(router, "POST", "/timers/job")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if !reg.Has("job") {
		t.Fatal("Expected timer to be registered")
	}

	w = do(router, "POST", "/timers/job/end")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var ended api.TimerResponse
	if err := json.Unmarshal(w.Body.Bytes(), &ended); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if ended.Running {
		t.Error("Expected ended timer")
	}

	w = do(router, "GET", "/timers/job?quantity=0")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got api.TimerResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if got.DurationMS != ended.DurationMS {
		t.Errorf("Expected fixed duration %d, got %d", ended.DurationMS, got.DurationMS)
	}
	if got.Rate == nil || *got.Rate != 0 {
		t.Errorf("Expected zero rate, got %v", got.Rate)
	}

	w = do(router, "DELETE", "/timers/job")
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}
	w = do(router, "DELETE", "/timers/job")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on second delete, got %d", w.Code)
	}
}

func TestUnknownTimer(t *testing.T) {
	router, _ := newRouter(t, stubProvider{})

	for _, tc := range []struct{ method, target string }{
		{"GET", "/timers/missing"},
		{"GET", "/timers/missing?quantity=10"},
		{"POST", "/timers/missing/end"},
	} {
		w := do(router, tc.method, tc.target)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.target, w.Code)
		}
	}
}

func TestGetTimerBadQuantity(t *testing.T) {
	router, _ := newRouter(t, stubProvider{})

	if w := do(router, "GET", "/timers/server?quantity=abc"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-numeric quantity, got %d", w.Code)
	}
	if w := do(router, "GET", "/timers/server?quantity=-5"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for negative quantity, got %d", w.Code)
	}
	if w := do(router, "GET", "/timers/server?quantity=9223372036854775807"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for oversized quantity, got %d: %s", w.Code, w.Body.String())
	}
}

func TestStrictStart(t *testing.T) {
	router, _ := newRouter(t, stubProvider{})

	if w := do(router, "POST", "/timers/server?strict=true"); w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for existing timer, got %d", w.Code)
	}
	if w := do(router, "POST", "/timers/fresh?strict=true"); w.Code != http.StatusCreated {
		t.Errorf("Expected 201 for new timer, got %d", w.Code)
	}
}

func TestStartAndEndReturnTimer(t *testing.T) {
	router, _ := newRouter(t, stubProvider{})

	w := do(router, "POST", "/timers/fresh?strict=true")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}
	var started api.TimerResponse
	if err := json.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if started.Name != "fresh" || !started.Running || started.StartedAt.IsZero() {
		t.Errorf("Unexpected start response: %+v", started)
	}

	w = do(router, "POST", "/timers/fresh/end")
	var ended api.TimerResponse
	if err := json.Unmarshal(w.Body.Bytes(), &ended); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if ended.Name != "fresh" || ended.Running {
		t.Errorf("Unexpected end response: %+v", ended)
	}
}

func TestListTimers(t *testing.T) {
	router, reg := newRouter(t, stubProvider{})
	reg.Add("alpha")

	w := do(router, "GET", "/timers")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp struct {
		Timers []api.TimerResponse `json:"timers"`
		Count  int                 `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Count != 2 || resp.Timers[0].Name != "alpha" || resp.Timers[1].Name != "server" {
		t.Errorf("Unexpected listing: %+v", resp)
	}
}

func TestSystemInfoEndpoint(t *testing.T) {
	router, _ := newRouter(t, stubProvider{info: &sysinfo.SystemInfo{Hostname: "build-01", CPUCores: 4}})

	w := do(router, "GET", "/sysinfo")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var info sysinfo.SystemInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if info.Hostname != "build-01" || info.CPUCores != 4 {
		t.Errorf("Unexpected snapshot: %+v", info)
	}

	router, _ = newRouter(t, stubProvider{err: errors.New("probe failed")})
	if w := do(router, "GET", "/sysinfo"); w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 on probe failure, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	router, _ := newRouter(t, stubProvider{})

	if w := do(router, "GET", "/health"); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}
