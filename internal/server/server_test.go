package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/GoSim-25-26J-441/platform-dse/internal/search"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/config"
)

func status(runID string, round int, done bool) search.Status {
	score := 1.5
	return search.Status{
		RunID:     runID,
		Mode:      config.ModeIterative,
		Nodes:     4,
		Round:     round,
		Rounds:    3,
		Frontier:  12,
		Tested:    13,
		Winners:   3,
		Best:      "N4-P1-S2-V3",
		BestScore: &score,
		Done:      done,
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestHTTPServerHealthz(t *testing.T) {
	srv := New(config.Server{}, nil)
	rr := get(t, srv.Handler(), "/healthz")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", body["status"])
	}
	if body["searching"] != false {
		t.Fatalf("expected no active search, got %v", body["searching"])
	}
}

func TestHTTPServerStatus(t *testing.T) {
	srv := New(config.Server{}, nil)
	srv.Update(status("run-a", 1, false))
	srv.Update(status("run-a", 2, false))
	srv.Update(status("run-b", 0, false))

	rr := get(t, srv.Handler(), "/v1/status/run-a")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var st search.Status
	if err := json.Unmarshal(rr.Body.Bytes(), &st); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if st.Round != 2 || st.Best != "N4-P1-S2-V3" || st.BestScore == nil || *st.BestScore != 1.5 {
		t.Fatalf("unexpected status %+v", st)
	}

	rr = get(t, srv.Handler(), "/v1/status")
	var list struct {
		Runs []search.Status `json:"runs"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(list.Runs) != 2 || list.Runs[0].RunID != "run-b" {
		t.Fatalf("expected newest run first, got %+v", list.Runs)
	}

	rr = get(t, srv.Handler(), "/v1/status?limit=1")
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(list.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(list.Runs))
	}

	if rr := get(t, srv.Handler(), "/v1/status/missing"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if rr := get(t, srv.Handler(), "/v1/status?limit=x"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/status", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestHTTPServerMetrics(t *testing.T) {
	srv := New(config.Server{}, nil)
	rr := get(t, srv.Handler(), "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, name := range []string{"dse_active_simulations", "dse_search_round"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output is missing %s", name)
		}
	}
}

func checkHealth(t *testing.T, srv *Server) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := srv.Health().Check(context.Background(), &healthpb.HealthCheckRequest{Service: SearchService})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	return resp.Status
}

func TestSearchHealthFollowsRuns(t *testing.T) {
	srv := New(config.Server{}, nil)
	if got := checkHealth(t, srv); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING before any search, got %v", got)
	}
	srv.Update(status("run-a", 1, false))
	if got := checkHealth(t, srv); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING during a search, got %v", got)
	}
	srv.Update(status("run-a", 3, true))
	if got := checkHealth(t, srv); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING after the search, got %v", got)
	}
}

func TestServerStartShutdown(t *testing.T) {
	srv := New(config.Server{HTTPAddr: "127.0.0.1:0", GRPCAddr: "127.0.0.1:0"}, nil)
	if err := srv.Start(nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	srv.Update(status("run-a", 1, false))

	resp, err := http.Get(fmt.Sprintf("http://%s/v1/status/run-a", srv.HTTPAddr()))
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	conn, err := grpc.NewClient(srv.GRPCAddr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hr, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: SearchService})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if hr.Status != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %v", hr.Status)
	}

	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
