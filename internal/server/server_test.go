package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/shivavenkatesh/bigtext/internal/bigtext"
	"github.com/shivavenkatesh/bigtext/internal/store/sqlite"
	"github.com/shivavenkatesh/bigtext/pkg/types"
)

func newTestServer(t *testing.T) (*httptest.Server, types.Source) {
	t.Helper()
	dir := t.TempDir()

	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("hello big world, hello again"), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	st, err := sqlite.New(sqlite.Config{Path: filepath.Join(dir, "bigtext.db")})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	cfg := bigtext.DefaultConfig()
	cfg.ChunkSize = 5
	cfg.OutputDir = filepath.Join(dir, "out")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := bigtext.NewService(st, cfg, logger)

	ts := httptest.NewServer(New(svc, Config{}, logger).Handler())
	t.Cleanup(func() {
		ts.Close()
		svc.Close()
	})
	return ts, types.Source{Path: path}
}

func post(t *testing.T, ts *httptest.Server, route string, body any, out any) int {
	t.Helper()
	data, _ := json.Marshal(body)
	resp, err := http.Post(ts.URL+route, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s failed: %v", route, err)
	}
	defer resp.Body.Close()
	if out != nil {
		json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode
}

func TestServer_Length(t *testing.T) {
	ts, src := newTestServer(t)

	var got types.LengthResponse
	if code := post(t, ts, "/length", types.LengthRequest{Source: src}, &got); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if got.Length != 28 {
		t.Errorf("expected 28, got %d", got.Length)
	}
}

func TestServer_Index(t *testing.T) {
	ts, src := newTestServer(t)

	var got types.IndexResponse
	post(t, ts, "/index", types.IndexRequest{Source: src, Pattern: "hello", From: 1}, &got)
	if got.Index != 17 {
		t.Errorf("expected 17, got %d", got.Index)
	}
}

func TestServer_Replace(t *testing.T) {
	ts, src := newTestServer(t)

	var got types.OutputResponse
	code := post(t, ts, "/replace", types.ReplaceRequest{Source: src, Old: "hello", New: "bye"}, &got)
	if code != http.StatusOK || len(got.Outputs) != 1 {
		t.Fatalf("unexpected response %d %+v", code, got)
	}

	data, _ := os.ReadFile(got.Outputs[0])
	if string(data) != "bye big world, bye again" {
		t.Errorf("unexpected output %q", data)
	}
}

func TestServer_ErrorStatus(t *testing.T) {
	ts, src := newTestServer(t)

	tests := []struct {
		name  string
		route string
		body  any
		want  int
	}{
		{"missing source", "/length", types.LengthRequest{Source: types.Source{Path: "/no/such/file"}}, http.StatusNotFound},
		{"bad encoding", "/length", types.LengthRequest{Source: types.Source{Path: src.Path, Encoding: "nope"}}, http.StatusBadRequest},
		{"offset out of range", "/insert", types.InsertRequest{Source: src, Offset: 100, Text: "x"}, http.StatusUnprocessableEntity},
		{"bad range", "/substring", types.SubstringRequest{Source: src, Begin: 3, End: 1}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			if code := post(t, ts, tt.route, tt.body, &body); code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, code)
			}
			if body["error"] == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestServer_InvalidBody(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/split", "application/json", bytes.NewReader([]byte("{")))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}

	resp, _ = http.Get(ts.URL + "/trim")
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}

func TestServer_Runs(t *testing.T) {
	ts, src := newTestServer(t)

	post(t, ts, "/length", types.LengthRequest{Source: src}, nil)
	post(t, ts, "/case", types.CaseRequest{Source: src, Upper: true}, nil)

	resp, err := http.Get(ts.URL + "/runs?limit=10")
	if err != nil {
		t.Fatalf("GET /runs failed: %v", err)
	}
	var list struct {
		Runs []types.Run `json:"runs"`
	}
	json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()

	if len(list.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(list.Runs))
	}
	if list.Runs[0].Op != types.OpToUpper {
		t.Errorf("expected newest run first, got %s", list.Runs[0].Op)
	}

	resp, _ = http.Get(ts.URL + "/runs/" + list.Runs[1].ID)
	var run types.Run
	json.NewDecoder(resp.Body).Decode(&run)
	resp.Body.Close()
	if run.Op != types.OpLength || run.Result != "28" {
		t.Errorf("unexpected run %+v", run)
	}

	resp, _ = http.Get(ts.URL + "/runs/does-not-exist")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/runs", nil)
	resp, _ = http.DefaultClient.Do(req)
	var deleted map[string]int64
	json.NewDecoder(resp.Body).Decode(&deleted)
	resp.Body.Close()
	if deleted["deleted"] != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted["deleted"])
	}
}

func TestServer_StatsAndHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	var health map[string]string
	json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()
	if health["status"] != "ok" {
		t.Errorf("unexpected health %v", health)
	}

	resp, _ = http.Get(ts.URL + "/stats")
	var stats types.StatsResponse
	json.NewDecoder(resp.Body).Decode(&stats)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || stats.RunsByOp == nil {
		t.Errorf("unexpected stats %d %+v", resp.StatusCode, stats)
	}
}
