package webserve

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/schema"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	dataDir := t.TempDir()
	cfg := &contract.Config{
		DataDir:        dataDir,
		ScanConfigPath: filepath.Join(dataDir, schema.ConfigFileName),
		StaticDir:      dataDir,
		TrustedRoot:    dataDir,
		Host:           contract.DefaultHost,
		Port:           contract.DefaultPort,
	}
	return New(cfg, nil, nil)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body []byte, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestHandleScanSingleFlight(t *testing.T) {
	srv := testServer(t)

	release := make(chan struct{})
	started := make(chan struct{})
	srv.scan = func(_ context.Context, cfg *contract.Config, _ contract.GitClient, _ contract.HistoryStore) (*schema.Report, error) {
		close(started)
		<-release
		fmt.Fprintln(cfg.Progress(), "scan output line")
		return &schema.Report{}, nil
	}
	h := srv.Handler()

	var first map[string]string
	rec := doJSON(t, h, http.MethodGet, "/api/scan", nil, &first)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "started", first["status"])
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	<-started

	var second map[string]string
	rec = doJSON(t, h, http.MethodGet, "/api/scan", nil, &second)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_running", second["status"])

	close(release)
	waitForIdle(t, srv)

	var log runState
	rec = doJSON(t, h, http.MethodGet, "/api/log", nil, &log)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, log.RunID)
	assert.True(t, log.Success)
	assert.Contains(t, log.Log, "scan output line")
	assert.NotEmpty(t, log.Finished)
}

func TestScanRunsOnConfigSnapshot(t *testing.T) {
	srv := testServer(t)
	srv.cfg.ScanDirs = []string{filepath.Join(srv.cfg.TrustedRoot, "original")}
	srv.cfg.BroadScanDepth = 4

	release := make(chan struct{})
	started := make(chan struct{})
	var seenDirs []string
	var seenDepth int
	srv.scan = func(_ context.Context, cfg *contract.Config, _ contract.GitClient, _ contract.HistoryStore) (*schema.Report, error) {
		close(started)
		<-release
		seenDirs = cfg.ScanDirs
		seenDepth = cfg.BroadScanDepth
		return &schema.Report{}, nil
	}
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/api/scan", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	<-started

	// A settings update landing mid-run must not reach the running scan
	updated := filepath.Join(srv.cfg.TrustedRoot, "updated")
	payload, err := json.Marshal(configDocument{
		InceptionDate:  "2025-01-01",
		ScanDirs:       []string{updated},
		BroadScanDepth: 9,
	})
	require.NoError(t, err)
	rec = doJSON(t, h, http.MethodPut, "/api/config", payload, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	close(release)
	waitForIdle(t, srv)

	assert.Equal(t, []string{filepath.Join(srv.cfg.TrustedRoot, "original")}, seenDirs)
	assert.Equal(t, 4, seenDepth)

	// The next run picks up the update
	assert.Equal(t, []string{updated}, srv.cfg.ScanDirs)
	assert.Equal(t, 9, srv.cfg.BroadScanDepth)
}

func TestHandleScanFailureRecordedInLog(t *testing.T) {
	srv := testServer(t)
	srv.scan = func(context.Context, *contract.Config, contract.GitClient, contract.HistoryStore) (*schema.Report, error) {
		return nil, errors.New("no commits found across 0 repositories")
	}
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/api/scan", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	waitForIdle(t, srv)

	var log runState
	doJSON(t, h, http.MethodGet, "/api/log", nil, &log)
	assert.False(t, log.Success)
	assert.Contains(t, log.Log, "no commits found")
}

func TestHandleStatus(t *testing.T) {
	srv := testServer(t)
	h := srv.Handler()

	var doc statusDocument
	rec := doJSON(t, h, http.MethodGet, "/api/status", nil, &doc)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, doc.ScanRunning)
	assert.Nil(t, doc.LastScan)
	assert.Nil(t, doc.TotalCommits)

	report := schema.Report{Generated: "2026-08-29T10:00:00", TotalCommits: 1234}
	raw, err := json.Marshal(report)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(srv.cfg.DataDir, schema.DataFileName), raw, 0o644))

	doJSON(t, h, http.MethodGet, "/api/status", nil, &doc)
	require.NotNil(t, doc.LastScan)
	assert.Equal(t, "2026-08-29T10:00:00", *doc.LastScan)
	require.NotNil(t, doc.TotalCommits)
	assert.Equal(t, 1234, *doc.TotalCommits)
}

func TestHandleConfigGetDefaults(t *testing.T) {
	srv := testServer(t)
	h := srv.Handler()

	var doc configDocument
	rec := doJSON(t, h, http.MethodGet, "/api/config", nil, &doc)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, schema.DefaultInceptionDate, doc.InceptionDate)
	assert.Equal(t, schema.DefaultBroadScanDepth, doc.BroadScanDepth)
	assert.Empty(t, doc.ScanDirs)
}

func TestHandleConfigPutRoundTrip(t *testing.T) {
	srv := testServer(t)
	h := srv.Handler()

	scanDir := filepath.Join(srv.cfg.TrustedRoot, "repos")
	payload, err := json.Marshal(configDocument{
		InceptionDate:  "2025-01-01",
		ScanDirs:       []string{scanDir},
		BroadScanRoot:  srv.cfg.TrustedRoot,
		BroadScanDepth: 2,
		SkipPatterns:   []string{"archive"},
	})
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodPut, "/api/config", payload, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Persisted file carries the update
	raw, err := os.ReadFile(srv.cfg.ScanConfigPath)
	require.NoError(t, err)
	var file schema.ScanFileConfig
	require.NoError(t, json.Unmarshal(raw, &file))
	assert.Equal(t, "2025-01-01", file.Goal.InceptionDate)
	assert.Equal(t, []string{scanDir}, file.Repos.ScanDirs)
	require.NotNil(t, file.Repos.BroadScan.MaxDepth)
	assert.Equal(t, 2, *file.Repos.BroadScan.MaxDepth)

	// Running config is updated too
	assert.Equal(t, []string{scanDir}, srv.cfg.ScanDirs)
	assert.Equal(t, 2, srv.cfg.BroadScanDepth)
	assert.Equal(t, []string{"archive"}, srv.cfg.SkipPatterns)

	// GET reads the update back
	var doc configDocument
	doJSON(t, h, http.MethodGet, "/api/config", nil, &doc)
	assert.Equal(t, "2025-01-01", doc.InceptionDate)
	assert.Equal(t, []string{scanDir}, doc.ScanDirs)
}

func TestHandleConfigPutPreservesOtherSections(t *testing.T) {
	srv := testServer(t)
	h := srv.Handler()

	threshold := 200
	seed := schema.ScanFileConfig{}
	seed.Scoring.LargeSourceThreshold = &threshold
	raw, err := json.MarshalIndent(seed, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(srv.cfg.ScanConfigPath, raw, 0o644))

	payload, err := json.Marshal(configDocument{InceptionDate: "2025-01-01", BroadScanDepth: 1})
	require.NoError(t, err)
	rec := doJSON(t, h, http.MethodPut, "/api/config", payload, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := os.ReadFile(srv.cfg.ScanConfigPath)
	require.NoError(t, err)
	var file schema.ScanFileConfig
	require.NoError(t, json.Unmarshal(got, &file))
	require.NotNil(t, file.Scoring.LargeSourceThreshold)
	assert.Equal(t, 200, *file.Scoring.LargeSourceThreshold)
}

func TestHandleConfigPutRejections(t *testing.T) {
	srv := testServer(t)
	h := srv.Handler()

	cases := []struct {
		name string
		doc  configDocument
		want string
	}{
		{"bad date", configDocument{InceptionDate: "January 1st", BroadScanDepth: 1}, "invalid inception_date"},
		{"bad depth", configDocument{InceptionDate: "2025-01-01", BroadScanDepth: 0}, "broad_scan_depth"},
		{
			"dir escapes root",
			configDocument{InceptionDate: "2025-01-01", BroadScanDepth: 1, ScanDirs: []string{filepath.Join(srv.cfg.TrustedRoot, "..", "outside")}},
			"outside the trusted root",
		},
		{
			"broad root escapes root",
			configDocument{InceptionDate: "2025-01-01", BroadScanDepth: 1, BroadScanRoot: "/etc"},
			"outside the trusted root",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			payload, err := json.Marshal(c.doc)
			require.NoError(t, err)
			var resp map[string]string
			rec := doJSON(t, h, http.MethodPut, "/api/config", payload, &resp)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, resp["error"], c.want)

			// A rejected update never touches the file
			_, statErr := os.Stat(srv.cfg.ScanConfigPath)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestStaticFiles(t *testing.T) {
	srv := testServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(srv.cfg.StaticDir, "index.html"), []byte("<h1>dashboard</h1>"), 0o644))
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dashboard")
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
}

func TestTailBufferBounded(t *testing.T) {
	var buf tailBuffer
	line := strings.Repeat("x", 1024)
	for range 100 {
		_, err := buf.Write([]byte(line))
		require.NoError(t, err)
	}
	assert.Equal(t, logBufferCap, len(buf.String()))
}

func waitForIdle(t *testing.T, srv *Server) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		srv.mu.Lock()
		idle := !srv.running
		srv.mu.Unlock()
		if idle {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("scan never finished")
}
