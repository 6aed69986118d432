package webserve

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/schema"
)

// statusDocument is the /api/status payload. Report fields are null
// until a first scan completes.
type statusDocument struct {
	ScanRunning  bool    `json:"scan_running"`
	LastScan     *string `json:"last_scan"`
	TotalCommits *int    `json:"total_commits"`
}

// configDocument is the editable scan settings subset exchanged over
// /api/config.
type configDocument struct {
	InceptionDate  string   `json:"inception_date"`
	ScanDirs       []string `json:"scan_dirs"`
	BroadScanRoot  string   `json:"broad_scan_root"`
	BroadScanDepth int      `json:"broad_scan_depth"`
	SkipPatterns   []string `json:"skip_patterns"`
}

func writeJSONStatus(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		contract.LogWarn("could not encode response", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSONStatus(w, code, map[string]string{"error": msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	doc := statusDocument{ScanRunning: s.running}
	s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.cfg.DataDir, schema.DataFileName))
	if err == nil {
		var report schema.Report
		if err := json.Unmarshal(data, &report); err == nil {
			doc.LastScan = &report.Generated
			doc.TotalCommits = &report.TotalCommits
		}
	}

	writeJSONStatus(w, http.StatusOK, doc)
}

func (s *Server) handleConfigGet(w http.ResponseWriter, _ *http.Request) {
	file, err := s.loadScanFile()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	doc := configDocument{
		InceptionDate:  file.Goal.InceptionDate,
		ScanDirs:       file.Repos.ScanDirs,
		BroadScanRoot:  file.Repos.BroadScan.Root,
		BroadScanDepth: schema.DefaultBroadScanDepth,
		SkipPatterns:   file.Repos.SkipPatterns,
	}
	if doc.InceptionDate == "" {
		doc.InceptionDate = schema.DefaultInceptionDate
	}
	if file.Repos.BroadScan.MaxDepth != nil {
		doc.BroadScanDepth = *file.Repos.BroadScan.MaxDepth
	}
	if doc.ScanDirs == nil {
		doc.ScanDirs = []string{}
	}
	if doc.SkipPatterns == nil {
		doc.SkipPatterns = []string{}
	}

	writeJSONStatus(w, http.StatusOK, doc)
}

func (s *Server) handleConfigPut(w http.ResponseWriter, r *http.Request) {
	var doc configDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid config payload: %v", err))
		return
	}

	inception, err := schema.ParseISODate(doc.InceptionDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid inception_date %q", doc.InceptionDate))
		return
	}
	if doc.BroadScanDepth < 1 {
		writeError(w, http.StatusBadRequest, "broad_scan_depth must be at least 1")
		return
	}

	resolvedDirs := make([]string, 0, len(doc.ScanDirs))
	for _, dir := range doc.ScanDirs {
		resolved, err := contract.ResolveUnderRoot(s.cfg.TrustedRoot, dir)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		resolvedDirs = append(resolvedDirs, resolved)
	}
	resolvedRoot := ""
	if doc.BroadScanRoot != "" {
		if resolvedRoot, err = contract.ResolveUnderRoot(s.cfg.TrustedRoot, doc.BroadScanRoot); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	// Merge onto the existing file so scoring and rubric sections survive
	file, err := s.loadScanFile()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	file.Goal.InceptionDate = doc.InceptionDate
	file.Repos.ScanDirs = resolvedDirs
	file.Repos.BroadScan.Root = resolvedRoot
	depth := doc.BroadScanDepth
	file.Repos.BroadScan.MaxDepth = &depth
	file.Repos.SkipPatterns = doc.SkipPatterns

	if err := s.saveScanFile(file); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Keep the running server consistent with what it just persisted
	s.mu.Lock()
	s.cfg.InceptionDate = inception
	s.cfg.ScanDirs = resolvedDirs
	s.cfg.BroadScanRoot = resolvedRoot
	s.cfg.BroadScanDepth = doc.BroadScanDepth
	s.cfg.SkipPatterns = doc.SkipPatterns
	s.mu.Unlock()

	writeJSONStatus(w, http.StatusOK, map[string]string{"status": "saved"})
}

// loadScanFile reads the scan settings file. A missing file reads as
// the zero config so defaults apply.
func (s *Server) loadScanFile() (schema.ScanFileConfig, error) {
	var file schema.ScanFileConfig
	data, err := os.ReadFile(s.cfg.ScanConfigPath)
	if os.IsNotExist(err) {
		return file, nil
	}
	if err != nil {
		return file, fmt.Errorf("reading scan config: %w", err)
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("parsing scan config: %w", err)
	}
	return file, nil
}

// saveScanFile persists the settings atomically: write a sibling temp
// file, then rename over the original.
func (s *Server) saveScanFile(file schema.ScanFileConfig) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding scan config: %w", err)
	}
	tmp := s.cfg.ScanConfigPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing scan config: %w", err)
	}
	if err := os.Rename(tmp, s.cfg.ScanConfigPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing scan config: %w", err)
	}
	return nil
}
