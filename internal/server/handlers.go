package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spacesedan/brandpulse/config"
	"github.com/spacesedan/brandpulse/internal/analysis"
	"github.com/spacesedan/brandpulse/internal/brand"
	"github.com/spacesedan/brandpulse/internal/jobs"
	"github.com/spacesedan/brandpulse/internal/models"
	"github.com/spacesedan/brandpulse/internal/monitoring"
	"github.com/spacesedan/brandpulse/internal/storage"
)

type handler struct {
	store  storage.Store
	jobs   *jobs.Manager
	limits config.LimitsConfig
	health *monitoring.Status
	now    func() time.Time
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Brand Sentiment Analysis API",
		"version": API_VERSION,
		"endpoints": []string{
			"GET /health - Server health check",
			"POST /analyze - Start brand analysis",
			"GET /jobs - List jobs",
			"GET /jobs/{job_id} - Check job status",
			"DELETE /jobs/{job_id} - Remove a finished job",
			"GET /results/{brand_name} - Get analysis results",
			"GET /results/{brand_name}/csv - Download CSV",
			"GET /results/{brand_name}/report - Get summary report",
			"GET /results/{brand_name}/insights - Get insights JSON",
			"GET /results/{brand_name}/visualizations - List visualizations",
		},
	})
}

// healthCheck stays 200 when a dependency is down so the API remains routable;
// the body reports which dependencies are degraded.
func (h *handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if len(h.health.Unhealthy()) > 0 {
		status = "degraded"
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":       status,
		"timestamp":    h.now().UTC().Format(time.RFC3339),
		"dependencies": h.health.Snapshot(),
	})
}

func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	brandName := strings.TrimSpace(req.BrandName)
	if brandName == "" {
		respondWithError(w, http.StatusBadRequest, "Brand name cannot be empty", nil)
		return
	}
	if err := brand.Validate(brandName); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid brand name", err)
		return
	}

	limits, err := h.resolveLimits(req.FetchLimits)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	exists, err := analysis.HasResults(r.Context(), h.store, brandName)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to check existing results", err)
		return
	}
	if exists {
		respondWithJSON(w, http.StatusOK, models.AnalyzeResponse{
			BrandName:   brandName,
			Status:      models.JobCompleted,
			Message:     "Analysis already exists for this brand",
			ResultsPath: storage.AnalysisPrefix(brand.Key(brandName)),
		})
		return
	}

	job, err := h.jobs.Submit(r.Context(), brandName, limits)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to start analysis", err)
		return
	}

	respondWithJSON(w, http.StatusAccepted, models.AnalyzeResponse{
		JobID:          job.JobID,
		BrandName:      brandName,
		Status:         job.Status,
		Message:        fmt.Sprintf("Analysis started for %s. Check status with /jobs/%s", brandName, job.JobID),
		CheckStatusURL: "/jobs/" + job.JobID,
	})
}

// resolveLimits fills omitted limits from configuration
func (h *handler) resolveLimits(in models.FetchLimits) (models.FetchLimits, error) {
	out := models.FetchLimits{
		SocialMax:   orDefault(in.SocialMax, h.limits.SocialMax),
		NewsMax:     orDefault(in.NewsMax, h.limits.NewsMax),
		RedditLimit: orDefault(in.RedditLimit, h.limits.RedditLimit),
	}
	if out.SocialMax < 0 || out.NewsMax < 0 || out.RedditLimit < 0 {
		return models.FetchLimits{}, errors.New("limits must not be negative")
	}
	return out, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func (h *handler) listJobs(w http.ResponseWriter, r *http.Request) {
	list, err := h.jobs.Store().List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list jobs", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"total_jobs": len(list),
		"jobs":       list,
	})
}

func (h *handler) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Store().Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, jobs.ErrJobNotFound) {
		respondWithError(w, http.StatusNotFound, "Job not found", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get job", err)
		return
	}
	respondWithJSON(w, http.StatusOK, job)
}

func (h *handler) deleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.jobs.Store().Delete(r.Context(), id)
	switch {
	case errors.Is(err, jobs.ErrJobNotFound):
		respondWithError(w, http.StatusNotFound, "Job not found", nil)
	case errors.Is(err, jobs.ErrJobNotTerminal):
		job, _ := h.jobs.Store().Get(r.Context(), id)
		respondWithError(w, http.StatusConflict, fmt.Sprintf("Job %s status: %s", id, job.Status), nil)
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, "Failed to delete job", err)
	default:
		respondWithJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Job %s removed", id)})
	}
}

// brandParam returns the decoded brand name and its storage key
func brandParam(w http.ResponseWriter, r *http.Request) (name, key string, ok bool) {
	name, err := url.PathUnescape(chi.URLParam(r, "brand"))
	if err == nil {
		err = brand.Validate(name)
	}
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid brand name", err)
		return "", "", false
	}
	return name, brand.Key(name), true
}

func (h *handler) results(w http.ResponseWriter, r *http.Request) {
	name, key, ok := brandParam(w, r)
	if !ok {
		return
	}

	exists, err := analysis.HasResults(r.Context(), h.store, name)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to check results", err)
		return
	}
	if !exists {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("No analysis found for %s. Run /analyze first.", name), nil)
		return
	}

	insights, found := h.read(w, r, storage.AnalysisKey(key, storage.InsightsJSON), "Insights file not found")
	if !found {
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"brand_name":   name,
		"results_path": storage.AnalysisPrefix(key),
		"insights":     json.RawMessage(insights),
	})
}

func (h *handler) csv(w http.ResponseWriter, r *http.Request) {
	name, key, ok := brandParam(w, r)
	if !ok {
		return
	}
	data, found := h.read(w, r, storage.AnalysisKey(key, storage.ResultsCSV), "CSV file not found")
	if !found {
		return
	}
	respondWithFile(w, "text/csv", fmt.Sprintf("%s_sentiment_analysis.csv", name), data)
}

func (h *handler) report(w http.ResponseWriter, r *http.Request) {
	name, key, ok := brandParam(w, r)
	if !ok {
		return
	}
	data, found := h.read(w, r, storage.AnalysisKey(key, storage.SummaryReport), "Report not found")
	if !found {
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"brand_name": name,
		"report":     string(data),
	})
}

func (h *handler) insights(w http.ResponseWriter, r *http.Request) {
	_, key, ok := brandParam(w, r)
	if !ok {
		return
	}
	data, found := h.read(w, r, storage.AnalysisKey(key, storage.InsightsJSON), "Insights not found")
	if !found {
		return
	}
	respondWithJSON(w, http.StatusOK, json.RawMessage(data))
}

func (h *handler) visualizations(w http.ResponseWriter, r *http.Request) {
	name, key, ok := brandParam(w, r)
	if !ok {
		return
	}

	keys, err := h.store.List(r.Context(), storage.AnalysisPrefix(key))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list results", err)
		return
	}
	if len(keys) == 0 {
		respondWithError(w, http.StatusNotFound, "Results directory not found", nil)
		return
	}

	images := []string{}
	for _, k := range keys {
		if path.Ext(k) == ".png" {
			images = append(images, path.Base(k))
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"brand_name":            name,
		"visualizations":        images,
		"download_url_template": fmt.Sprintf("/results/%s/visualization/{filename}", name),
	})
}

func (h *handler) visualization(w http.ResponseWriter, r *http.Request) {
	_, key, ok := brandParam(w, r)
	if !ok {
		return
	}

	filename := chi.URLParam(r, "filename")
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) || !strings.HasSuffix(filename, ".png") {
		respondWithError(w, http.StatusBadRequest, "Invalid filename", nil)
		return
	}

	data, found := h.read(w, r, storage.AnalysisKey(key, filename), "Visualization not found")
	if !found {
		return
	}
	respondWithFile(w, "image/png", filename, data)
}

// read fetches key, answering 404 with notFound when it is absent
func (h *handler) read(w http.ResponseWriter, r *http.Request, key, notFound string) ([]byte, bool) {
	data, err := h.store.Get(r.Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, notFound, nil)
		return nil, false
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to read results", err)
		return nil, false
	}
	return data, true
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil && code >= 500 {
		slog.Error("[HTTP] Request failed",
			slog.Int("code", code),
			slog.String("message", message),
			slog.String("error", err.Error()))
	}
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
