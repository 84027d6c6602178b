package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/region23/voicegender/internal/audio"
	"github.com/region23/voicegender/internal/classify"
	"github.com/region23/voicegender/internal/config"
	"github.com/region23/voicegender/internal/metrics"
	"github.com/region23/voicegender/internal/preprocess"
)

// maxUploadBytes bounds multipart uploads to the /classify endpoint.
const maxUploadBytes = 256 << 20 // 256 MiB

// Classifier runs one classification over an audio file on disk.
type Classifier interface {
	Run(ctx context.Context, inputPath string) (*classify.Result, error)
}

// HTTPServer provides the HTTP API for classification and monitoring.
type HTTPServer struct {
	server     *http.Server
	logger     *slog.Logger
	config     *config.Config
	classifier Classifier
	metrics    *metrics.Metrics

	startTime time.Time

	mu       sync.Mutex
	statsRec statsRecord
}

// statsRecord accumulates per-process classification counters.
type statsRecord struct {
	Completed int64 `json:"completed"`
	Male      int64 `json:"male"`
	Female    int64 `json:"female"`
	Failed    int64 `json:"failed"`
}

// NewHTTPServer creates the HTTP API server. A nil metrics value disables
// instrumentation of the handlers.
func NewHTTPServer(cfg config.HTTPConfig, logger *slog.Logger,
	appConfig *config.Config, classifier Classifier, m *metrics.Metrics) *HTTPServer {

	h := &HTTPServer{
		logger:     logger,
		config:     appConfig,
		classifier: classifier,
		metrics:    m,
		startTime:  time.Now(),
	}

	mux := http.NewServeMux()
	h.setupRoutes(mux)

	h.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Minute, // uploads and demucs runs are slow
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return h
}

// Handler exposes the routed handler for tests.
func (h *HTTPServer) Handler() http.Handler {
	return h.server.Handler
}

// setupRoutes configures HTTP API routes
func (h *HTTPServer) setupRoutes(mux *http.ServeMux) {
	// Classification endpoint
	mux.HandleFunc("/classify", h.withMetrics("/classify", h.handleClassify))

	// Health check endpoint
	mux.HandleFunc("/health", h.withMetrics("/health", h.handleHealth))

	// Configuration endpoint
	mux.HandleFunc("/config", h.withMetrics("/config", h.handleConfig))

	// Statistics endpoint
	mux.HandleFunc("/stats", h.withMetrics("/stats", h.handleStats))

	// Prometheus metrics endpoint (no metrics needed for metrics endpoint)
	mux.Handle("/metrics", promhttp.Handler())

	// Root endpoint with API documentation
	mux.HandleFunc("/", h.withMetrics("/", h.handleRoot))
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		// Create a response writer wrapper to capture status code
		ww := &responseWriter{ResponseWriter: w, statusCode: 200}

		handler(ww, r)

		if h.metrics == nil {
			return
		}

		duration := time.Since(startTime).Seconds()
		statusCode := fmt.Sprintf("%d", ww.statusCode)

		h.metrics.RecordHTTPRequest(r.Method, endpoint, statusCode, duration)

		if ww.statusCode >= 400 {
			errorType := "client_error"
			if ww.statusCode >= 500 {
				errorType = "server_error"
			}
			h.metrics.RecordHTTPError(r.Method, endpoint, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server
func (h *HTTPServer) Start() error {
	h.logger.Info("Starting HTTP API server",
		slog.String("address", h.server.Addr),
	)

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping HTTP API server...")

	return h.server.Shutdown(ctx)
}

// classifyRequest is the JSON body of a path-based classification request.
type classifyRequest struct {
	Path string `json:"path"`
}

// handleClassify implements the /classify endpoint. It accepts either a
// JSON body naming a server-local file or a multipart upload under the
// "file" field.
func (h *HTTPServer) handleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)

	inputPath, cleanup, err := h.resolveInput(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	defer cleanup()

	h.logger.Info("Classification requested",
		slog.String("request_id", requestID),
		slog.String("input", inputPath),
	)

	result, err := h.classifier.Run(r.Context(), inputPath)
	if err != nil {
		h.recordFailure()
		h.logger.Error("Classification failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		h.writeError(w, classifyStatus(err), err)
		return
	}

	h.recordResult(result)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// resolveInput extracts the audio file location from the request, saving
// multipart uploads to a scratch file. The returned cleanup removes any
// scratch file and is safe to call unconditionally.
func (h *HTTPServer) resolveInput(r *http.Request) (string, func(), error) {
	noop := func() {}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return "", noop, fmt.Errorf("Content-Type header required")
	}

	if strings.HasPrefix(contentType, "application/json") {
		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", noop, fmt.Errorf("invalid request body: %w", err)
		}
		if req.Path == "" {
			return "", noop, fmt.Errorf("path is required")
		}
		if _, err := os.Stat(req.Path); err != nil {
			return "", noop, fmt.Errorf("audio file not accessible: %w", err)
		}
		return req.Path, noop, nil
	}

	// Anything else is treated as a multipart upload.
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", noop, fmt.Errorf("failed to parse upload: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", noop, fmt.Errorf("file field is required: %w", err)
	}
	defer file.Close()

	ext := filepath.Ext(header.Filename)
	uploadPath := filepath.Join(os.TempDir(), "voicegender-upload-"+uuid.NewString()+ext)

	out, err := os.Create(uploadPath)
	if err != nil {
		return "", noop, fmt.Errorf("failed to store upload: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(uploadPath)
		return "", noop, fmt.Errorf("failed to store upload: %w", err)
	}

	return uploadPath, func() { os.Remove(uploadPath) }, nil
}

// classifyStatus maps classification errors to HTTP status codes. Unusable
// input is the client's problem; everything else is the server's.
func classifyStatus(err error) int {
	switch {
	case errors.Is(err, audio.ErrEmptyAudio),
		errors.Is(err, audio.ErrSilence),
		errors.Is(err, audio.ErrZeroAmplitude),
		errors.Is(err, classify.ErrNoValidChunks):
		return http.StatusUnprocessableEntity
	default:
		var preErr *preprocess.Error
		if errors.As(err, &preErr) {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}
}

func (h *HTTPServer) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (h *HTTPServer) recordResult(result *classify.Result) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.statsRec.Completed++
	if result.Label == classify.Male {
		h.statsRec.Male++
	} else {
		h.statsRec.Female++
	}
}

func (h *HTTPServer) recordFailure() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.statsRec.Failed++
}

// handleHealth implements the /health endpoint
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(h.startTime)

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    uptime.String(),
		"service": map[string]interface{}{
			"name":    "voicegender",
			"version": "1.0.0",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleConfig implements the /config endpoint
func (h *HTTPServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sanitizedConfig := map[string]interface{}{
		"audio": map[string]interface{}{
			"sample_rate":        h.config.Audio.SampleRate,
			"window_seconds":     h.config.Audio.WindowSeconds,
			"hop_seconds":        h.config.Audio.HopSeconds,
			"frame_seconds":      h.config.Audio.FrameSeconds,
			"frame_step_seconds": h.config.Audio.FrameStepSeconds,
			"min_voiced_f0":      h.config.Audio.MinVoicedF0,
			"max_voiced_f0":      h.config.Audio.MaxVoicedF0,
		},
		"scoring": map[string]interface{}{
			"strong_male_f0_min": h.config.Scoring.StrongMaleF0Min,
			"strong_male_f0_max": h.config.Scoring.StrongMaleF0Max,
			"weak_male_f0_max":   h.config.Scoring.WeakMaleF0Max,
			"female_f0_max":      h.config.Scoring.FemaleF0Max,
			"centroid_cutoff":    h.config.Scoring.CentroidCutoff,
			"zcr_cutoff":         h.config.Scoring.ZCRCutoff,
		},
		"preprocess": map[string]interface{}{
			"demucs_model":    h.config.Preprocess.DemucsModel,
			"target_loudness": h.config.Preprocess.TargetLoudness,
			"loudness_range":  h.config.Preprocess.LoudnessRange,
			"true_peak":       h.config.Preprocess.TruePeak,
			// Note: tool paths are intentionally omitted
		},
		"logging": map[string]interface{}{
			"level":  h.config.Logging.Level,
			"format": h.config.Logging.Format,
			"output": h.config.Logging.Output,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sanitizedConfig)
}

// handleStats implements the /stats endpoint
func (h *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.mu.Lock()
	rec := h.statsRec
	h.mu.Unlock()

	stats := map[string]interface{}{
		"uptime":          time.Since(h.startTime).String(),
		"timestamp":       time.Now().UTC(),
		"classifications": rec,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// handleRoot implements the / endpoint with API documentation
func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	apiDoc := map[string]interface{}{
		"service": "Voice Gender Classification Service",
		"version": "1.0.0",
		"endpoints": map[string]interface{}{
			"POST /classify": "Classify an audio file (JSON path or multipart upload)",
			"GET /health":    "Service health check",
			"GET /config":    "Get service configuration",
			"GET /stats":     "Get service statistics",
			"GET /metrics":   "Prometheus metrics",
		},
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apiDoc)
}
