// Package api exposes the HTTP surface: PDF upload with reconciliation
// against the canonical table, and single-field updates back to it.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/discrepancy-api/internal/config"
	"github.com/sells-group/discrepancy-api/internal/extract"
	"github.com/sells-group/discrepancy-api/internal/model"
	"github.com/sells-group/discrepancy-api/internal/reconcile"
	"github.com/sells-group/discrepancy-api/internal/store"
)

const welcomeMessage = "Welcome to the Data Discrepancy Checker API"

// maxUploadBytes caps the multipart form size for /upload-pdf.
const maxUploadBytes = 32 << 20

// Server handles HTTP requests against the reconciliation core.
type Server struct {
	cfg       *config.Config
	store     store.Store
	extractor extract.Extractor
}

// NewServer creates a Server with its collaborators.
func NewServer(cfg *config.Config, st store.Store, ex extract.Extractor) *Server {
	return &Server{cfg: cfg, store: st, extractor: ex}
}

// Router builds the chi router with all routes and middleware registered.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/upload-pdf", s.handleUploadPDF)
	r.Post("/update-db", s.handleUpdateDB)

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": welcomeMessage})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// uploadResponse is the /upload-pdf payload. Summary serializes in report
// order.
type uploadResponse struct {
	CompanyName model.Value       `json:"company_name"`
	Summary     *reconcile.Report `json:"summary"`
}

func (s *Server) handleUploadPDF(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close() //nolint:errcheck

	// The inbound filename only selects a known document; the uploaded
	// bytes themselves are not read. Unknown names are rejected before any
	// gateway call.
	name := strings.ToLower(filepath.Base(header.Filename))
	docPath, ok := s.cfg.Documents[name]
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid filename provided")
		return
	}

	// Extraction and table load are independent; run them concurrently.
	var extracted *model.Record
	var table *model.Table

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		extracted, err = s.extractor.Extract(ctx, docPath)
		return err
	})
	g.Go(func() error {
		var err error
		table, err = s.store.LoadTable(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, extract.ErrDocumentNotFound) {
			writeError(w, http.StatusBadRequest, "document could not be read: "+name)
			return
		}
		zap.L().Error("upload: collaborator failure", zap.String("document", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to process document")
		return
	}

	keyField := s.cfg.KeyField
	keyValue, ok := extracted.Get(keyField)
	if !ok || keyValue == nil || keyValue == "" {
		writeError(w, http.StatusBadRequest, keyField+" not found in the PDF")
		return
	}

	storedRec := table.FindByKey(keyField, keyValue)
	if storedRec == nil {
		writeError(w, http.StatusNotFound, "No data found for company: "+model.FormatValue(keyValue))
		return
	}

	report := reconcile.Reconcile(storedRec, extracted)
	zap.L().Info("upload: reconciled",
		zap.String("document", name),
		zap.String("company", model.FormatValue(keyValue)),
		zap.Int("fields", report.Len()),
		zap.Int("mismatches", len(report.Mismatches())),
	)

	writeJSON(w, http.StatusOK, uploadResponse{CompanyName: keyValue, Summary: report})
}

func (s *Server) handleUpdateDB(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	company := r.Form.Get("company_name")
	field := r.Form.Get("field")
	if company == "" || field == "" {
		writeError(w, http.StatusBadRequest, "company_name and field are required")
		return
	}
	if !r.Form.Has("new_value") {
		writeError(w, http.StatusBadRequest, "new_value is required")
		return
	}

	// Values parse the same way table cells do, so a numeric update matches
	// the type a reload would produce. An empty new_value clears the field.
	keyValue := model.ParseValue(company)
	newValue := model.ParseValue(r.Form.Get("new_value"))

	table, err := s.store.LoadTable(r.Context())
	if err != nil {
		zap.L().Error("update: load table", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load database")
		return
	}

	if err := table.ApplyUpdate(s.cfg.KeyField, keyValue, field, newValue); err != nil {
		if errors.Is(err, model.ErrNoMatch) {
			writeError(w, http.StatusNotFound, "No data found for company: "+company)
			return
		}
		zap.L().Error("update: apply", zap.String("company", company), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to apply update")
		return
	}

	if err := s.store.SaveTable(r.Context(), table); err != nil {
		zap.L().Error("update: save table", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save database")
		return
	}

	zap.L().Info("update: applied",
		zap.String("company", company),
		zap.String("field", field),
	)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":       "updated",
		"company_name": company,
		"field":        field,
	})
}

// requestID tags every request with an operation ID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		zap.L().Debug("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
