package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/discrepancy-api/internal/config"
	"github.com/sells-group/discrepancy-api/internal/extract"
	"github.com/sells-group/discrepancy-api/internal/model"
)

type stubStore struct {
	table   *model.Table
	loadErr error
	saveErr error
	saved   *model.Table
}

func (s *stubStore) LoadTable(ctx context.Context) (*model.Table, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.table, nil
}

func (s *stubStore) SaveTable(ctx context.Context, t *model.Table) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = t
	return nil
}

func (s *stubStore) Close() error { return nil }

type stubExtractor struct {
	record *model.Record
	err    error
	path   string
}

func (e *stubExtractor) Extract(ctx context.Context, pdfPath string) (*model.Record, error) {
	e.path = pdfPath
	if e.err != nil {
		return nil, e.err
	}
	return e.record, nil
}

func testConfig() *config.Config {
	return &config.Config{
		KeyField: "Company Name",
		Documents: map[string]string{
			"healthinc.pdf": "assets/healthinc.pdf",
			"retailco.pdf":  "assets/retailco.pdf",
		},
	}
}

func testTable() *model.Table {
	rec := model.NewRecord()
	rec.Set("Company Name", "HealthInc")
	rec.Set("Industry", "Healthcare")
	rec.Set("Revenue (in millions)", float64(912))
	return &model.Table{Records: []*model.Record{rec}}
}

func multipartBody(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 stub"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestRootReturnsWelcome(t *testing.T) {
	srv := NewServer(testConfig(), &stubStore{table: testTable()}, &stubExtractor{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Welcome to the Data Discrepancy Checker API", body["message"])
}

func TestUploadPDFReconciles(t *testing.T) {
	extracted := model.NewRecord()
	extracted.Set("Company Name", "HealthInc")
	extracted.Set("Industry", "Health Services")
	extracted.Set("Revenue (in millions)", float64(912))

	ex := &stubExtractor{record: extracted}
	srv := NewServer(testConfig(), &stubStore{table: testTable()}, ex)

	body, contentType := multipartBody(t, "HealthInc.PDF")
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	// Filename lookup is case-insensitive.
	assert.Equal(t, "assets/healthinc.pdf", ex.path)

	var resp struct {
		CompanyName string                    `json:"company_name"`
		Summary     map[string]map[string]any `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "HealthInc", resp.CompanyName)

	industry := resp.Summary["Industry"]
	require.NotNil(t, industry)
	assert.Equal(t, "Healthcare", industry["database"])
	assert.Equal(t, "Health Services", industry["pdf"])
	assert.Equal(t, false, industry["match"])

	revenue := resp.Summary["Revenue (in millions)"]
	require.NotNil(t, revenue)
	assert.Equal(t, true, revenue["match"])
}

func TestUploadPDFUnknownFilename(t *testing.T) {
	ex := &stubExtractor{}
	srv := NewServer(testConfig(), &stubStore{table: testTable()}, ex)

	body, contentType := multipartBody(t, "unknown.pdf")
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	// Rejected before any extraction happens.
	assert.Empty(t, ex.path)
}

func TestUploadPDFMissingFilePart(t *testing.T) {
	srv := NewServer(testConfig(), &stubStore{table: testTable()}, &stubExtractor{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "healthinc.pdf"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadPDFNoStoredRecord(t *testing.T) {
	extracted := model.NewRecord()
	extracted.Set("Company Name", "GhostCorp")

	srv := NewServer(testConfig(), &stubStore{table: testTable()}, &stubExtractor{record: extracted})

	body, contentType := multipartBody(t, "healthinc.pdf")
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "GhostCorp")
}

func TestUploadPDFKeyFieldMissing(t *testing.T) {
	extracted := model.NewRecord()
	extracted.Set("Industry", "Healthcare")

	srv := NewServer(testConfig(), &stubStore{table: testTable()}, &stubExtractor{record: extracted})

	body, contentType := multipartBody(t, "healthinc.pdf")
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadPDFDocumentNotFound(t *testing.T) {
	ex := &stubExtractor{err: eris.Wrap(extract.ErrDocumentNotFound, "stub")}
	srv := NewServer(testConfig(), &stubStore{table: testTable()}, ex)

	body, contentType := multipartBody(t, "healthinc.pdf")
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadPDFStoreFailure(t *testing.T) {
	extracted := model.NewRecord()
	extracted.Set("Company Name", "HealthInc")

	st := &stubStore{loadErr: eris.New("disk gone")}
	srv := NewServer(testConfig(), st, &stubExtractor{record: extracted})

	body, contentType := multipartBody(t, "healthinc.pdf")
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func updateForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/update-db", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestUpdateDBAppliesAndPersists(t *testing.T) {
	st := &stubStore{table: testTable()}
	srv := NewServer(testConfig(), st, &stubExtractor{})

	req := updateForm(url.Values{
		"company_name": {"HealthInc"},
		"field":        {"Industry"},
		"new_value":    {"Health Services"},
	})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, st.saved)

	got := st.saved.FindByKey("Company Name", "HealthInc")
	require.NotNil(t, got)
	v, _ := got.Get("Industry")
	assert.Equal(t, "Health Services", v)
}

func TestUpdateDBParsesNumericValue(t *testing.T) {
	st := &stubStore{table: testTable()}
	srv := NewServer(testConfig(), st, &stubExtractor{})

	req := updateForm(url.Values{
		"company_name": {"HealthInc"},
		"field":        {"Revenue (in millions)"},
		"new_value":    {"1050"},
	})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	got := st.saved.FindByKey("Company Name", "HealthInc")
	require.NotNil(t, got)
	v, _ := got.Get("Revenue (in millions)")
	assert.Equal(t, float64(1050), v)
}

func TestUpdateDBUnknownCompany(t *testing.T) {
	st := &stubStore{table: testTable()}
	srv := NewServer(testConfig(), st, &stubExtractor{})

	req := updateForm(url.Values{
		"company_name": {"GhostCorp"},
		"field":        {"Industry"},
		"new_value":    {"Nothing"},
	})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	// Nothing was persisted.
	assert.Nil(t, st.saved)
}

func TestUpdateDBMissingParams(t *testing.T) {
	srv := NewServer(testConfig(), &stubStore{table: testTable()}, &stubExtractor{})

	req := updateForm(url.Values{"company_name": {"HealthInc"}})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateDBSaveFailure(t *testing.T) {
	st := &stubStore{table: testTable(), saveErr: eris.New("readonly fs")}
	srv := NewServer(testConfig(), st, &stubExtractor{})

	req := updateForm(url.Values{
		"company_name": {"HealthInc"},
		"field":        {"Industry"},
		"new_value":    {"Health Services"},
	})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
