package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/akolanti/DocQA/internal/api"
	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/data/blobStore"
	"github.com/akolanti/DocQA/internal/data/store"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/job"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	service *job.Service
	docs    *store.InMemoryDocumentStore
	router  *chi.Mux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	local, err := blobStore.NewFileStore(t.TempDir())
	require.NoError(t, err)

	docs := store.InitInMemoryDocumentStore()
	svc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          store.InitInMemoryJobStore(),
		DocumentStore:     docs,
		BlobStore:         blobStore.NewRouter(local, nil),
	}
	handlerInstance = &JobHandler{service: svc}

	r := chi.NewRouter()
	r.Get("/health", GetHandler)
	r.Post("/chat", ChatHandler)
	r.Get("/status/{id}", GetStatusHandler)
	r.Post("/documents", PostDocumentHandler)
	r.Get("/documents", ListDocumentsHandler)
	r.Get("/documents/{id}", GetDocumentHandler)
	return &testEnv{service: svc, docs: docs, router: r}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	req = req.WithContext(context.WithValue(req.Context(), config.TRACE_ID_KEY, "test-trace"))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type uploadPart struct {
	fileName    string
	contentType string
	body        []byte
	fields      map[string]string
}

func uploadRequest(t *testing.T, p uploadPart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range p.fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if p.fileName != "" {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="document"; filename="`+p.fileName+`"`)
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(p.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.JobResponse {
	t.Helper()
	var res api.JobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	require.NotNil(t, res.Error)
	return res
}

func TestPostDocumentHandler_Accepted(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(uploadRequest(t, uploadPart{
		fileName:    "contract.pdf",
		contentType: "application/pdf",
		body:        []byte("%PDF-1.4 fake"),
		fields:      map[string]string{"title": "Lease", "metadata": `{"team":"legal"}`},
	}))

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var res api.UploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "status/"+res.Id, res.StatusURL)

	doc, err := env.docs.Get(context.Background(), res.DocumentId)
	require.NoError(t, err)
	assert.Equal(t, commonModels.DocumentQueued, doc.Status)
	assert.Equal(t, "Lease", doc.Title)
	assert.Equal(t, "contract.pdf", doc.FileName)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.Equal(t, int64(len("%PDF-1.4 fake")), doc.Size)
	assert.Equal(t, map[string]string{"team": "legal"}, doc.Metadata)

	stored, err := env.service.BlobStore.Fetch(context.Background(), doc.Location)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), stored)

	queued := <-env.service.JobChannel
	assert.Equal(t, res.Id, queued.Id)
	assert.Equal(t, jobModel.JobTypeIngest, queued.JobType)
	assert.Equal(t, res.DocumentId, queued.JobPayload.DocumentId)
	assert.Equal(t, "test-trace", queued.TraceId)
	assert.Len(t, env.service.DispatcherChannel, 1, "ingest jobs always signal the dispatcher")

	status := env.do(httptest.NewRequest(http.MethodGet, "/status/"+res.Id, nil))
	assert.Equal(t, http.StatusOK, status.Code)
}

func TestPostDocumentHandler_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		part     uploadPart
		wantCode int
	}{
		{
			name:     "unsupported type",
			part:     uploadPart{fileName: "notes.txt", contentType: "text/plain", body: []byte("hello")},
			wantCode: http.StatusUnsupportedMediaType,
		},
		{
			name:     "legacy word format",
			part:     uploadPart{fileName: "notes.doc", contentType: "application/octet-stream", body: []byte("x")},
			wantCode: http.StatusUnsupportedMediaType,
		},
		{
			name:     "missing file",
			part:     uploadPart{fields: map[string]string{"title": "nothing"}},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "metadata is not an object of strings",
			part: uploadPart{fileName: "a.pdf", contentType: "application/pdf", body: []byte("%PDF-"),
				fields: map[string]string{"metadata": `{"pages": 3}`}},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(uploadRequest(t, tt.part))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Error.Code)
			docs, _ := env.docs.List(context.Background())
			assert.Empty(t, docs)
			assert.Empty(t, env.service.JobChannel)
		})
	}
}

func TestPostDocumentHandler_TooLarge(t *testing.T) {
	env := newTestEnv(t)
	previous := maxUploadSize
	maxUploadSize = 1024
	t.Cleanup(func() { maxUploadSize = previous })

	rec := env.do(uploadRequest(t, uploadPart{
		fileName: "big.pdf", contentType: "application/pdf", body: bytes.Repeat([]byte("a"), 4096),
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.service.JobChannel)
}

func TestPostDocumentHandler_GenericTypeUsesExtension(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(uploadRequest(t, uploadPart{
		fileName: "memo.docx", contentType: "application/octet-stream", body: []byte("PK\x03\x04"),
	}))

	require.Equal(t, http.StatusAccepted, rec.Code)
	var res api.UploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	doc, err := env.docs.Get(context.Background(), res.DocumentId)
	require.NoError(t, err)
	assert.Equal(t, "memo.docx", doc.Title)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", doc.MimeType)
}

func TestDocumentHandlers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.docs.Create(ctx, commonModels.Document{Id: "doc-1", Title: "One", Status: commonModels.DocumentReady}))
	require.NoError(t, env.docs.Create(ctx, commonModels.Document{Id: "doc-2", Title: "Two", Status: commonModels.DocumentError, ErrorMessage: "no extractable text"}))

	t.Run("get existing", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, "/documents/doc-2", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var doc api.DocumentResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&doc))
		assert.Equal(t, "error", doc.Status)
		assert.Equal(t, "no extractable text", doc.ErrorMessage)
	})

	t.Run("get missing", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, "/documents/ghost", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, "/documents", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var list api.DocumentListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
		require.Len(t, list.Documents, 2)
		assert.Equal(t, "doc-1", list.Documents[0].Id)
	})
}

func TestChatHandler(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"valid question", `{"message":"  What is the notice period? "}`, http.StatusAccepted},
		{"blank message", `{"message":"   "}`, http.StatusBadRequest},
		{"not json", `message=hi`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusAccepted {
				assert.Empty(t, env.service.JobChannel)
				return
			}
			var res api.InitJobResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
			queued := <-env.service.JobChannel
			assert.Equal(t, res.Id, queued.Id)
			assert.Equal(t, jobModel.JobTypeQuery, queued.JobType)
			assert.Equal(t, "What is the notice period?", queued.JobPayload.Question)
		})
	}
}

func TestGetStatusHandler(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.service.JobStore.SaveJob(context.Background(), jobModel.Job{
		Id: "job-1", JobType: jobModel.JobTypeQuery, Status: jobModel.JobStatusComplete,
		JobPayload: jobModel.JobPayload{Question: "q", Answer: "a", Sources: []string{"doc-1#2"}},
	}))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/status/job-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var res api.JobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	require.NotNil(t, res.Result.RAGExternalResponse)
	assert.Equal(t, []string{"doc-1#2"}, res.Result.RAGExternalResponse.Sources)

	missing := env.do(httptest.NewRequest(http.MethodGet, "/status/nope", nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "Job not found", decodeError(t, missing).Error.Message)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}
