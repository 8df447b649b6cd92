package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DocQA/internal/adapter"
	"github.com/akolanti/DocQA/internal/adapter/utils"
	"github.com/akolanti/DocQA/internal/api"
	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/rag/extract"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

var (
	logRH         = logger_i.NewLogger("RequestHandler")
	maxUploadSize = int64(config.MaxUploadSizeBytes)
)

type newJobData struct {
	id               string
	message          string
	traceId          string
	isDocumentIngest bool
	documentId       string
}

// GetHandler godoc
// @Summary      Health check
// @Tags         Health
// @Success      200
// @Router       /health [get]
func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ChatHandler godoc
// @Summary      Ask a question about the uploaded documents
// @Description  Accepts a question, queues a background query job, and returns a job ID to track status.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest      true  "Question"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request", "remote", request.RemoteAddr)
		return
	}

	var requestData api.ChatRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the Chat handler reader", "error", err)
		}
	}(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !ValidateChatRequest(requestData) {
		logRH.Warn("Bad Chat Request", "error", err, "traceId", traceIdFrom(request.Context()))
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}

	newJob := processNewJobData(request, strings.TrimSpace(requestData.Message), "")
	CreateNewJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a query or ingestion job using its ID.
// @Tags         Job Status
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	result, isFound := validateId(idString, traceIdFrom(r.Context()))

	logRH.Debug("Get Status Request", "URL path", r.URL.Path)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// PostDocumentHandler handles the uploading of PDF or DOCX documents for ingestion.
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, stores it, registers a queued document and queues an ingestion job.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        document  formData  file    true   "The PDF or DOCX file to upload"
// @Param        title     formData  string  false  "Display title, defaults to the file name"
// @Param        metadata  formData  string  false  "JSON object of string tags"
// @Success      202  {object}  api.UploadResponse "Accepted"
// @Failure      400  {object}  api.JobResponse "Bad Request - Missing fields or file too large"
// @Failure      415  {object}  api.JobResponse "Unsupported document type"
// @Failure      500  {object}  api.JobResponse "Internal Server Error - Storage or Write Error"
// @Router       /documents [post]
func PostDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request", "remote", r.RemoteAddr)
		return
	}
	log := logRH.With("traceId", traceIdFrom(r.Context()))

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Warn("Rejected upload", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "document is required")
		return
	}
	defer fileReader.Close()

	mimeType := uploadMimeType(fileMetadata)
	if !extract.Supported(mimeType) {
		WriteErrorResponse(w, http.StatusUnsupportedMediaType, fileMetadata.Filename, "Only PDF and DOCX documents are supported")
		return
	}

	metadata, err := parseMetadata(r.FormValue("metadata"))
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, fileMetadata.Filename, "metadata must be a JSON object of strings")
		return
	}

	fileName := filepath.Base(fileMetadata.Filename)
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = fileName
	}

	location, size, err := SaveDocumentBinary(r.Context(), fileName, fileReader)
	if err != nil {
		log.Error("Could not store document", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, fileName, "Storage error")
		return
	}

	now := time.Now().UTC()
	doc := commonModels.Document{
		Id:        utils.GetNewUUID(),
		Title:     title,
		FileName:  fileName,
		MimeType:  mimeType,
		Size:      size,
		Location:  location,
		Metadata:  metadata,
		Status:    commonModels.DocumentQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := CreateDocument(r.Context(), doc); err != nil {
		log.Error("Could not register document", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, fileName, "Storage error")
		return
	}
	log.Info("Document accepted", "documentId", doc.Id, "mimeType", mimeType, "size", size)

	newJob := processNewJobData(r, "", doc.Id)
	CreateNewJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToUploadResponse(newJob.id, doc.Id))
}

// GetDocumentHandler godoc
// @Summary      Get a document
// @Description  Returns the document record, including its ingestion status.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentResponse
// @Failure      404  {object}  api.JobResponse "Document not found"
// @Router       /documents/{id} [get]
func GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	doc, err := GetDocument(r.Context(), id)
	switch {
	case errors.Is(err, commonModels.ErrDocumentNotFound):
		WriteErrorResponse(w, http.StatusNotFound, id, "Document not found")
	case err != nil:
		logRH.Error("Could not read document", "documentId", id, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, id, "Storage error")
	default:
		writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(doc))
	}
}

// ListDocumentsHandler godoc
// @Summary      List documents
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.DocumentListResponse
// @Router       /documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	docs, err := ListDocuments(r.Context())
	if err != nil {
		logRH.Error("Could not list documents", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage error")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(docs))
}
