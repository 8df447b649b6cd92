package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Type      string            `json:"type,omitempty" example:"Query"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type RAGResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
}

type IngestResponse struct {
	DocumentId      string `json:"document_id" example:"3f6c..."`
	SectionsWritten int    `json:"sections_written" example:"12"`
	ChunksSkipped   int    `json:"chunks_skipped" example:"0"`
}

type Result struct {
	Status                 string          `json:"status"`
	RAGExternalResponse    *RAGResponse    `json:"rag_response,omitempty"`
	IngestExternalResponse *IngestResponse `json:"ingest_response,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type UploadResponse struct {
	Id          string `json:"id" example:"job_cz109"`
	DocumentId  string `json:"document_id"`
	StatusURL   string `json:"status_url" example:"status/job_cz109"`
	DocumentURL string `json:"document_url" example:"documents/3f6c..."`
}

type DocumentResponse struct {
	Id           string            `json:"id"`
	Title        string            `json:"title"`
	FileName     string            `json:"file_name"`
	MimeType     string            `json:"mime_type" example:"application/pdf"`
	Size         int64             `json:"size"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Status       string            `json:"status" example:"ready"`
	ErrorMessage string            `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

// requests---------------------

type ChatRequest struct {
	Message string `json:"message" validate:"required" example:"What is the notice period?"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}
