package config

import "time"

const (
	TRACE_ID_KEY          = "traceId"
	RATE_LIMIT_PER_SECOND = 2
	BURST_RATE_LIMIT      = 5
	CacheSimilarityCutoff = 0.97

	//must match the embedding model output, qdrant and pgvector collections are created with it
	EmbeddingOutputDimensionality int32 = 1536
	SectionCollectionName               = "document-sections"
	SemanticCacheCollectionName         = "semantic-cache"

	//chunking
	DefaultMaxChunkSize = 300

	//reading order
	PDFLineTolerance   = 2.5
	PDFPageTimeout     = 10 * time.Second
	NoContextAnswer    = "I could not find any relevant information in the uploaded documents."
	MaxUploadSizeBytes = 32 << 20

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	JobTimeout                      = 5 * time.Minute
	AskTimeout                      = 30 * time.Second

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 45 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantHost     = "localhost"
	QdrantGrpcPort = 6334
	QdrantUseTLS   = false
	QdrantPoolSize = 1

	//llm
	GeminiModelName      = "gemini-2.5-flash-lite"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIChatModel      = "gpt-4o-mini"
	OpenAIEmbeddingModel = "text-embedding-3-small"

	ModelTemperature float32 = 0.3
	ModelContext             = "You are a helpful assistant answering questions about the user's uploaded documents. " +
		"Only use the provided context. If the context does not contain the answer, say you don't know."

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	RedisAddr = "127.0.0.1:6379"

	//redis has 16 DB we can use
	RedisJobStore      = 0
	RedisDocumentStore = 1

	RedisJobStoreTTL = 24 * time.Hour

	//blob storage
	BlobRoot = "temporary_data"
)

// Retrieval tiers, tried in order until one returns a match.
var (
	TierOneTopK   = 8
	TierTwoTopK   = 12
	TierThreeTopK = 20

	TierTwoThreshold   float32 = 0.3
	TierThreeThreshold float32 = 0.2
)
