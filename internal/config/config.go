package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5
	RateLimitEvictionInterval   = 10 * time.Minute

	//ingestion pipeline
	IngestBatchSize     = 5
	MaxEmbedRetries     = 3
	EmbedRetryDelay     = 1 * time.Second
	InterBatchDelay     = 2 * time.Second
	SweepPageSize       = 50
	EmbedCallsPerSecond = 4 //provider quota headroom
	EmbedCallBurst      = 5

	//retrieval
	SearchTopK            = 8
	CacheSimilarityCutoff = float32(0.97)

	//token budgeting
	ContextTokenBudget = 4000
	HistoryTokenBudget = 2000
	TruncationEllipsis = "..."
	TokenizerEncoding  = "cl100k_base"

	//vector index
	EmbeddingDimensionality int32 = 1536
	MessageIndexName              = "chat-messages"
	SemanticCacheIndexName        = "answer-cache"
	QdrantHost                    = ""
	QdrantGrpcPort                = 6334
	QdrantUseTLS                  = false
	QdrantPoolSize                = 1

	//models
	GoogleEmbeddingModel = "gemini-embedding-001"
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	FallbackModelName    = "gpt-4o-mini"
	FallbackTemperature  = 0.2

	ModelContext = "You are a helpful team-chat assistant. Answer using only the provided message context and cite nothing you cannot see. If you don't know the answer, say you don't know."

	//prompt used when the primary model tier failed and we retry conservatively
	FallbackPrompt = "Something went wrong while answering. Answer the question conservatively and briefly."

	//fixed reply when both completion tiers are down
	ApologyAnswer = "Sorry, I couldn't generate an answer right now. Please try again in a moment."

	//per-call network timeouts
	EmbedCallTimeout      = 15 * time.Second
	VectorCallTimeout     = 15 * time.Second
	CompletionCallTimeout = 60 * time.Second

	//scheduler
	SweepInterval = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 120 * time.Second //long enough for streamed answers
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword = ""

	//redis has 16 DBs we can use
	RedisMessageDB = 0
	RedisHistoryDB = 1

	RedisHistoryTTL = 24 * time.Hour

	//DM history window handed to the chain (turns, pre token-budget)
	DMHistoryWindow = 10
)
