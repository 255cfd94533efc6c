package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/svemula/chatvector/internal/config"
	"github.com/svemula/chatvector/internal/data/store"
	"github.com/svemula/chatvector/internal/handlers"
	"github.com/svemula/chatvector/internal/rag"
	"github.com/svemula/chatvector/internal/rag/chain"
	"github.com/svemula/chatvector/internal/rag/embedding/googleEmbedding"
	"github.com/svemula/chatvector/internal/rag/ingest"
	"github.com/svemula/chatvector/internal/rag/llm/gemini"
	"github.com/svemula/chatvector/internal/rag/llm/openaiLLM"
	"github.com/svemula/chatvector/internal/rag/sweeper"
	"github.com/svemula/chatvector/internal/rag/vectorDB/qdrantDB"
	"github.com/svemula/chatvector/internal/scheduler"
	"github.com/svemula/chatvector/internal/server"
	"github.com/svemula/chatvector/internal/tokens"
	"github.com/svemula/chatvector/pkg/logger_i"
)

var (
	listenAddr         string
	stopSchedulerChan  chan bool
	schedulerWaitGroup sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	stopSchedulerChan = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//backing datastore: message records + pending index + DM history
	messageStore := store.GetRedisMessageStore(serviceContext)
	historyStore := store.GetRedisHistoryStore(serviceContext)
	if messageStore == nil || historyStore == nil {
		logger.Error("Redis stores are offline. Shutting down.")
		return
	}

	vectorIndex, err := qdrantDB.NewQdrantIndex(serviceContext)
	if err != nil {
		logger.Error("Vector index failed to initialize. Shutting down.", "error", err)
		return
	}

	embedder, err := googleEmbedding.NewGoogleEmbedder(serviceContext, config.GoogleEmbeddingModel, os.Getenv("GOOGLE_API_KEY"))
	if err != nil {
		logger.Error("Embedding client failed to initialize. Shutting down.", "error", err)
		return
	}

	primary, err := gemini.NewGeminiClient(serviceContext, config.GeminiModelName, os.Getenv("GOOGLE_API_KEY"))
	if err != nil {
		logger.Error("Primary completion client failed to initialize. Shutting down.", "error", err)
		return
	}
	fallback := openaiLLM.NewFallbackClient(config.FallbackModelName, os.Getenv("OPENAI_API_KEY"))

	budgeter := tokens.NewBudgeter(config.TokenizerEncoding)
	engine := ingest.NewEngine(embedder, vectorIndex, ingest.DefaultEngineConfig())
	sw := sweeper.NewSweeper(messageStore, engine, config.SweepPageSize)
	completionChain := chain.NewChain(primary, fallback, budgeter, config.ContextTokenBudget)

	ragService := rag.NewService(vectorIndex, embedder, engine, sw, completionChain, messageStore)

	handlers.InitPipelineHandler(ragService, historyStore)

	//background cron-style sweeps
	scheduler.Start(ragService, config.SweepInterval, stopSchedulerChan, &schedulerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		SchedulerStop:    stopSchedulerChan,
		Group:            &schedulerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
