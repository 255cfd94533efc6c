package handlers

import (
	"sync"

	"github.com/svemula/chatvector/internal/domain/messageModel"
	"github.com/svemula/chatvector/internal/rag"
	"github.com/svemula/chatvector/pkg/logger_i"
)

var (
	handlerInstance *PipelineHandler //private singleton
	once            sync.Once
	logRH           *logger_i.Logger
)

type PipelineHandler struct {
	service rag.Service
	history messageModel.HistoryStore
}

func InitPipelineHandler(service rag.Service, history messageModel.HistoryStore) {
	once.Do(func() {
		handlerInstance = &PipelineHandler{service: service, history: history}

		logRH = logger_i.NewLogger("RequestHandler")
		logRH.Info("Starting pipeline handler")
	})
}
