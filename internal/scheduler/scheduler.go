package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/svemula/chatvector/internal/adapter/utils"
	"github.com/svemula/chatvector/internal/config"
	"github.com/svemula/chatvector/internal/rag"
	"github.com/svemula/chatvector/pkg/logger_i"
)

var logger *logger_i.Logger

// Start launches the cron-style sweep loop: one pass over pending messages
// per interval. Sweeps are idempotent, so a pass that overlaps a manual
// /sweep call wastes embedding work at worst.
func Start(service rag.Service, interval time.Duration, stopChan chan bool, waitGroup *sync.WaitGroup) {
	logger = logger_i.NewLogger("SweepScheduler")
	if interval <= 0 {
		interval = config.SweepInterval
	}

	waitGroup.Add(1)
	go run(service, interval, stopChan, waitGroup)
	logger.Info("Sweep scheduler started", "interval", interval)
}

func run(service rag.Service, interval time.Duration, stopChan chan bool, waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sweepOnce(service)

		case <-stopChan:
			logger.Info("Sweep scheduler stopping")
			return
		}
	}
}

func sweepOnce(service rag.Service) {
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, utils.GetNewUUID())

	processed, err := service.ProcessPendingMessages(ctx)
	if err != nil {
		logger.Error("Scheduled sweep failed", "error", err)
		return
	}
	if processed > 0 {
		logger.Info("Scheduled sweep done", "processed", processed)
	}
}
