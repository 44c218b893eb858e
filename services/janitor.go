package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/addisbingo/bingo-backend/game"
	"github.com/addisbingo/bingo-backend/ledger"
	"github.com/addisbingo/bingo-backend/utils/logger"
)

// Janitor runs the periodic cleanups: finished sessions are pruned from the
// in-memory registry once archived, and deposit requests that never saw a
// matching payment are failed after their TTL.
type Janitor struct {
	cron     *cron.Cron
	registry *game.Registry
	ledger   *ledger.Service

	depositTTL time.Duration
	sessionTTL time.Duration
}

func NewJanitor(registry *game.Registry, ldg *ledger.Service, depositTTL, sessionTTL time.Duration) *Janitor {
	return &Janitor{
		cron:       cron.New(),
		registry:   registry,
		ledger:     ldg,
		depositTTL: depositTTL,
		sessionTTL: sessionTTL,
	}
}

func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc("@every 10m", j.run); err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

func (j *Janitor) Stop() {
	j.cron.Stop()
}

func (j *Janitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if n := j.registry.PruneFinished(j.sessionTTL); n > 0 {
		logger.Infof("[Janitor] pruned %d finished sessions (%d live)", n, j.registry.Len())
	}
	if _, err := j.ledger.ExpireStaleDeposits(ctx, j.depositTTL); err != nil {
		logger.Errorf("[Janitor] expiring pending deposits: %v", err)
	}
}
