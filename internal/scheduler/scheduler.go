// internal/scheduler/scheduler.go
package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/adotepet/adotepet-backend/internal/services"
)

// Scheduler runs the periodic background jobs: the mock PIX provider confirms
// stale pending charges and expires the ones past their TTL.
type Scheduler struct {
	cron           *cron.Cron
	paymentService *services.PaymentService
}

func New(paymentService *services.PaymentService) *Scheduler {
	return &Scheduler{
		cron:           cron.New(),
		paymentService: paymentService,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 1m", s.runPaymentSweep); err != nil {
		return err
	}

	s.cron.Start()
	logrus.Info("Background scheduler started")
	return nil
}

// Stop waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logrus.Info("Background scheduler stopped")
}

func (s *Scheduler) runPaymentSweep() {
	if err := s.paymentService.AutoConfirmPending(); err != nil {
		logrus.Errorf("Payment sweep failed: %v", err)
	}
}
