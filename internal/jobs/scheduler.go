// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание ночной сверки журнала кармы.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/edu-engagement/internal/features/ledger"
)

// Reconciler сверяет кешированные балансы с журналом.
type Reconciler interface {
	Reconcile(ctx context.Context) ([]ledger.Drift, error)
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron          *cron.Cron
	reconciler    Reconciler
	reconcileSpec string
	timeout       time.Duration
}

// NewScheduler создаёт планировщик задач в часовом поясе loc.
func NewScheduler(reconciler Reconciler, reconcileSpec string, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.FixedZone("MSK", 3*60*60)
	}
	return &Scheduler{
		cron:          cron.New(cron.WithLocation(loc)),
		reconciler:    reconciler,
		reconcileSpec: reconcileSpec,
		timeout:       5 * time.Minute,
	}
}

// Start регистрирует задачи и запускает cron.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.reconcileSpec, func() { s.RunReconcile(ctx) }); err != nil {
		return fmt.Errorf("некорректное расписание сверки %q: %w", s.reconcileSpec, err)
	}

	s.cron.Start()
	log.WithField("reconcile", s.reconcileSpec).Info("Планировщик задач запущен")
	return nil
}

// RunReconcile выполняет одну сверку. Расхождения логирует сам Reconciler.
func (s *Scheduler) RunReconcile(ctx context.Context) {
	log.Info("[CRON] Сверка журнала кармы")

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	drifts, err := s.reconciler.Reconcile(ctx)
	if err != nil {
		log.WithError(err).Error("[CRON] Ошибка сверки")
		return
	}
	if len(drifts) > 0 {
		log.WithField("drifts", len(drifts)).Error("[CRON] Найдены расхождения баланса и журнала")
	}
}

// Stop останавливает планировщик и ждёт завершения текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
