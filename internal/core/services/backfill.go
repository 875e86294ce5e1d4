package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/kbuild/internal/core/domain"
	"github.com/custodia-labs/kbuild/internal/core/ports/driven"
	"github.com/custodia-labs/kbuild/internal/core/ports/driving"
	"github.com/custodia-labs/kbuild/internal/logger"
)

// Ensure BackfillService implements the interface.
var _ driving.Backfiller = (*BackfillService)(nil)

// BackfillService attaches embeddings to every chunk row that lacks one.
//
// Each row is committed as soon as its vector arrives, so an aborted run
// keeps its progress and the next run resumes with the remaining rows.
type BackfillService struct {
	store    driven.ChunkStore
	runs     driven.RunStore
	embedder driven.EmbeddingService

	workers          int
	progress         driving.ProgressFunc
	progressInterval int

	newRunID func() string
	now      func() time.Time
}

// BackfillOption configures a BackfillService.
type BackfillOption func(*BackfillService)

// WithWorkers sets how many embedding requests may be in flight at once.
// Values below 1 are ignored. With 1 worker rows are embedded strictly in
// id order.
func WithWorkers(n int) BackfillOption {
	return func(s *BackfillService) {
		if n >= 1 {
			s.workers = n
		}
	}
}

// WithProgress registers fn to be called every interval committed rows and
// once more when a table completes.
func WithProgress(fn driving.ProgressFunc, interval int) BackfillOption {
	return func(s *BackfillService) {
		s.progress = fn
		if interval >= 1 {
			s.progressInterval = interval
		}
	}
}

// NewBackfillService creates a new backfill service.
// runs may be nil, in which case runs are not recorded.
func NewBackfillService(
	store driven.ChunkStore,
	runs driven.RunStore,
	embedder driven.EmbeddingService,
	opts ...BackfillOption,
) *BackfillService {
	s := &BackfillService{
		store:            store,
		runs:             runs,
		embedder:         embedder,
		workers:          domain.DefaultBackfillWorkers,
		progressInterval: domain.DefaultProgressInterval,
		newRunID:         uuid.NewString,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run embeds all pending rows, discussion posts first, then documents.
// The first failure stops the run; rows committed before it stay embedded.
// The returned report is non-nil even when an error is returned.
func (s *BackfillService) Run(ctx context.Context) (*domain.BackfillReport, error) {
	report := &domain.BackfillReport{
		RunID:     s.newRunID(),
		StartedAt: s.now(),
	}

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, report); err != nil {
			return report, fmt.Errorf("record run: %w", err)
		}
	}

	logger.Section("Embedding backfill")
	logger.Info("Run %s using model %s", report.RunID, s.embedder.ModelName())

	pinged := false
	var runErr error
	for _, kind := range domain.SourceKinds() {
		progress, err := s.backfillKind(ctx, kind, &pinged)
		report.Kinds = append(report.Kinds, progress)
		if err != nil {
			report.FailedKind = kind
			runErr = fmt.Errorf("backfill %s: %w", kind, err)
			break
		}
	}

	report.FinishedAt = s.now()
	if runErr != nil {
		report.Error = runErr.Error()
		logger.Error("%v (%d rows embedded before failure)", runErr, report.Embedded())
	} else {
		logger.Info("Embedded %d rows", report.Embedded())
	}

	if s.runs != nil {
		// The run's own error takes precedence over failing to log it.
		if err := s.runs.SaveRun(context.WithoutCancel(ctx), report); err != nil {
			logger.Warn("failed to record run %s: %v", report.RunID, err)
		}
	}

	return report, runErr
}

// backfillKind embeds every pending row of one table.
func (s *BackfillService) backfillKind(
	ctx context.Context,
	kind domain.SourceKind,
	pinged *bool,
) (domain.KindProgress, error) {
	progress := domain.KindProgress{Kind: kind}

	pending, err := s.store.FetchUnembedded(ctx, kind)
	if err != nil {
		return progress, fmt.Errorf("fetch pending rows: %w", err)
	}
	progress.Pending = len(pending)

	logger.Info("%s: %d rows to embed", kind.Description(), len(pending))
	if len(pending) == 0 {
		return progress, nil
	}

	if !*pinged {
		if err := s.embedder.Ping(ctx); err != nil {
			return progress, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		*pinged = true
	}

	if s.workers > 1 {
		err = s.embedConcurrently(ctx, kind, pending, &progress)
	} else {
		err = s.embedSequentially(ctx, kind, pending, &progress)
	}
	return progress, err
}

// embedSequentially runs request, commit, next in ascending id order.
func (s *BackfillService) embedSequentially(
	ctx context.Context,
	kind domain.SourceKind,
	pending []domain.PendingChunk,
	progress *domain.KindProgress,
) error {
	for _, row := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.embedRow(ctx, kind, row); err != nil {
			return err
		}
		progress.Embedded++
		s.report(kind, progress.Embedded, progress.Pending)
	}
	return nil
}

// embedConcurrently runs up to s.workers rows at a time on a bounded pool.
// Each row still commits on its own. The first failure cancels rows that
// have not started; rows already embedded are kept. Progress callbacks are
// serialised.
func (s *BackfillService) embedConcurrently(
	ctx context.Context,
	kind domain.SourceKind,
	pending []domain.PendingChunk,
	progress *domain.KindProgress,
) error {
	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for _, row := range pending {
		row := row // per-iteration copy for the pool closure (go < 1.22 loop semantics)
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if err := s.embedRow(ctx, kind, row); err != nil {
				fail(err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			progress.Embedded++
			s.report(kind, progress.Embedded, progress.Pending)
		})
		if submitErr != nil {
			wg.Done()
			fail(fmt.Errorf("submit row %d: %w", row.ID, submitErr))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	// Parent cancellation with no row failure.
	return ctx.Err()
}

// embedRow requests one vector and commits it.
func (s *BackfillService) embedRow(ctx context.Context, kind domain.SourceKind, row domain.PendingChunk) error {
	vector, err := s.embedder.Embed(ctx, row.Content)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrEmbeddingService) {
			return fmt.Errorf("row %d: %w", row.ID, err)
		}
		return fmt.Errorf("row %d: %w: %w", row.ID, domain.ErrEmbeddingService, err)
	}

	// A vector in hand is committed even if the run was cancelled meanwhile.
	if err := s.store.SetEmbedding(context.WithoutCancel(ctx), kind, row.ID, vector); err != nil {
		return fmt.Errorf("store row %d: %w", row.ID, err)
	}

	logger.Debug("%s row %d embedded (%d dims)", kind, row.ID, len(vector))
	return nil
}

// report calls the progress callback at the configured interval.
func (s *BackfillService) report(kind domain.SourceKind, done, total int) {
	if s.progress == nil {
		return
	}
	if done%s.progressInterval == 0 || done == total {
		s.progress(kind, done, total)
	}
}

// Status reports per-table counts and the last recorded run.
func (s *BackfillService) Status(ctx context.Context) (*driving.StoreStatus, error) {
	status := &driving.StoreStatus{}

	for _, kind := range domain.SourceKinds() {
		stats, err := s.store.Stats(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("count %s rows: %w", kind, err)
		}
		status.Kinds = append(status.Kinds, stats)
	}

	if s.runs != nil {
		last, err := s.runs.LastRun(ctx)
		switch {
		case err == nil:
			status.LastRun = last
		case errors.Is(err, domain.ErrNotFound):
		default:
			return nil, fmt.Errorf("read last run: %w", err)
		}
	}

	return status, nil
}
