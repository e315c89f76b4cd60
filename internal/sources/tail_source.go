package sources

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nxadm/tail"

	"access-insights/internal/ingestors"
	"access-insights/internal/shared/loggers"
)

// TailSource follows a local access log and feeds it through intake in
// timed flushes, so a host can ship its own log without an HTTP client.
// Each flush becomes one batch with a generated batch ID.
type TailSource struct {
	path          string
	flushInterval time.Duration
	intake        ingestors.IntakeService
	logger        loggers.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewTailSource(path string, flushInterval time.Duration, intake ingestors.IntakeService, logger loggers.Logger) *TailSource {
	return &TailSource{
		path:          path,
		flushInterval: flushInterval,
		intake:        intake,
		logger:        logger,
		stopCh:        make(chan struct{}),
	}
}

func (s *TailSource) Start(ctx context.Context) error {
	tailer, err := tail.TailFile(s.path, tail.Config{
		Follow:    true,
		ReOpen:    true, // Handle log rotation
		MustExist: false,
		Poll:      true, // Fallback if inotify fails
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { _ = tailer.Stop() }()

		s.run(ctx, tailer)
	}()
	return nil
}

func (s *TailSource) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *TailSource) run(ctx context.Context, tailer *tail.Tail) {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	var pending []string
	for {
		select {
		case <-ctx.Done():
			s.flush(context.WithoutCancel(ctx), &pending)
			return
		case <-s.stopCh:
			s.flush(ctx, &pending)
			return
		case line, ok := <-tailer.Lines:
			if !ok {
				s.flush(ctx, &pending)
				return
			}
			if line.Err != nil {
				s.logger.Warn().Err(line.Err).Str("path", s.path).Msg("tail read error")
				continue
			}
			pending = append(pending, line.Text)
		case <-ticker.C:
			s.flush(ctx, &pending)
		}
	}
}

func (s *TailSource) flush(ctx context.Context, pending *[]string) {
	if len(*pending) == 0 {
		return
	}
	lines := *pending
	*pending = nil

	ctx = s.logger.WithContext(ctx)
	result, err := s.intake.IngestBatch(ctx, "", strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		s.logger.Error().Err(err).Int("lines", len(lines)).Msg("tail source batch rejected")
		return
	}
	s.logger.Debug().
		Str(loggers.FieldBatchID, result.BatchID).
		Int("lines", result.LineCount).
		Msg("tail source batch ingested")
}
