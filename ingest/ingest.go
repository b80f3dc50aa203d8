// Package ingest polls a text file of "PART_ID,QTY" lines and feeds parsed
// requests into the queue as one atomic batch per poll.
package ingest

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"warebot/inventory"
	"warebot/logfile"
	"warebot/request"
)

// RequestProcessingError fails a whole ingest batch. It wraps the parse or
// I/O error that caused the failure.
type RequestProcessingError struct {
	Path string
	Err  error
}

func (e *RequestProcessingError) Error() string {
	return fmt.Sprintf("process request file %s: %v", e.Path, e.Err)
}

func (e *RequestProcessingError) Unwrap() error { return e.Err }

// Emitter receives ingest events.
type Emitter interface {
	EmitRequestQueued(req request.Request, source string)
	EmitBatchLoaded(batchID string, count int)
}

// Ingester owns the polling loop. A failed batch is dropped and the next
// interval starts fresh; the ingester itself never stops on a bad file.
type Ingester struct {
	path     string
	interval time.Duration
	inv      *inventory.Inventory
	queue    *request.Queue
	logger   *logfile.Logger
	emitter  Emitter
}

func New(path string, interval time.Duration, inv *inventory.Inventory, queue *request.Queue, logger *logfile.Logger, emitter Emitter) *Ingester {
	return &Ingester{
		path:     path,
		interval: interval,
		inv:      inv,
		queue:    queue,
		logger:   logger,
		emitter:  emitter,
	}
}

// Run polls the request file until ctx is cancelled.
func (i *Ingester) Run(ctx context.Context) {
	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := i.LoadOnce(); err != nil {
				i.logf("batch dropped: %v", err)
			}
		}
	}
}

// LoadOnce reads, parses and consumes the request file. On success the file
// is truncated and all parsed requests are queued in one batch; the number
// of queued requests is returned. A missing file is a quiet no-op.
func (i *Ingester) LoadOnce() (int, error) {
	data, err := os.ReadFile(i.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, &RequestProcessingError{Path: i.path, Err: err}
	}

	var batch []request.Request
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 2 {
			i.logf("invalid request line: %q", line)
			continue
		}
		partID := strings.TrimSpace(fields[0])
		qty, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return 0, &RequestProcessingError{Path: i.path, Err: err}
		}
		part, ok := i.inv.FindByID(partID)
		if !ok {
			i.logf("unknown part id in request file: %s", partID)
			continue
		}
		req, err := request.New(part, qty)
		if err != nil {
			return 0, &RequestProcessingError{Path: i.path, Err: err}
		}
		batch = append(batch, req)
	}

	if len(data) > 0 {
		if err := os.Truncate(i.path, 0); err != nil {
			return 0, &RequestProcessingError{Path: i.path, Err: err}
		}
	}

	if len(batch) == 0 {
		return 0, nil
	}

	i.queue.OfferBatch(batch)
	batchID := uuid.New().String()
	if i.emitter != nil {
		for _, req := range batch {
			i.emitter.EmitRequestQueued(req, "file")
		}
		i.emitter.EmitBatchLoaded(batchID, len(batch))
	}
	i.logf("loaded %d requests from %s (batch %s)", len(batch), i.path, batchID[:8])
	return len(batch), nil
}

func (i *Ingester) logf(format string, args ...any) {
	if i.logger != nil {
		i.logger.Printf(format, args...)
	}
}
