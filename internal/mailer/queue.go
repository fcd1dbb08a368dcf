package mailer

import (
	"context"
	"log/slog"
	"sync"
)

const (
	defaultQueueSize = 256
	maxAttempts      = 3
)

type taskKind int

const (
	taskSigningLink taskKind = iota
	taskCompleted
)

type task struct {
	kind         taskKind
	to           []string
	name         string
	link         string
	documentName string
	sender       string
	pdf          []byte
	attempts     int
}

// Queue processes notification dispatch on a background worker so sending
// never sits on a request's critical path. Failed tasks are re-queued up to
// a bounded number of attempts.
type Queue struct {
	dispatcher Dispatcher
	tasks      chan task
	logger     *slog.Logger

	mu      sync.Mutex
	started bool
	done    chan struct{}
}

// NewQueue creates a queue over the given dispatcher.
func NewQueue(dispatcher Dispatcher, size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Queue{
		dispatcher: dispatcher,
		tasks:      make(chan task, size),
		logger:     logger.With("system", "mail-queue"),
	}
}

// Start launches the worker. Starting an already-running queue is a no-op.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true
	q.done = make(chan struct{})

	go q.worker()
	q.logger.Info("mail queue started")
}

// Stop closes the queue and waits for in-flight tasks to drain.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.started = false
	q.mu.Unlock()

	close(q.tasks)
	<-q.done
	q.logger.Info("mail queue stopped")
}

// EnqueueSigningLink queues a signing-link notification. A full queue drops
// the task and reports false.
func (q *Queue) EnqueueSigningLink(to, name, link, documentName, sender string) bool {
	return q.enqueue(task{
		kind:         taskSigningLink,
		to:           []string{to},
		name:         name,
		link:         link,
		documentName: documentName,
		sender:       sender,
	})
}

// EnqueueCompleted queues delivery of the final signed PDF to all parties.
func (q *Queue) EnqueueCompleted(to []string, documentName string, pdf []byte, sender string) bool {
	return q.enqueue(task{
		kind:         taskCompleted,
		to:           to,
		documentName: documentName,
		pdf:          pdf,
		sender:       sender,
	})
}

func (q *Queue) enqueue(t task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.started {
		q.logger.Warn("task dropped: queue not running", "document", t.documentName)
		return false
	}

	select {
	case q.tasks <- t:
		return true
	default:
		q.logger.Warn("task dropped: queue full", "document", t.documentName)
		return false
	}
}

func (q *Queue) worker() {
	defer close(q.done)

	for t := range q.tasks {
		q.process(t)
	}
}

func (q *Queue) process(t task) {
	ctx := context.Background()

	var err error
	switch t.kind {
	case taskSigningLink:
		err = q.dispatcher.SendSigningLink(ctx, t.to[0], t.name, t.link, t.documentName, t.sender)
	case taskCompleted:
		err = q.dispatcher.SendCompleted(ctx, t.to, t.documentName, t.pdf, t.sender)
	}
	if err == nil {
		return
	}

	t.attempts++
	if t.attempts >= maxAttempts {
		q.logger.Error("mail task abandoned",
			"document", t.documentName, "attempts", t.attempts, "error", err)
		return
	}

	q.logger.Warn("mail task retrying",
		"document", t.documentName, "attempt", t.attempts, "error", err)

	// Requeue through enqueue so a stopped queue's closed channel is never
	// written to.
	if !q.enqueue(t) {
		q.logger.Error("mail task dropped on retry", "document", t.documentName)
	}
}
