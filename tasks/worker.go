package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"
)

const (
	readCount = 10
	// handleTimeout bounds a message's status write and ack once the consumer is stopping.
	handleTimeout = 30 * time.Second
)

// Worker consumes the classification stream through a consumer group.
type Worker struct {
	rdb         *redis.Client
	handler     *Handler
	stream      string
	group       string
	consumer    string
	concurrency int
	block       time.Duration
	log         *slog.Logger
}

type WorkerConfig struct {
	Stream      string
	Group       string
	Consumer    string
	Concurrency int
	Block       time.Duration
}

func NewWorker(rdb *redis.Client, h *Handler, cfg WorkerConfig, log *slog.Logger) *Worker {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Block <= 0 {
		cfg.Block = 5 * time.Second
	}
	if cfg.Consumer == "" {
		cfg.Consumer = "worker"
	}
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		rdb:         rdb,
		handler:     h,
		stream:      cfg.Stream,
		group:       cfg.Group,
		consumer:    cfg.Consumer,
		concurrency: cfg.Concurrency,
		block:       cfg.Block,
		log:         log,
	}
}

// Setup creates the consumer group, and the stream with it, when missing.
func (w *Worker) Setup(ctx context.Context) error {
	err := w.rdb.XGroupCreateMkStream(ctx, w.stream, w.group, "0").Err()
	if err != nil {
		// Handle BUSYGROUP error (group already exists)
		if strings.Contains(err.Error(), "BUSYGROUP") {
			return nil
		}
		return fmt.Errorf("create consumer group: %w", err)
	}
	return nil
}

// Run starts the consumers and blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.Setup(ctx); err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		consumer := fmt.Sprintf("%s-%d", w.consumer, i)
		g.Go(func() error {
			w.consume(gCtx, consumer)
			return nil
		})
	}
	w.log.Info("Classification workers started", "stream", w.stream, "group", w.group, "concurrency", w.concurrency)

	err := g.Wait()
	w.log.Info("Classification workers stopped")
	return err
}

func (w *Worker) consume(ctx context.Context, consumer string) {
	if n, err := w.drainPending(ctx, consumer); err != nil {
		w.log.Error("Failed to reclaim pending classification messages", "consumer", consumer, "error", err)
	} else if n > 0 {
		w.log.Info("Reclaimed pending classification messages", "consumer", consumer, "count", n)
	}

	for ctx.Err() == nil {
		if _, err := w.poll(ctx, consumer, w.block); err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error("Failed to read classification stream", "consumer", consumer, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}
}

// ProcessAvailable handles whatever is already on the stream without blocking and
// returns the number of messages consumed. Messages delivered to this consumer earlier
// but never acked are handled first.
func (w *Worker) ProcessAvailable(ctx context.Context) (int, error) {
	total, err := w.drainPending(ctx, w.consumer)
	if err != nil {
		return total, err
	}
	for {
		n, err := w.poll(ctx, w.consumer, -1)
		total += n
		if err != nil || n == 0 {
			return total, err
		}
	}
}

// drainPending re-handles the messages in consumer's pending entries list, left there by
// a previous run that stopped between delivery and ack.
func (w *Worker) drainPending(ctx context.Context, consumer string) (int, error) {
	total := 0
	cursor := "0"
	for {
		msgs, err := w.read(ctx, consumer, cursor, -1)
		if err != nil {
			return total, err
		}
		if len(msgs) == 0 {
			return total, nil
		}
		for _, msg := range msgs {
			w.handle(ctx, msg)
			cursor = msg.ID
		}
		total += len(msgs)
	}
}

// poll reads one batch of new messages for consumer. A negative block returns
// immediately when empty.
func (w *Worker) poll(ctx context.Context, consumer string, block time.Duration) (int, error) {
	msgs, err := w.read(ctx, consumer, ">", block)
	if err != nil {
		return 0, err
	}
	for _, msg := range msgs {
		w.handle(ctx, msg)
	}
	return len(msgs), nil
}

func (w *Worker) read(ctx context.Context, consumer, start string, block time.Duration) ([]redis.XMessage, error) {
	streams, err := w.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    w.group,
		Consumer: consumer,
		Streams:  []string{w.stream, start},
		Count:    readCount,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var msgs []redis.XMessage
	for _, s := range streams {
		msgs = append(msgs, s.Messages...)
	}
	return msgs, nil
}

// handle finishes a delivered message even when ctx is already cancelled, so the task
// row and the ack are not lost at shutdown.
func (w *Worker) handle(ctx context.Context, msg redis.XMessage) {
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handleTimeout)
	defer cancel()

	task, err := taskFromValues(msg.Values)
	if err != nil {
		w.log.Error("Dropping classification message", "message_id", msg.ID, "error", err)
	} else if err := w.handler.Handle(hctx, task); err != nil {
		w.log.Error("Classification task failed", "task_id", task.ID, "title", task.Title, "error", err)
	}

	if err := w.rdb.XAck(hctx, w.stream, w.group, msg.ID).Err(); err != nil {
		w.log.Error("Failed to ack classification message", "message_id", msg.ID, "error", err)
	}
}
