package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driven"
)

const (
	// Stream names
	taskStream       = "docpii:scans"
	taskGroup        = "docpii:workers"
	deadLetterStream = "docpii:scans:dead"

	// Key prefixes
	taskKeyPrefix = "docpii:task:"

	// Default consumer name prefix
	consumerPrefix = "worker-"

	// messageKeyTTL bounds how long a delivered message ID is remembered for Ack/Nack
	messageKeyTTL = 24 * time.Hour

	// claimTimeout is how long a delivery may stay unacknowledged before another worker takes it over
	claimTimeout = 5 * time.Minute

	// abandonedReason is recorded on tasks dead-lettered after their worker disappeared
	abandonedReason = "abandoned by worker"
)

// Verify interface compliance
var _ driven.TaskQueue = (*Queue)(nil)

// Queue implements TaskQueue using Redis Streams.
// The task is carried in the stream entry itself; the consumer group
// tracks delivery and the message ID is kept under docpii:task:<id>:msg
// until the task is acknowledged.
type Queue struct {
	client       *redis.Client
	consumerName string
}

// NewQueue creates a new Redis-backed task queue.
// The consumerName should be unique per worker instance (e.g., hostname + PID).
func NewQueue(ctx context.Context, client *redis.Client, consumerName string) (*Queue, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if consumerName == "" {
		consumerName = fmt.Sprintf("%s%d", consumerPrefix, time.Now().UnixNano())
	}

	q := &Queue{
		client:       client,
		consumerName: consumerName,
	}

	// Create consumer group if it doesn't exist
	err := q.client.XGroupCreateMkStream(ctx, taskStream, taskGroup, "0").Err()
	if err != nil && !isGroupExistsError(err) {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return q, nil
}

// Enqueue adds a task to the stream.
func (q *Queue) Enqueue(ctx context.Context, task *domain.ScanTask) error {
	if task == nil {
		return errors.New("task is required")
	}
	if err := q.add(ctx, q.client, taskStream, task); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// DequeueWithTimeout reads the next task for this consumer, waiting up to timeout seconds.
// A timeout of 0 blocks until a task arrives or ctx is cancelled.
// Deliveries abandoned by other consumers are taken over before new entries are read.
func (q *Queue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.ScanTask, error) {
	task, err := q.claimAbandonedTask(ctx)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("failed to claim abandoned task: %w", err)
	}
	if task != nil {
		return task, nil
	}

	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    taskGroup,
		Consumer: q.consumerName,
		Streams:  []string{taskStream, ">"},
		Count:    1,
		Block:    time.Duration(timeout) * time.Second,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // No tasks available
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from stream: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, nil
	}

	msg := streams[0].Messages[0]
	task, err = decodeTask(msg)
	if err != nil {
		// Unreadable entry, acknowledge and skip
		q.client.XAck(ctx, taskStream, taskGroup, msg.ID)
		q.client.XDel(ctx, taskStream, msg.ID)
		return nil, nil
	}

	task.Attempts++
	if err := q.client.Set(ctx, taskKeyPrefix+task.ID+":msg", msg.ID, messageKeyTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to record message id: %w", err)
	}

	return task, nil
}

// Ack acknowledges successful completion of a task.
func (q *Queue) Ack(ctx context.Context, task *domain.ScanTask) error {
	msgID, err := q.messageID(ctx, task.ID)
	if err != nil {
		return err
	}

	pipe := q.client.Pipeline()
	if msgID != "" {
		pipe.XAck(ctx, taskStream, taskGroup, msgID)
		pipe.XDel(ctx, taskStream, msgID)
	}
	pipe.Del(ctx, taskKeyPrefix+task.ID+":msg")

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to ack task: %w", err)
	}
	return nil
}

// Nack acknowledges the current delivery and either re-adds the task
// to the stream or moves it to the dead-letter stream.
func (q *Queue) Nack(ctx context.Context, task *domain.ScanTask, reason string) error {
	msgID, err := q.messageID(ctx, task.ID)
	if err != nil {
		return err
	}

	task.Error = reason

	target := taskStream
	if !task.CanRetry() {
		target = deadLetterStream
	}
	if err := q.settle(ctx, msgID, task, target); err != nil {
		return fmt.Errorf("failed to nack task: %w", err)
	}
	return nil
}

// settle ends the delivery msgID and re-adds task to target in one transaction.
func (q *Queue) settle(ctx context.Context, msgID string, task *domain.ScanTask, target string) error {
	pipe := q.client.TxPipeline()
	if msgID != "" {
		pipe.XAck(ctx, taskStream, taskGroup, msgID)
		pipe.XDel(ctx, taskStream, msgID)
	}
	pipe.Del(ctx, taskKeyPrefix+task.ID+":msg")

	if err := q.add(ctx, pipe, target, task); err != nil {
		return err
	}
	_, err := pipe.Exec(ctx)
	return err
}

// claimAbandonedTask takes over a delivery that has been pending longer than claimTimeout.
// Every earlier delivery of the entry counts as an attempt, so a task whose workers keep
// disappearing is dead-lettered once it reaches MaxAttempts.
func (q *Queue) claimAbandonedTask(ctx context.Context) (*domain.ScanTask, error) {
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: taskStream,
		Group:  taskGroup,
		Idle:   claimTimeout,
		Start:  "-",
		End:    "+",
		Count:  10,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	for _, p := range pending {
		claimed, err := q.client.XClaim(ctx, &redis.XClaimArgs{
			Stream:   taskStream,
			Group:    taskGroup,
			Consumer: q.consumerName,
			MinIdle:  claimTimeout,
			Messages: []string{p.ID},
		}).Result()
		if err != nil || len(claimed) == 0 {
			// Another consumer got there first
			continue
		}

		msg := claimed[0]
		task, err := decodeTask(msg)
		if err != nil {
			q.client.XAck(ctx, taskStream, taskGroup, msg.ID)
			q.client.XDel(ctx, taskStream, msg.ID)
			continue
		}

		task.Attempts += int(p.RetryCount)
		if !task.CanRetry() {
			task.Error = abandonedReason
			if err := q.settle(ctx, msg.ID, task, deadLetterStream); err != nil {
				return nil, fmt.Errorf("failed to dead-letter abandoned task: %w", err)
			}
			continue
		}

		task.Attempts++
		if err := q.client.Set(ctx, taskKeyPrefix+task.ID+":msg", msg.ID, messageKeyTTL).Err(); err != nil {
			return nil, fmt.Errorf("failed to record message id: %w", err)
		}
		return task, nil
	}

	return nil, nil
}

// Stats returns queue statistics.
func (q *Queue) Stats(ctx context.Context) (*driven.QueueStats, error) {
	total, err := q.client.XLen(ctx, taskStream).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get stream length: %w", err)
	}

	var processing int64
	pending, err := q.client.XPending(ctx, taskStream, taskGroup).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get pending entries: %w", err)
	}
	if pending != nil {
		processing = pending.Count
	}

	dead, err := q.client.XLen(ctx, deadLetterStream).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get dead-letter length: %w", err)
	}

	return &driven.QueueStats{
		PendingCount:    total - processing,
		ProcessingCount: processing,
		DeadLetterCount: dead,
	}, nil
}

// Ping checks if the Redis backend is healthy.
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// DeadLetters returns tasks that exhausted their attempts, oldest first.
func (q *Queue) DeadLetters(ctx context.Context, limit int64) ([]*domain.ScanTask, error) {
	msgs, err := q.client.XRangeN(ctx, deadLetterStream, "-", "+", limit).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read dead-letter stream: %w", err)
	}

	tasks := make([]*domain.ScanTask, 0, len(msgs))
	for _, msg := range msgs {
		task, err := decodeTask(msg)
		if err != nil {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (q *Queue) add(ctx context.Context, cmd redis.Cmdable, stream string, task *domain.ScanTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	return cmd.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"task_id": task.ID,
			"task":    string(data),
		},
	}).Err()
}

func (q *Queue) messageID(ctx context.Context, taskID string) (string, error) {
	msgID, err := q.client.Get(ctx, taskKeyPrefix+taskID+":msg").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("failed to get message ID: %w", err)
	}
	return msgID, nil
}

func decodeTask(msg redis.XMessage) (*domain.ScanTask, error) {
	raw, ok := msg.Values["task"].(string)
	if !ok {
		return nil, errors.New("stream entry has no task payload")
	}
	var task domain.ScanTask
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &task, nil
}

func isGroupExistsError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BUSYGROUP")
}
