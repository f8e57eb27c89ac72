package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/config"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/logger"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Lower value means the job is picked up sooner
type Priority int

const (
	PriorityHigh Priority = 1
	PriorityLow  Priority = 10
)

type Job struct {
	// Job name, picks the worker-side handler
	Name string

	// Stable key, re-submission replaces pending work instead of duplicating it
	Key string

	Priority Priority
	Payload  interface{}
}

// Enqueuer submits named jobs to the external worker queue.
// Execution semantics (retry, at-least-once) belong to the workers.
type Enqueuer interface {
	Submit(ctx context.Context, job *Job) error
	Escalate(ctx context.Context, name, key string, priority Priority) error
}

// Client writes jobs into a Redis-backed priority queue.
// Jobs live in a hash keyed by the job key, ordering comes from a
// priority-scored sorted set, so re-adding a member replaces its score.
type Client struct {
	log    *logrus.Entry
	client *redis.Client
	queue  string
}

func NewClient(jobQueueConfig *config.JobQueue) (self *Client) {
	self = new(Client)
	self.log = logger.NewSublogger("job-queue")
	self.queue = jobQueueConfig.QueueName
	self.client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", jobQueueConfig.Host, jobQueueConfig.Port),
		Password: jobQueueConfig.Password,
		DB:       jobQueueConfig.DB,
	})
	return
}

func (self *Client) jobId(name, key string) string {
	return name + ":" + key
}

func (self *Client) jobHashKey(id string) string {
	return fmt.Sprintf("queue:%s:jobs:%s", self.queue, id)
}

func (self *Client) waitingKey() string {
	return fmt.Sprintf("queue:%s:waiting", self.queue)
}

func (self *Client) Submit(ctx context.Context, job *Job) (err error) {
	payload, err := json.Marshal(job.Payload)
	if err != nil {
		return
	}

	id := self.jobId(job.Name, job.Key)

	_, err = self.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, self.jobHashKey(id),
			"name", job.Name,
			"key", job.Key,
			"priority", int(job.Priority),
			"payload", string(payload),
		)
		// ZADD replaces the score of an existing member, which is
		// what gives re-submission its replace semantics
		pipe.ZAdd(ctx, self.waitingKey(), redis.Z{
			Score:  float64(job.Priority),
			Member: id,
		})
		return nil
	})
	if err != nil {
		self.log.WithError(err).WithField("job", id).Error("Failed to submit job")
		return
	}

	return
}

// Escalate updates the priority of an already queued job in place.
// Missing jobs are not an error, there's simply nothing to escalate.
func (self *Client) Escalate(ctx context.Context, name, key string, priority Priority) (err error) {
	id := self.jobId(name, key)

	_, err = self.client.ZScore(ctx, self.waitingKey(), id).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return
	}

	_, err = self.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, self.jobHashKey(id), "priority", int(priority))
		pipe.ZAdd(ctx, self.waitingKey(), redis.Z{
			Score:  float64(priority),
			Member: id,
		})
		return nil
	})
	return
}

func (self *Client) Close() error {
	return self.client.Close()
}
