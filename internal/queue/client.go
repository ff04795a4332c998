package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Aireenelz/rag-employee-learning-system/internal/config"
)

type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueChunkResync satisfies document.ResyncEnqueuer.
func (c *Client) EnqueueChunkResync(documentID string) error {
	return c.enqueue(TypeChunkResync, ChunkResyncPayload{DocumentID: documentID},
		asynq.MaxRetry(5), asynq.Timeout(2*time.Minute))
}

func (c *Client) EnqueueOrphanSweep() error {
	return c.enqueue(TypeOrphanSweep, OrphanSweepPayload{},
		asynq.MaxRetry(1), asynq.Timeout(10*time.Minute))
}

func (c *Client) enqueue(taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	_, err = c.client.Enqueue(task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
