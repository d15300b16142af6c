package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/port"
)

const (
	runsExchange = "runs.direct"
	runsQueue    = "runs.results"
	routingBase  = "run"
)

var _ port.ResultPublisher = (*RunQueue)(nil)

// RunQueue publishes and consumes run results over RabbitMQ
type RunQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *zap.Logger
}

// NewRunQueue dials RabbitMQ and declares the runs exchange
func NewRunQueue(url string, log *zap.Logger) (*RunQueue, error) {
	var conn *amqp.Connection
	var err error

	// Retry connection up to 10 times with backoff
	maxRetries := 10
	for i := 1; i <= maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			var ch *amqp.Channel
			ch, err = conn.Channel()
			if err == nil {
				q := &RunQueue{conn: conn, ch: ch, log: log}
				if err = q.declareExchange(); err == nil {
					return q, nil
				}
				ch.Close()
			}
			conn.Close()
		}

		log.Warn("Failed to connect to RabbitMQ, retrying...",
			zap.Int("attempt", i),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)

		time.Sleep(time.Duration(i*2) * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

func (q *RunQueue) declareExchange() error {
	return q.ch.ExchangeDeclare(
		runsExchange, // name
		"direct",     // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
}

// routingKey routes each strategy to its own key, e.g. run.intelligent
func routingKey(strategy string) string {
	s := strings.ToLower(strings.TrimSpace(strategy))
	if s == "" {
		s = "unknown"
	}
	return routingBase + "." + s
}

func (q *RunQueue) PublishRun(ctx context.Context, run *domain.RunResult) error {
	body, err := json.Marshal(run)
	if err != nil {
		return err
	}

	key := routingKey(run.Strategy)
	err = q.ch.PublishWithContext(ctx,
		runsExchange, // Exchange
		key,          // Routing key
		false,        // Mandatory
		false,        // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    run.ID,
			Timestamp:    run.CreatedAt,
			Body:         body,
		})
	if err != nil {
		q.log.Error("Failed to publish run", zap.Error(err))
		return err
	}

	q.log.Info("Published run to RabbitMQ", zap.String("id", run.ID), zap.String("key", key))
	return nil
}

// Close closes the channel and the connection
func (q *RunQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}
