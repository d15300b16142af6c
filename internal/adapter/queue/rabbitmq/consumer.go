package rabbitmq

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
)

// Strategies whose routing keys are bound to the results queue
var boundStrategies = []string{"static", "intelligent"}

// ConsumeRuns binds the results queue to every strategy key and hands each run to handler.
// It returns once consuming started; deliveries stop when ctx is done.
func (q *RunQueue) ConsumeRuns(ctx context.Context, handler func(run *domain.RunResult) error) error {
	_, err := q.ch.QueueDeclare(
		runsQueue, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return err
	}

	for _, s := range boundStrategies {
		if err := q.ch.QueueBind(runsQueue, routingKey(s), runsExchange, false, nil); err != nil {
			return err
		}
	}

	if err := q.ch.Qos(10, 0, false); err != nil {
		return err
	}

	msgs, err := q.ch.ConsumeWithContext(ctx,
		runsQueue, // queue
		"",        // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return err
	}

	q.log.Info("Started consuming runs", zap.String("queue", runsQueue))

	go func() {
		for d := range msgs {
			q.handle(d, handler)
		}
		q.log.Info("Stopped consuming runs", zap.String("queue", runsQueue))
	}()

	return nil
}

func (q *RunQueue) handle(d amqp.Delivery, handler func(run *domain.RunResult) error) {
	run, err := decodeDelivery(d.Body)
	if err != nil {
		q.log.Error("Failed to unmarshal run", zap.Error(err))
		d.Nack(false, false) // discard invalid message
		return
	}

	if err := handler(run); err != nil {
		q.log.Error("Run handling failed", zap.String("id", run.ID), zap.Error(err))
		// redelivered messages are dropped instead of looping forever
		d.Nack(false, !d.Redelivered)
		return
	}
	d.Ack(false)
	q.log.Debug("Run processed successfully", zap.String("id", run.ID))
}

func decodeDelivery(body []byte) (*domain.RunResult, error) {
	var run domain.RunResult
	if err := json.Unmarshal(body, &run); err != nil {
		return nil, err
	}
	return &run, nil
}
