package queue

import (
	"context"
	"errors"

	"github.com/sakshi-kadian/aurelius/pkg/graph"
	"github.com/sakshi-kadian/aurelius/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

const retryHeader = "x-retries"

// Retries reads how often msg has already been through the retry queue.
func Retries(msg amqp091.Delivery) int {
	switch v := msg.Headers[retryHeader].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return 0
	}
}

// HandleProcessingError routes a failed message. Unreadable documents and
// messages that used up MaxRetries go to the dead-letter queue; anything
// else goes to the retry queue with its counter bumped. The original
// delivery is acked once the copy is published and requeued otherwise.
// It reports whether the message ended up in the dead-letter queue.
func HandleProcessingError(ctx context.Context, ch Channel, msg amqp091.Delivery, queueName string, cause error) bool {
	retries := Retries(msg)

	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}

	target := queueName + "_retry"
	final := retries >= MaxRetries || isPermanent(cause)
	if final {
		target = queueName + "_dlq"
		logger.Info("[Queue] Sending message to DLQ", "dlq", target, "retries", retries)
	} else {
		headers[retryHeader] = int32(retries + 1)
	}

	if err := publish(ctx, ch, "", target, msg.Body, headers); err != nil {
		logger.Error("[Queue] Failed to reroute message", "queue", target, "err", err)
		if err := msg.Nack(false, true); err != nil {
			logger.Error("[Queue] Failed to nack message", "err", err)
		}
		return false
	}
	if err := msg.Ack(false); err != nil {
		logger.Error("[Queue] Failed to ack message", "err", err)
	}
	return final
}

func isPermanent(err error) bool {
	return errors.Is(err, graph.ErrInputDocument) || errors.Is(err, ErrInvalidMessage)
}
