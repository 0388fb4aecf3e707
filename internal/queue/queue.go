package queue

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sakshi-kadian/aurelius/internal/util"
	"github.com/sakshi-kadian/aurelius/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

const (
	IngestQueue   = "ingest_queue"
	EventExchange = "pubsub_exchange"

	// MaxRetries is how often a failed message goes through the retry queue
	// before it is parked in the dead-letter queue.
	MaxRetries = 10
	retryTTLMs = 10000
)

// Channel is the subset of *amqp091.Channel used to declare queues and
// publish.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

type InitParams struct {
	User     string
	Password string
	Host     string
	Port     string
}

// URL renders the AMQP connection string.
func (p InitParams) URL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(p.User, p.Password),
		Host:   p.Host + ":" + p.Port,
		Path:   "/",
	}
	return u.String()
}

// Init dials RabbitMQ, retrying with backoff while the broker starts up.
func Init(ctx context.Context, params InitParams) (*amqp091.Connection, error) {
	conn, err := util.RetryWithBackoff(ctx, 5, time.Second, func(context.Context) (*amqp091.Connection, error) {
		conn, err := amqp091.Dial(params.URL())
		if err != nil {
			logger.Warn("[Queue] RabbitMQ not reachable", "host", params.Host, "err", err)
		}
		return conn, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// SetupQueues declares each queue with its dead-letter queue and a retry
// queue that hands messages back to the main queue after a delay.
func SetupQueues(ch Channel, queueNames []string) error {
	err := ch.ExchangeDeclare(
		EventExchange,
		"topic",
		false,
		true,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	for _, name := range queueNames {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", name, err)
		}

		dlqName := name + "_dlq"
		if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", dlqName, err)
		}

		retryName := name + "_retry"
		_, err := ch.QueueDeclare(
			retryName,
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             int32(retryTTLMs),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", retryName, err)
		}
	}

	return nil
}

// PublishFIFO publishes a persistent message straight to queueName.
func PublishFIFO(ctx context.Context, ch Channel, queueName string, data []byte) error {
	return publish(ctx, ch, "", queueName, data, nil)
}

// PublishTopic publishes data on the event exchange under topic.
func PublishTopic(ctx context.Context, ch Channel, topic string, data []byte) error {
	return publish(ctx, ch, EventExchange, topic, data, nil)
}

func publish(ctx context.Context, ch Channel, exchange, key string, data []byte, headers amqp091.Table) error {
	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         data,
		Headers:      headers,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	}

	err := util.RetryErrWithContext(ctx, 3, func(ctx context.Context) error {
		return ch.PublishWithContext(ctx, exchange, key, false, false, publishing)
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", key, err)
	}
	return nil
}
