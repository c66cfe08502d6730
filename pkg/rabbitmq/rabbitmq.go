package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"grosir/internal/models"

	amqp "github.com/streadway/amqp"
)

const (
	// ExchangeName is the durable topic exchange catalog events go to.
	ExchangeName = "catalog"
	// QueueName collects every product event for the in-process consumer.
	QueueName = "product_events"
	// RoutingPattern binds QueueName to all product routing keys.
	RoutingPattern = "product.*"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	// amqp.Channel is not safe for concurrent publishes.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ and declares the catalog topology.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Printf("RabbitMQ client connected, exchange %q and queue %q declared.", ExchangeName, QueueName)

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		ExchangeName, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", ExchangeName, err)
	}

	if _, err := ch.QueueDeclare(
		QueueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	); err != nil {
		return fmt.Errorf("failed to declare %s: %w", QueueName, err)
	}

	if err := ch.QueueBind(QueueName, RoutingPattern, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s to %s: %w", QueueName, ExchangeName, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishProductEvent publishes event on the catalog exchange using its
// type as routing key.
func (c *Client) PublishProductEvent(event models.ProductEvent) error {
	body, err := EncodeEvent(event)
	if err != nil {
		return err
	}
	return c.Publish(ExchangeName, event.Type, body)
}

// Publish sends a persistent JSON message.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Printf(" [x] Sent %s: %s", routingKey, body)
	return nil
}

// ConsumeProductEvents delivers every product event to messageHandler on a
// background goroutine. Failed messages are nacked without requeue.
func (c *Client) ConsumeProductEvents(messageHandler func(event models.ProductEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		QueueName, // queue
		"",        // consumer tag
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf(" [*] Waiting for product events on %s", QueueName)

	go func() {
		for msg := range msgs {
			if err := handleDelivery(msg.Body, messageHandler); err != nil {
				log.Printf("Error processing message %d: %v", msg.DeliveryTag, err)
				if nackErr := msg.Nack(false, false); nackErr != nil {
					log.Printf("Error nacking message %d: %v", msg.DeliveryTag, nackErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				log.Printf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
			}
		}
	}()

	return nil
}

func handleDelivery(body []byte, messageHandler func(event models.ProductEvent) error) error {
	event, err := DecodeEvent(body)
	if err != nil {
		return err
	}
	return messageHandler(event)
}

// EncodeEvent marshals an event to its wire format.
func EncodeEvent(event models.ProductEvent) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal product event: %w", err)
	}
	return body, nil
}

// DecodeEvent parses a message body produced by EncodeEvent.
func DecodeEvent(body []byte) (models.ProductEvent, error) {
	var event models.ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return models.ProductEvent{}, fmt.Errorf("failed to decode product event: %w", err)
	}
	if event.Type == "" {
		return models.ProductEvent{}, fmt.Errorf("product event without type")
	}
	return event, nil
}

// LogProductEvent is the default consumer: it records each event in the service log.
func LogProductEvent(event models.ProductEvent) error {
	log.Printf("Product event %s: product=%d wholesaler=%d at %s",
		event.Type, event.ProductID, event.WholesalerID, event.OccurredAt.Format(time.RFC3339))
	return nil
}
