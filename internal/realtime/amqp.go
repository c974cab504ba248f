package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const ChangesExchange = "potluck.changes"

// AMQPFeed shares signals between instances through a RabbitMQ fanout
// exchange. Each instance consumes from its own exclusive queue.
type AMQPFeed struct {
	url string
	hub *Hub

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel

	cancel context.CancelFunc
	done   chan struct{}
}

func NewAMQPFeed(url string) *AMQPFeed {
	ctx, cancel := context.WithCancel(context.Background())
	f := &AMQPFeed{
		url:    url,
		hub:    NewHub(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go f.consume(ctx)
	return f
}

func declare(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		ChangesExchange, // name
		"fanout",        // kind
		true,            // durable
		false,           // autoDelete
		false,           // internal
		false,           // noWait
		nil,             // args
	)
}

// consume keeps a consumer attached, reconnecting with backoff until ctx ends.
func (f *AMQPFeed) consume(ctx context.Context) {
	defer close(f.done)

	backoff := time.Second
	for {
		err := f.consumeOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		logrus.WithError(err).Warnf("amqp change feed disconnected, retrying in %s", backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (f *AMQPFeed) consumeOnce(ctx context.Context) error {
	conn, err := amqp.Dial(f.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer ch.Close()

	if err := declare(ch); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", ChangesExchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	logrus.WithField("queue", q.Name).Info("amqp change feed connected")
	for d := range msgs {
		if potluckID := string(d.Body); potluckID != "" {
			f.hub.notify(potluckID)
		}
	}
	return errors.New("deliveries channel closed")
}

// channel returns the publishing channel, dialing when there is none.
func (f *AMQPFeed) channel() (*amqp.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ch != nil && !f.ch.IsClosed() {
		return f.ch, nil
	}
	if f.conn == nil || f.conn.IsClosed() {
		conn, err := amqp.Dial(f.url)
		if err != nil {
			return nil, err
		}
		f.conn = conn
	}

	ch, err := f.conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := declare(ch); err != nil {
		ch.Close()
		return nil, err
	}
	f.ch = ch
	return ch, nil
}

func (f *AMQPFeed) Publish(ctx context.Context, potluckID string) error {
	ch, err := f.channel()
	if err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}

	return ch.PublishWithContext(ctx,
		ChangesExchange, // exchange
		potluckID,       // routing key, ignored by fanout
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType: "text/plain",
			Timestamp:   time.Now().UTC(),
			Body:        []byte(potluckID),
		},
	)
}

func (f *AMQPFeed) Subscribe(potluckID string, onChange func()) func() {
	return f.hub.Subscribe(potluckID, onChange)
}

func (f *AMQPFeed) Close() error {
	f.cancel()
	<-f.done

	f.mu.Lock()
	defer f.mu.Unlock()
	var err error
	if f.conn != nil {
		err = f.conn.Close()
	}
	f.hub.Close()
	return err
}
