package dispatch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// KitchenQueue is bound to every kitchen.*.* routing key by DeclareTopology.
const KitchenQueue = "kitchen.q"

// AMQPConfig holds broker connection settings.
type AMQPConfig struct {
	URL      string `json:"url" mapstructure:"url" yaml:"url"`
	Exchange string `json:"exchange" mapstructure:"exchange" yaml:"exchange"`
	UseTLS   bool   `json:"use_tls" mapstructure:"use_tls" yaml:"use_tls"`
}

// Confirmation is a broker confirm for one published message.
// *amqp.DeferredConfirmation satisfies it.
type Confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// Confirmer publishes a message and returns the confirm for that message
// alone.
type Confirmer interface {
	PublishWithConfirm(ctx context.Context, exchange, key string, msg amqp.Publishing) (Confirmation, error)
}

type channelConfirmer struct{ ch *amqp.Channel }

func (c channelConfirmer) PublishWithConfirm(ctx context.Context, exchange, key string, msg amqp.Publishing) (Confirmation, error) {
	dc, err := c.ch.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
	if err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, errors.New("dispatch: channel is not in confirm mode")
	}
	return dc, nil
}

// AMQPPublisher publishes persistent messages with publisher confirms.
// Each publish waits on the confirm tagged with its own delivery tag, so a
// confirm abandoned on cancellation is never read by a later publish.
type AMQPPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	pub  Confirmer
}

// NewAMQPPublisher returns a publisher over c. Topology and Ping need a
// dialed connection; use DialAMQP for that.
func NewAMQPPublisher(c Confirmer) *AMQPPublisher {
	return &AMQPPublisher{pub: c}
}

// DialAMQP connects to the broker and puts the channel in confirm mode.
func DialAMQP(cfg AMQPConfig) (*AMQPPublisher, error) {
	var (
		conn *amqp.Connection
		err  error
	)
	if cfg.UseTLS {
		conn, err = amqp.DialTLS(cfg.URL, &tls.Config{MinVersion: tls.VersionTLS12})
	} else {
		conn, err = amqp.Dial(cfg.URL)
	}
	if err != nil {
		return nil, fmt.Errorf("dispatch: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("dispatch: open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("dispatch: confirm mode: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, pub: channelConfirmer{ch: ch}}, nil
}

// DeclareTopology declares the topic exchange and the kitchen queue.
func (p *AMQPPublisher) DeclareTopology(exchange string) error {
	if p.ch == nil {
		return errors.New("dispatch: no channel to declare topology on")
	}
	if exchange == "" {
		exchange = DefaultExchange
	}
	if err := p.ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("dispatch: declare exchange: %w", err)
	}
	if _, err := p.ch.QueueDeclare(KitchenQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("dispatch: declare queue: %w", err)
	}
	if err := p.ch.QueueBind(KitchenQueue, "kitchen.*.*", exchange, false, nil); err != nil {
		return fmt.Errorf("dispatch: bind queue: %w", err)
	}
	return nil
}

// Ping reports whether the connection is still open.
func (p *AMQPPublisher) Ping() error {
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("dispatch: connection is closed")
	}
	return nil
}

// Publish implements Publisher. It waits for the broker ack or ctx.
func (p *AMQPPublisher) Publish(ctx context.Context, exchange, key string, body []byte) error {
	conf, err := p.pub.PublishWithConfirm(ctx, exchange, key, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return err
	}

	ack, err := conf.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !ack {
		return errors.New("dispatch: publish nacked by broker")
	}
	return nil
}

// Close implements Publisher.
func (p *AMQPPublisher) Close() error {
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}
