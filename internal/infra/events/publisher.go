// Package events публикует события о заявках в RabbitMQ.
// Публикация выполняется после коммита и не влияет на результат бронирования.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
)

// DefaultPublishTimeout верхняя граница одной публикации вместе с ожиданием очереди и переподключением
const DefaultPublishTimeout = 2 * time.Second

var (
	// ErrPublish возвращается, когда событие не удалось отправить
	ErrPublish = errors.New("events: failed to publish event")

	// ErrClosed возвращается при публикации после Close
	ErrClosed = errors.New("events: publisher is closed")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// channel часть *amqp.Channel, которой пользуется издатель
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// dialFunc открывает соединение и канал с объявленной очередью
type dialFunc func(timeout time.Duration) (io.Closer, channel, error)

// RabbitPublisher держит одно соединение и канал, при обрыве переподключается при следующей публикации.
// Публикации сериализованы, каждая ограничена таймаутом независимо от контекста запроса.
type RabbitPublisher struct {
	queue   string
	timeout time.Duration
	dial    dialFunc
	logger  Logger

	// sem емкостью 1 вместо мьютекса: захват можно прервать по таймауту
	sem    chan struct{}
	conn   io.Closer
	ch     channel
	closed bool
}

// NewRabbitPublisher подключается к брокеру и объявляет durable очередь
func NewRabbitPublisher(url, queue string, timeout time.Duration, logger Logger) (*RabbitPublisher, error) {
	p := newPublisher(queue, timeout, amqpDialer(url, queue), logger)

	if err := p.connect(timeout); err != nil {
		return nil, err
	}
	return p, nil
}

func newPublisher(queue string, timeout time.Duration, dial dialFunc, logger Logger) *RabbitPublisher {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &RabbitPublisher{
		queue:   queue,
		timeout: timeout,
		dial:    dial,
		logger:  logger,
		sem:     make(chan struct{}, 1),
	}
}

// Publish отправляет событие в очередь как persistent JSON.
// Отмена ctx не прерывает отправку: событие относится к уже закоммиченной заявке.
func (p *RabbitPublisher) Publish(ctx context.Context, event domain.RepairJobEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrPublish, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(event.Type),
		MessageId:    event.RepairJobID.String(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	select {
	case p.sem <- struct{}{}:
	case <-pubCtx.Done():
		return fmt.Errorf("%w: %s: waiting for publisher: %v", ErrPublish, event.Type, pubCtx.Err())
	}
	defer func() { <-p.sem }()

	if p.closed {
		return ErrClosed
	}

	if p.ch == nil || p.ch.IsClosed() {
		p.logger.Warn("events: channel is closed, reconnecting to broker")
		deadline, _ := pubCtx.Deadline()
		if err := p.connect(time.Until(deadline)); err != nil {
			return err
		}
	}

	// default exchange, routing key = имя очереди
	if err := p.ch.PublishWithContext(pubCtx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPublish, event.Type, err)
	}

	p.logger.Info("events: published %s for repair job id=%s", event.Type, event.RepairJobID)
	return nil
}

// Close закрывает канал и соединение
func (p *RabbitPublisher) Close() error {
	p.sem <- struct{}{}
	defer func() { <-p.sem }()

	p.closed = true
	return p.release()
}

func (p *RabbitPublisher) connect(timeout time.Duration) error {
	_ = p.release()

	if timeout <= 0 {
		return fmt.Errorf("%w: reconnect: %v", ErrPublish, context.DeadlineExceeded)
	}

	conn, ch, err := p.dial(timeout)
	if err != nil {
		return err
	}

	p.conn = conn
	p.ch = ch
	return nil
}

func amqpDialer(url, queue string) dialFunc {
	return func(timeout time.Duration) (io.Closer, channel, error) {
		// DefaultDial ограничивает и TCP dial, и AMQP handshake
		conn, err := amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(timeout)})
		if err != nil {
			return nil, nil, fmt.Errorf("%w: dial: %v", ErrPublish, err)
		}

		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("%w: channel open: %v", ErrPublish, err)
		}

		// durable, чтобы события пережили перезапуск брокера
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, nil, fmt.Errorf("%w: queue declare %s: %v", ErrPublish, queue, err)
		}

		return conn, ch, nil
	}
}

func (p *RabbitPublisher) release() error {
	var errs []error
	if p.ch != nil {
		if err := p.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
		p.ch = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
		p.conn = nil
	}
	return errors.Join(errs...)
}

// NoopPublisher используется, когда RabbitMQ выключен в конфигурации
type NoopPublisher struct{}

// Publish ничего не делает
func (NoopPublisher) Publish(context.Context, domain.RepairJobEvent) error {
	return nil
}

// Close ничего не делает
func (NoopPublisher) Close() error {
	return nil
}
