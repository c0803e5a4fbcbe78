// Package notify is the push channel of the order store: row-change
// events fanned out to every connected coordinator. Delivery is
// best-effort; consumers keep their own polling safety net.
package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"campuseats/internal/logger"
	"campuseats/internal/models"
)

const ordersExchange = "orders_fanout"

// order change event types
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
)

// OrderEvent is one row-level change on the orders table.
type OrderEvent struct {
	Event string       `json:"event"`
	Order models.Order `json:"order"`
}

// Bus publishes and consumes order change events over a fanout
// exchange.
type Bus struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to the broker and declares the exchange.
func Dial(url string) (*Bus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(ordersExchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Bus{conn: conn, ch: ch}, nil
}

// Close releases the channel and connection.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if b.ch != nil {
		_ = b.ch.Close()
	}
	if b.conn != nil {
		_ = b.conn.Close()
	}
}

// PublishOrder fans out one change event.
func (b *Bus) PublishOrder(ctx context.Context, event string, order models.Order) error {
	body, err := json.Marshal(OrderEvent{Event: event, Order: order})
	if err != nil {
		return err
	}
	return b.ch.PublishWithContext(ctx, ordersExchange, "", false, false, amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		CorrelationId: order.LocalID,
		Timestamp:     time.Now().UTC(),
		Body:          body,
	})
}

// Subscribe binds an exclusive queue to the exchange and returns a
// channel of decoded events. The channel closes when ctx is done or
// the broker connection drops.
func (b *Bus) Subscribe(ctx context.Context) (<-chan OrderEvent, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, err
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		ch.Close()
		return nil, err
	}
	if err := ch.QueueBind(q.Name, "", ordersExchange, false, nil); err != nil {
		ch.Close()
		return nil, err
	}
	msgs, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, err
	}

	events := make(chan OrderEvent)
	go func() {
		defer close(events)
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					return
				}
				var ev OrderEvent
				if err := json.Unmarshal(d.Body, &ev); err != nil {
					logger.Log.Debug("notify: dropping undecodable event")
					continue
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}
