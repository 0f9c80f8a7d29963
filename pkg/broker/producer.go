package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/invoicing/internal/entity"
)

// Producer publishes invoice lifecycle events. Publishing is asynchronous and
// best-effort: a broker failure is logged, never returned to the caller.
type Producer struct {
	l     *slog.Logger
	w     *kafka.Writer
	topic string
}

func NewProducer(l *slog.Logger, brokers []string, topic string) *Producer {
	l = l.WithGroup("kafka").With("topic", topic)

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		Async:                  true,
		Logger:                 &infoLogger{l: l},
		ErrorLogger:            &errorLogger{l: l},
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		l:     l,
		w:     w,
		topic: topic,
	}
}

type InvoiceEvent struct {
	Type          string    `json:"type"`
	InvoiceID     int64     `json:"invoiceId"`
	InvoiceNumber string    `json:"invoiceNumber"`
	Customer      string    `json:"customer"`
	Amount        string    `json:"amount"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func (p *Producer) InvoiceCreated(ctx context.Context, inv entity.Invoice) {
	p.send(ctx, "invoice.created", inv.ID, inv.InvoiceNumber, inv.Customer, inv.Amount, inv.Status)
}

func (p *Producer) InvoiceUpdated(ctx context.Context, inv entity.Invoice) {
	p.send(ctx, "invoice.updated", inv.ID, inv.InvoiceNumber, inv.Customer, inv.Amount, inv.Status)
}

func (p *Producer) InvoiceDeleted(ctx context.Context, id int64) {
	p.send(ctx, "invoice.deleted", id, "", "", decimal.Decimal{}, "")
}

func (p *Producer) send(
	ctx context.Context,
	eventType string,
	id int64,
	number, customer string,
	amount decimal.Decimal,
	status entity.InvoiceStatus,
) {
	event := InvoiceEvent{
		Type:          eventType,
		InvoiceID:     id,
		InvoiceNumber: number,
		Customer:      customer,
		Amount:        amount.StringFixed(2),
		Status:        status.String(),
		OccurredAt:    time.Now(),
	}

	b, err := json.Marshal(event)
	if err != nil {
		p.l.Error(fmt.Sprintf("marshal event: %s", err))
		return
	}

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", id)),
		Value: b,
		Topic: p.topic,
	})
	if err != nil {
		p.l.Error(fmt.Sprintf("write kafka message: %s", err))
		return
	}
}

func (p *Producer) Close() {
	err := p.w.Close()
	if err != nil {
		p.l.Error(fmt.Sprintf("close kafka writer: %s", err))
	}
}
