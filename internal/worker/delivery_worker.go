package worker

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/core"
	applog "tally/internal/log"
)

// ReplySender delivers a text message to a chat.
type ReplySender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// MirrorWriter appends a transaction row to the external mirror.
type MirrorWriter interface {
	AppendTransaction(ctx context.Context, tx core.Transaction) error
}

// TransactionReader loads a transaction by id. A (nil, nil) result means
// the transaction no longer exists.
type TransactionReader interface {
	Get(ctx context.Context, id string) (*core.Transaction, error)
}

// DeliveryWorker consumes queued work produced by the API: chat replies to
// send and transactions to mirror. The mirror is optional; with no writer
// configured mirror messages are acknowledged and dropped.
type DeliveryWorker struct {
	sender ReplySender
	mirror MirrorWriter
	store  TransactionReader
}

func NewDeliveryWorker(sender ReplySender, mirror MirrorWriter, store TransactionReader) *DeliveryWorker {
	return &DeliveryWorker{
		sender: sender,
		mirror: mirror,
		store:  store,
	}
}

// HandleReply sends one chat reply. Errors bubble up so the consumer can
// requeue the delivery.
func (w *DeliveryWorker) HandleReply(ctx context.Context, msg *amqp.ReplyMessage) error {
	slog.InfoContext(ctx, "Delivering reply",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldChatID, msg.ChatID)

	if err := w.sender.SendMessage(ctx, msg.ChatID, msg.Text); err != nil {
		return fmt.Errorf("send reply to chat %d: %w", msg.ChatID, err)
	}
	return nil
}

// HandleMirror re-reads the transaction and appends it to the mirror. The
// message only carries the id: if the transaction was undone before the
// worker got to it, there is nothing to mirror and the message is dropped.
func (w *DeliveryWorker) HandleMirror(ctx context.Context, msg *amqp.MirrorMessage) error {
	if w.mirror == nil {
		slog.WarnContext(ctx, "No mirror configured, dropping message",
			applog.FieldComponent, applog.ComponentWorker,
			"transaction_id", msg.TransactionID)
		return nil
	}

	tx, err := w.store.Get(ctx, msg.TransactionID)
	if err != nil {
		return fmt.Errorf("load transaction %s: %w", msg.TransactionID, err)
	}
	if tx == nil {
		slog.InfoContext(ctx, "Transaction gone before mirroring, skipping",
			applog.FieldComponent, applog.ComponentWorker,
			"transaction_id", msg.TransactionID)
		return nil
	}

	if err := w.mirror.AppendTransaction(ctx, *tx); err != nil {
		return fmt.Errorf("mirror transaction %s: %w", msg.TransactionID, err)
	}

	slog.InfoContext(ctx, "Transaction mirrored",
		applog.FieldComponent, applog.ComponentWorker,
		"transaction_id", tx.ID,
		applog.FieldAmountCents, tx.Amount.Cents)
	return nil
}
