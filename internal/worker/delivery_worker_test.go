package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"tally/internal/amqp"
	"tally/internal/core"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) SendMessage(_ context.Context, chatID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

type fakeMirror struct {
	appended []core.Transaction
	err      error
}

func (f *fakeMirror) AppendTransaction(_ context.Context, tx core.Transaction) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, tx)
	return nil
}

type fakeReader struct {
	txs map[string]core.Transaction
}

func (f *fakeReader) Get(_ context.Context, id string) (*core.Transaction, error) {
	tx, ok := f.txs[id]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

func sampleTransaction() core.Transaction {
	return core.Transaction{
		ID:         "tx-1",
		OwnerID:    "u1",
		Amount:     core.Money{Cents: 1550},
		Category:   "Food",
		Kind:       core.Expense,
		OccurredAt: time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC),
	}
}

func TestHandleReply(t *testing.T) {
	sender := &fakeSender{}
	w := NewDeliveryWorker(sender, nil, &fakeReader{})

	err := w.HandleReply(context.Background(), amqp.NewReplyMessage(42, "hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "hello" {
		t.Fatalf("expected one sent message, got %v", sender.sent)
	}
}

func TestHandleReplySendFailure(t *testing.T) {
	sendErr := errors.New("telegram down")
	w := NewDeliveryWorker(&fakeSender{err: sendErr}, nil, &fakeReader{})

	err := w.HandleReply(context.Background(), amqp.NewReplyMessage(42, "hello"))
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}

func TestHandleMirror(t *testing.T) {
	mirror := &fakeMirror{}
	reader := &fakeReader{txs: map[string]core.Transaction{"tx-1": sampleTransaction()}}
	w := NewDeliveryWorker(&fakeSender{}, mirror, reader)

	err := w.HandleMirror(context.Background(), amqp.NewMirrorMessage("tx-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mirror.appended) != 1 || mirror.appended[0].ID != "tx-1" {
		t.Fatalf("expected tx-1 mirrored, got %+v", mirror.appended)
	}
}

func TestHandleMirrorTransactionGone(t *testing.T) {
	mirror := &fakeMirror{}
	w := NewDeliveryWorker(&fakeSender{}, mirror, &fakeReader{})

	// Undone before the worker processed the message: ack and move on.
	err := w.HandleMirror(context.Background(), amqp.NewMirrorMessage("tx-missing"))
	if err != nil {
		t.Fatalf("missing transaction should not be an error, got %v", err)
	}
	if len(mirror.appended) != 0 {
		t.Fatalf("nothing should be mirrored, got %+v", mirror.appended)
	}
}

func TestHandleMirrorNoWriterConfigured(t *testing.T) {
	reader := &fakeReader{txs: map[string]core.Transaction{"tx-1": sampleTransaction()}}
	w := NewDeliveryWorker(&fakeSender{}, nil, reader)

	if err := w.HandleMirror(context.Background(), amqp.NewMirrorMessage("tx-1")); err != nil {
		t.Fatalf("expected message dropped without error, got %v", err)
	}
}

func TestHandleMirrorAppendFailure(t *testing.T) {
	appendErr := errors.New("sheets quota")
	mirror := &fakeMirror{err: appendErr}
	reader := &fakeReader{txs: map[string]core.Transaction{"tx-1": sampleTransaction()}}
	w := NewDeliveryWorker(&fakeSender{}, mirror, reader)

	err := w.HandleMirror(context.Background(), amqp.NewMirrorMessage("tx-1"))
	if !errors.Is(err, appendErr) {
		t.Fatalf("expected wrapped append error, got %v", err)
	}
}
