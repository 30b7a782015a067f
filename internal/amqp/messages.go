package amqp

import (
	"encoding/json"
	"time"
)

// ReplyMessage carries a formatted chat reply waiting for delivery.
type ReplyMessage struct {
	ChatID    int64     `json:"chat_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// MirrorMessage asks the worker to mirror one transaction to the
// spreadsheet. It carries only the id; the worker re-reads the row, so a
// transaction undone before delivery is simply skipped.
type MirrorMessage struct {
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewReplyMessage(chatID int64, text string) *ReplyMessage {
	return &ReplyMessage{ChatID: chatID, Text: text, Timestamp: time.Now()}
}

func NewMirrorMessage(transactionID string) *MirrorMessage {
	return &MirrorMessage{TransactionID: transactionID, Timestamp: time.Now()}
}

func (m *ReplyMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *MirrorMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReplyMessageFromJSON(data []byte) (*ReplyMessage, error) {
	var msg ReplyMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func MirrorMessageFromJSON(data []byte) (*MirrorMessage, error) {
	var msg MirrorMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
