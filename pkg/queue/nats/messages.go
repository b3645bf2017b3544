package nats

import (
	"encoding/json"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/model"
)

// Subject constants
const (
	SubjectBarWrite       = "attention.bars.write"
	SubjectAttentionWrite = "attention.features.write"
)

// BarBatchMsg represents a batch price bar write request
type BarBatchMsg struct {
	Bars []model.PriceBar `json:"bars"`
}

// AttentionBatchMsg represents a batch attention row write request
type AttentionBatchMsg struct {
	Rows []model.AttentionRow `json:"rows"`
}

// Encode serializes a message to JSON bytes
func Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeBarBatch deserializes a BarBatchMsg from JSON bytes
func DecodeBarBatch(data []byte) (*BarBatchMsg, error) {
	var msg BarBatchMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecodeAttentionBatch deserializes an AttentionBatchMsg from JSON bytes
func DecodeAttentionBatch(data []byte) (*AttentionBatchMsg, error) {
	var msg AttentionBatchMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
