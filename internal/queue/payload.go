package queue

import (
	"encoding/json"
	"fmt"

	"github.com/croplog/croplog/internal/record"
)

// updatePayload is the wire shape of an update operation's payload.
type updatePayload struct {
	ID     string         `json:"id"`
	Fields record.Partial `json:"fields"`
}

// deletePayload is the wire shape of a delete operation's payload.
type deletePayload struct {
	ID string `json:"id"`
}

// EncodeCreate serializes the payload of a create operation.
func EncodeCreate(fields record.Fields) (json.RawMessage, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode create payload: %w", err)
	}
	return data, nil
}

// EncodeUpdate serializes the payload of an update operation.
func EncodeUpdate(id string, partial record.Partial) (json.RawMessage, error) {
	data, err := json.Marshal(updatePayload{ID: id, Fields: partial})
	if err != nil {
		return nil, fmt.Errorf("encode update payload: %w", err)
	}
	return data, nil
}

// EncodeDelete serializes the payload of a delete operation.
func EncodeDelete(id string) (json.RawMessage, error) {
	data, err := json.Marshal(deletePayload{ID: id})
	if err != nil {
		return nil, fmt.Errorf("encode delete payload: %w", err)
	}
	return data, nil
}

// DecodeCreate deserializes the payload of a create operation.
func DecodeCreate(payload json.RawMessage) (record.Fields, error) {
	var fields record.Fields
	if err := json.Unmarshal(payload, &fields); err != nil {
		return record.Fields{}, fmt.Errorf("decode create payload: %w", err)
	}
	return fields, nil
}

// DecodeUpdate deserializes the payload of an update operation.
func DecodeUpdate(payload json.RawMessage) (string, record.Partial, error) {
	var p updatePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", record.Partial{}, fmt.Errorf("decode update payload: %w", err)
	}
	return p.ID, p.Fields, nil
}

// DecodeDelete deserializes the payload of a delete operation.
func DecodeDelete(payload json.RawMessage) (string, error) {
	var p deletePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", fmt.Errorf("decode delete payload: %w", err)
	}
	return p.ID, nil
}
