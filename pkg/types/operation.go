// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// OperationType classifies a recorded offline mutation.
type OperationType string

const (
	OpAdd    OperationType = "ADD"
	OpUpdate OperationType = "UPDATE"
	OpDelete OperationType = "DELETE"
)

// PendingOperation is one offline mutation awaiting replay against the
// remote API. ID is the target article identity (for ADD, the temporary
// ID). Article carries the user-editable fields only; DELETE records have
// no payload. Timestamp is a strictly increasing logical ordering key in
// milliseconds; replay order is ascending Timestamp.
type PendingOperation struct {
	Type      OperationType   `json:"type" yaml:"type"`
	ID        string          `json:"id" yaml:"id"`
	Article   *ArticlePayload `json:"article,omitempty" yaml:"article,omitempty"`
	Timestamp int64           `json:"timestamp" yaml:"timestamp"`
}
