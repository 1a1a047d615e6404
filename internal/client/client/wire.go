package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

type envelope struct {
	Error string `json:"error"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type identityResponse struct {
	ID    wireID `json:"id"`
	Email string `json:"email"`
}

type documentResponse struct {
	ID        wireID   `json:"id"`
	Name      string   `json:"name"`
	Data      string   `json:"data"`
	CreatedAt wireTime `json:"created_at"`
}

type listResponse struct {
	Results []documentResponse `json:"results"`
}

type createDocumentRequest struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

type createDocumentResponse struct {
	ID wireID `json:"id"`
}

type patchDocumentRequest struct {
	Name string `json:"name,omitempty"`
	Data string `json:"data,omitempty"`
}

type snapshotRequest struct {
	Data string `json:"data"`
}

type snapshotResponse struct {
	Data      string   `json:"data"`
	CreatedAt wireTime `json:"created_at"`
}

type createSnapshotResponse struct {
	ShortKey string `json:"short_key"`
}

// wireID accepts ids encoded either as JSON strings or numbers.
type wireID string

func (id *wireID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", b, err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("invalid id %s: %w", b, err)
	}
	*id = wireID(n.String())
	return nil
}

// wireTime tolerates missing or unparseable timestamps.
type wireTime struct {
	time.Time
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}

func (t *wireTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}
