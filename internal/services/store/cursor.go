package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// cursorToken is the decoded form of a Cursor. The signature binds the
// token to the query shape that produced it.
type cursorToken struct {
	Sig    string `json:"sig"`
	LastID string `json:"lastId"`
	Offset int    `json:"offset"`
}

// querySignature captures the shape of a query: equality predicate plus
// ordering. Changing any of these invalidates outstanding cursors.
func querySignature(q ProjectQuery) string {
	mode := q.WorkMode
	if mode == "" {
		mode = "all"
	}
	return fmt.Sprintf("%s|%s|%t", mode, q.OrderBy, q.Desc)
}

func encodeCursor(sig, lastID string, offset int) Cursor {
	data, _ := json.Marshal(cursorToken{Sig: sig, LastID: lastID, Offset: offset})
	return Cursor(base64.RawURLEncoding.EncodeToString(data))
}

// decodeCursor parses a cursor and verifies it belongs to the given query
// shape. An empty cursor decodes to the start of the collection.
func decodeCursor(c Cursor, sig string) (*cursorToken, error) {
	if c == "" {
		return &cursorToken{Sig: sig}, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(string(c))
	if err != nil {
		return nil, fmt.Errorf("malformed cursor: %w", err)
	}

	var token cursorToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("malformed cursor: %w", err)
	}

	if token.Sig != sig {
		return nil, ErrCursorMismatch
	}

	return &token, nil
}
