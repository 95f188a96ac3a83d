// Package cursor implements the opaque keyset-pagination cursor.
//
// A cursor pins the position after the last row delivered to the client:
// the row's primary key plus its value in the active sort column. It is
// serialized as URL-safe base64 over a small JSON object and is opaque to
// clients, who must pass it back verbatim.
//
// The token does not embed the active sort column or direction; the caller
// supplies those separately at query-build time. A cursor minted under one
// sort order replayed against another yields a valid but repositioned page.
// That ambiguity is inherited from the wire contract and left unenforced.
package cursor

import (
	"encoding/base64"
	"encoding/json"
)

// Cursor is the decoded pagination position.
type Cursor struct {
	// ID is the last-seen row's primary key, the final tie-break of
	// every ORDER BY.
	ID string `json:"id"`

	// Tiebreak is the last-seen row's value in the active sort column,
	// rendered as a string. It is bound back into the keyset predicate
	// through the entity's SQL cast.
	Tiebreak string `json:"t"`
}

// Encode serializes a cursor position into an opaque URL-safe token.
func Encode(id, tiebreak string) string {
	data, err := json.Marshal(Cursor{ID: id, Tiebreak: tiebreak})
	if err != nil {
		// Two strings always marshal; kept to satisfy the signature.
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// Decode parses an opaque token back into a Cursor.
//
// Cursors come from clients and may be stale, truncated, or tampered, so
// Decode never fails: any malformed or shape-mismatched token decodes to
// nil, which callers must treat exactly like "no cursor supplied" —
// pagination restarts from the beginning of the set.
func Decode(token string) *Cursor {
	if token == "" {
		return nil
	}

	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil
	}

	// Pointer fields distinguish a missing key from an empty value, and
	// make a wrong JSON type (number, object, ...) an unmarshal error.
	var raw struct {
		ID       *string `json:"id"`
		Tiebreak *string `json:"t"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	if raw.ID == nil || *raw.ID == "" || raw.Tiebreak == nil {
		return nil
	}

	return &Cursor{ID: *raw.ID, Tiebreak: *raw.Tiebreak}
}
