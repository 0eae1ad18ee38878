package notes

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// cursor is the decoded form of the opaque pagination token. It carries the
// last-seen sort-key value and document id so the next page can resume
// without the caller ever holding a live store handle. SortBy and Order
// ride along so a page chain cannot mix orderings.
type cursor struct {
	SortBy string `json:"s"`
	Order  string `json:"o"`
	Value  string `json:"v"` // RFC3339Nano for timestamp sorts, raw string otherwise
	ID     string `json:"i"` // hex ObjectID of the last document
}

func encodeCursor(sortBy, order string, last *Note) (string, error) {
	c := cursor{
		SortBy: sortBy,
		Order:  order,
		ID:     last.ID.Hex(),
	}
	switch sortBy {
	case "timestamp":
		c.Value = last.Timestamp.UTC().Format(time.RFC3339Nano)
	case "title":
		c.Value = last.Title
	case "category":
		c.Value = last.Category
	default:
		return "", fmt.Errorf("unknown sort field %q", sortBy)
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// decodeCursor validates the token against the requested ordering and
// returns the resume point. A tampered or mismatched token is rejected as
// a ValidationError so callers get a 400, not a silent wrong page.
func decodeCursor(token, sortBy, order string) (sortValue any, lastID primitive.ObjectID, err error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, primitive.NilObjectID, &ValidationError{Field: "cursor", Reason: "malformed or mismatched cursor"}
	}
	var c cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, primitive.NilObjectID, &ValidationError{Field: "cursor", Reason: "malformed or mismatched cursor"}
	}
	if c.SortBy != sortBy || c.Order != order {
		return nil, primitive.NilObjectID, &ValidationError{Field: "cursor", Reason: "malformed or mismatched cursor"}
	}
	lastID, err = primitive.ObjectIDFromHex(c.ID)
	if err != nil {
		return nil, primitive.NilObjectID, &ValidationError{Field: "cursor", Reason: "malformed or mismatched cursor"}
	}
	if sortBy == "timestamp" {
		t, err := time.Parse(time.RFC3339Nano, c.Value)
		if err != nil {
			return nil, primitive.NilObjectID, &ValidationError{Field: "cursor", Reason: "malformed or mismatched cursor"}
		}
		return t, lastID, nil
	}
	return c.Value, lastID, nil
}
