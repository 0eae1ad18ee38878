package notes

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"noteeasy/internal/identity"
)

// Note is a user-authored record. Title, content and category are never
// empty for a persisted note; timestamp is set once at creation and never
// mutated.
type Note struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	Category  string             `bson:"category" json:"category"`
	Tags      []string           `bson:"tags" json:"tags"`
	Creator   string             `bson:"creator,omitempty" json:"creator,omitempty"`
	UID       string             `bson:"uid,omitempty" json:"uid,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// HistoryEntry is an immutable snapshot of a note's state before one edit.
type HistoryEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NoteID     primitive.ObjectID `bson:"note_id" json:"noteId"`
	Title      string             `bson:"title" json:"title"`
	Content    string             `bson:"content" json:"content"`
	Category   string             `bson:"category" json:"category"`
	Tags       []string           `bson:"tags" json:"tags"`
	Editor     string             `bson:"editor" json:"editor"`
	EditorName string             `bson:"editorName" json:"editorName"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}

// NoteInput is the mutable field set accepted by create and update.
type NoteInput struct {
	Title    string   `json:"title" validate:"required"`
	Content  string   `json:"content" validate:"required"`
	Category string   `json:"category" validate:"required"`
	Tags     []string `json:"tags"`
}

// ListQuery selects order and an optional exact-match tag filter.
type ListQuery struct {
	SortBy string // timestamp (default), title, category
	Order  string // asc or desc; anything else means desc
	Tag    string // exact token, e.g. "#work"
}

// PageQuery is ListQuery plus cursor pagination.
type PageQuery struct {
	ListQuery
	Cursor string // opaque token from a previous page, empty for the first
	Limit  int
}

// Page is one page of notes with navigation flags for the caller's
// prev/next bookkeeping.
type Page struct {
	Notes      []*Note `json:"notes"`
	NextCursor string  `json:"nextCursor,omitempty"`
	PrevPage   bool    `json:"prevPage"`
	NextPage   bool    `json:"nextPage"`
}

// editorOf maps an acting identity onto the history attribution fields,
// with the unauthenticated fallbacks the API has always used.
func editorOf(actor identity.Identity) (editor, editorName string) {
	editor = actor.UID
	if editor == "" {
		editor = "unknown"
	}
	editorName = actor.Name
	if editorName == "" {
		editorName = actor.Email
	}
	if editorName == "" {
		editorName = "Unknown"
	}
	return editor, editorName
}
