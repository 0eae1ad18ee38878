package notes

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"noteeasy/internal/identity"
)

// Store is the persistence surface the service drives. *Repo implements it.
type Store interface {
	Insert(ctx context.Context, n *Note) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Note, error)
	List(ctx context.Context, q ListQuery) ([]*Note, error)
	ListPage(ctx context.Context, q PageQuery) (*Page, error)
	HistoryByNote(ctx context.Context, noteID primitive.ObjectID) ([]*HistoryEntry, error)
	AppendHistory(ctx context.Context, e *HistoryEntry) error
	UpdateFields(ctx context.Context, id primitive.ObjectID, in NoteInput) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	BackfillTags(ctx context.Context) (int, error)
}

type Service struct {
	store    Store
	validate *validator.Validate
}

func NewService(store Store) *Service {
	v := validator.New()
	// report json field names so validation errors read like the API
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{store: store, validate: v}
}

// checkInput trims the required fields, validates them, and normalizes the
// tags. The store is schemaless, so this is the only shape enforcement any
// note gets before a write.
func (s *Service) checkInput(in *NoteInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Category = strings.TrimSpace(in.Category)
	in.Tags = normalizeTags(in.Tags)

	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ValidationError{Field: verrs[0].Field()}
		}
		return err
	}
	return nil
}

// normalizeTags trims each token and keeps only "#"-prefixed ones, the
// convention every caller has always used.
func normalizeTags(tags []string) []string {
	out := []string{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if strings.HasPrefix(t, "#") {
			out = append(out, t)
		}
	}
	return out
}

// Create validates the input and persists a new note attributed to actor.
func (s *Service) Create(ctx context.Context, actor identity.Identity, in NoteInput) (*Note, error) {
	if err := s.checkInput(&in); err != nil {
		return nil, err
	}

	note := &Note{
		Title:    in.Title,
		Content:  in.Content,
		Category: in.Category,
		Tags:     in.Tags,
		UID:      actor.UID,
		Creator:  actor.DisplayName(),
	}

	if err := s.store.Insert(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Get retrieves a note by its hex id.
func (s *Service) Get(ctx context.Context, id string) (*Note, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNoteNotFound
	}
	return s.store.FindByID(ctx, oid)
}

// List retrieves all notes in the requested order, optionally restricted
// to a tag.
func (s *Service) List(ctx context.Context, q ListQuery) ([]*Note, error) {
	return s.store.List(ctx, q)
}

// ListPage retrieves one page of notes with an opaque resume cursor.
func (s *Service) ListPage(ctx context.Context, q PageQuery) (*Page, error) {
	return s.store.ListPage(ctx, q)
}

// History retrieves a note's edit history, newest first. An unknown or
// malformed id is just absence: an empty slice.
func (s *Service) History(ctx context.Context, id string) ([]*HistoryEntry, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return []*HistoryEntry{}, nil
	}
	return s.store.HistoryByNote(ctx, oid)
}

// Update overwrites a note's mutable fields, first recording the prior
// state as a history entry stamped with the actor and a server timestamp.
// The history append precedes the overwrite so the snapshot always shows
// the state being replaced; the two writes are not atomic, and concurrent
// updates may record a stale transition (last overwrite wins).
func (s *Service) Update(ctx context.Context, actor identity.Identity, id string, in NoteInput) error {
	if err := s.checkInput(&in); err != nil {
		return err
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNoteNotFound
	}

	prev, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return err
	}

	editor, editorName := editorOf(actor)
	entry := &HistoryEntry{
		NoteID:     prev.ID,
		Title:      prev.Title,
		Content:    prev.Content,
		Category:   prev.Category,
		Tags:       prev.Tags,
		Editor:     editor,
		EditorName: editorName,
	}
	if err := s.store.AppendHistory(ctx, entry); err != nil {
		return err
	}

	return s.store.UpdateFields(ctx, oid, in)
}

// Delete removes a note and its history. Deletion is idempotent at the top
// level: an absent or malformed id succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	return s.store.Delete(ctx, oid)
}

// Backfill runs the one-time tags sweep and returns how many notes it
// patched.
func (s *Service) Backfill(ctx context.Context) (int, error) {
	return s.store.BackfillTags(ctx)
}
