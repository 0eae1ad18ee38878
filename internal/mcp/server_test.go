package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"noteeasy/internal/notes"
)

// stubStore is an in-memory notes.Store so the tool handlers run against a
// real notes.Service without a live Mongo.
type stubStore struct {
	notes   map[primitive.ObjectID]*notes.Note
	history map[primitive.ObjectID][]*notes.HistoryEntry
	lastTS  time.Time
}

func newStubStore() *stubStore {
	return &stubStore{
		notes:   map[primitive.ObjectID]*notes.Note{},
		history: map[primitive.ObjectID][]*notes.HistoryEntry{},
	}
}

func (s *stubStore) Insert(_ context.Context, n *notes.Note) error {
	n.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if !now.After(s.lastTS) {
		now = s.lastTS.Add(time.Nanosecond)
	}
	s.lastTS = now
	n.Timestamp = now
	if n.Tags == nil {
		n.Tags = []string{}
	}
	clone := *n
	s.notes[n.ID] = &clone
	return nil
}

func (s *stubStore) FindByID(_ context.Context, id primitive.ObjectID) (*notes.Note, error) {
	n, ok := s.notes[id]
	if !ok {
		return nil, notes.ErrNoteNotFound
	}
	clone := *n
	return &clone, nil
}

func (s *stubStore) List(_ context.Context, q notes.ListQuery) ([]*notes.Note, error) {
	out := []*notes.Note{}
	for _, n := range s.notes {
		out = append(out, n)
	}
	return out, nil
}

func (s *stubStore) ListPage(ctx context.Context, q notes.PageQuery) (*notes.Page, error) {
	all, err := s.List(ctx, q.ListQuery)
	if err != nil {
		return nil, err
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	page := &notes.Page{Notes: all, PrevPage: q.Cursor != ""}
	if len(all) > q.Limit {
		page.NextPage = true
		page.Notes = all[:q.Limit]
	}
	return page, nil
}

func (s *stubStore) HistoryByNote(_ context.Context, noteID primitive.ObjectID) ([]*notes.HistoryEntry, error) {
	entries := s.history[noteID]
	if entries == nil {
		entries = []*notes.HistoryEntry{}
	}
	return entries, nil
}

func (s *stubStore) AppendHistory(_ context.Context, e *notes.HistoryEntry) error {
	e.ID = primitive.NewObjectID()
	e.Timestamp = time.Now().UTC()
	clone := *e
	s.history[e.NoteID] = append(s.history[e.NoteID], &clone)
	return nil
}

func (s *stubStore) UpdateFields(_ context.Context, id primitive.ObjectID, in notes.NoteInput) error {
	n, ok := s.notes[id]
	if !ok {
		return nil
	}
	n.Title = in.Title
	n.Content = in.Content
	n.Category = in.Category
	n.Tags = in.Tags
	return nil
}

func (s *stubStore) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(s.notes, id)
	delete(s.history, id)
	return nil
}

func (s *stubStore) BackfillTags(_ context.Context) (int, error) { return 0, nil }

func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "tool result should be text")
	return tc.Text
}

func TestCreateNoteTool(t *testing.T) {
	store := newStubStore()
	svc := notes.NewService(store)

	res, err := handleCreateNote(svc)(context.Background(), callReq(map[string]any{
		"title":    "Shopping",
		"content":  "Milk, eggs",
		"category": "personal",
		"tags":     []any{"#home"},
		"editor":   "Alice",
	}))
	require.NoError(t, err)

	var created notes.Note
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &created))
	require.Equal(t, "Shopping", created.Title)
	require.Equal(t, []string{"#home"}, created.Tags)
	require.Equal(t, "Alice", created.Creator, "declared editor attributes the note")
	require.Contains(t, store.notes, created.ID)
}

func TestCreateNoteTool_MissingField(t *testing.T) {
	svc := notes.NewService(newStubStore())

	res, err := handleCreateNote(svc)(context.Background(), callReq(map[string]any{
		"title": "Shopping", "content": "Milk",
	}))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestListNotesTool_Limit(t *testing.T) {
	store := newStubStore()
	svc := notes.NewService(store)
	for range 3 {
		require.NoError(t, store.Insert(context.Background(), &notes.Note{
			Title: "t", Content: "c", Category: "k",
		}))
	}

	res, err := handleListNotes(svc)(context.Background(), callReq(map[string]any{
		"limit": float64(2),
	}))
	require.NoError(t, err)

	var page notes.Page
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &page))
	require.Len(t, page.Notes, 2, "listing is capped at the requested limit")
	require.True(t, page.NextPage)
}

func TestGetNoteTool(t *testing.T) {
	store := newStubStore()
	svc := notes.NewService(store)
	n := &notes.Note{Title: "t", Content: "c", Category: "k"}
	require.NoError(t, store.Insert(context.Background(), n))

	res, err := handleGetNote(svc)(context.Background(), callReq(map[string]any{
		"id": n.ID.Hex(),
	}))
	require.NoError(t, err)

	var got notes.Note
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	require.Equal(t, n.ID, got.ID)

	res, err = handleGetNote(svc)(context.Background(), callReq(map[string]any{
		"id": primitive.NewObjectID().Hex(),
	}))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestUpdateNoteTool(t *testing.T) {
	store := newStubStore()
	svc := notes.NewService(store)
	n := &notes.Note{Title: "old", Content: "c", Category: "k", Tags: []string{}}
	require.NoError(t, store.Insert(context.Background(), n))

	res, err := handleUpdateNote(svc)(context.Background(), callReq(map[string]any{
		"id": n.ID.Hex(), "title": "new", "content": "c2", "category": "k2",
		"editor": "Bob",
	}))
	require.NoError(t, err)
	require.JSONEq(t, `{"success": true}`, resultText(t, res))

	require.Equal(t, "new", store.notes[n.ID].Title)
	require.Len(t, store.history[n.ID], 1, "the edit is recorded")
	require.Equal(t, "old", store.history[n.ID][0].Title)
	require.Equal(t, "Bob", store.history[n.ID][0].EditorName)

	res, err = handleUpdateNote(svc)(context.Background(), callReq(map[string]any{
		"id": primitive.NewObjectID().Hex(), "title": "t", "content": "c", "category": "k",
	}))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestGetHistoryTool_Empty(t *testing.T) {
	svc := notes.NewService(newStubStore())

	res, err := handleGetHistory(svc)(context.Background(), callReq(map[string]any{
		"id": primitive.NewObjectID().Hex(),
	}))
	require.NoError(t, err)

	var entries []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &entries))
	require.Empty(t, entries)
}

func TestDeleteNoteTool_Idempotent(t *testing.T) {
	store := newStubStore()
	svc := notes.NewService(store)
	n := &notes.Note{Title: "t", Content: "c", Category: "k"}
	require.NoError(t, store.Insert(context.Background(), n))

	res, err := handleDeleteNote(svc)(context.Background(), callReq(map[string]any{
		"id": n.ID.Hex(),
	}))
	require.NoError(t, err)
	require.JSONEq(t, `{"success": true}`, resultText(t, res))
	require.Empty(t, store.notes)

	// already gone, still fine
	res, err = handleDeleteNote(svc)(context.Background(), callReq(map[string]any{
		"id": n.ID.Hex(),
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
}
