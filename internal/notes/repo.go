package notes

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

const backfillWorkers = 8

type Repo struct {
	notes   *mongo.Collection
	history *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{
		notes:   db.Collection("notes"),
		history: db.Collection("note_history"),
	}
}

// EnsureIndexes creates the indexes the list and history queries sort on
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	noteIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "title", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	}
	if _, err := r.notes.Indexes().CreateMany(ctx, noteIndexes); err != nil {
		return storeErr("create note indexes", err)
	}

	historyIndexes := []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "note_id", Value: 1},
			{Key: "timestamp", Value: -1},
		}},
	}
	if _, err := r.history.Indexes().CreateMany(ctx, historyIndexes); err != nil {
		return storeErr("create history indexes", err)
	}
	return nil
}

// normalizeSort coerces the caller's sort parameters to the supported set.
// Unknown fields fall back to timestamp, anything other than "asc" falls
// back to descending.
func normalizeSort(sortBy, order string) (field string, dir int) {
	switch sortBy {
	case "title", "category", "timestamp":
		field = sortBy
	default:
		field = "timestamp"
	}
	if order == "asc" {
		return field, 1
	}
	return field, -1
}

// Insert persists a new note, assigning its id and creation timestamp.
func (r *Repo) Insert(ctx context.Context, n *Note) error {
	n.ID = primitive.NewObjectID()
	n.Timestamp = time.Now().UTC()
	if n.Tags == nil {
		n.Tags = []string{}
	}

	if _, err := r.notes.InsertOne(ctx, n); err != nil {
		return storeErr("insert note", err)
	}
	return nil
}

// FindByID retrieves a single note.
func (r *Repo) FindByID(ctx context.Context, id primitive.ObjectID) (*Note, error) {
	var note Note
	err := r.notes.FindOne(ctx, bson.M{"_id": id}).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, storeErr("find note", err)
	}
	return &note, nil
}

// List retrieves all notes in the requested order. A tag filter restricts
// the result to notes whose tags array contains the exact token.
func (r *Repo) List(ctx context.Context, q ListQuery) ([]*Note, error) {
	field, dir := normalizeSort(q.SortBy, q.Order)

	filter := bson.M{}
	if q.Tag != "" {
		filter["tags"] = q.Tag
	}

	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}})

	cur, err := r.notes.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr("list notes", err)
	}
	defer cur.Close(ctx)

	notes := []*Note{}
	if err := cur.All(ctx, &notes); err != nil {
		return nil, storeErr("decode notes", err)
	}
	return notes, nil
}

// ListPage retrieves one page of notes. The cursor, when present, is the
// resume point encoded by a previous call; ties on the sort key are broken
// by document id in the same direction so the chain never skips or repeats.
func (r *Repo) ListPage(ctx context.Context, q PageQuery) (*Page, error) {
	field, dir := normalizeSort(q.SortBy, q.Order)
	order := "desc"
	if dir == 1 {
		order = "asc"
	}

	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}

	filter := bson.M{}
	if q.Tag != "" {
		filter["tags"] = q.Tag
	}

	if q.Cursor != "" {
		value, lastID, err := decodeCursor(q.Cursor, field, order)
		if err != nil {
			return nil, err
		}
		op := "$lt"
		if dir == 1 {
			op = "$gt"
		}
		filter["$or"] = bson.A{
			bson.M{field: bson.M{op: value}},
			bson.M{field: value, "_id": bson.M{op: lastID}},
		}
	}

	opts := options.Find().
		SetLimit(int64(q.Limit) + 1).
		SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}})

	cur, err := r.notes.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr("list notes page", err)
	}
	defer cur.Close(ctx)

	notes := []*Note{}
	if err := cur.All(ctx, &notes); err != nil {
		return nil, storeErr("decode notes page", err)
	}

	page := &Page{PrevPage: q.Cursor != ""}
	if len(notes) > q.Limit {
		page.NextPage = true
		notes = notes[:q.Limit]
	}
	page.Notes = notes

	if page.NextPage && len(notes) > 0 {
		token, err := encodeCursor(field, order, notes[len(notes)-1])
		if err != nil {
			return nil, storeErr("encode cursor", err)
		}
		page.NextCursor = token
	}
	return page, nil
}

// HistoryByNote retrieves a note's edit history, newest first. Absence is
// an empty slice, not an error.
func (r *Repo) HistoryByNote(ctx context.Context, noteID primitive.ObjectID) ([]*HistoryEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cur, err := r.history.Find(ctx, bson.M{"note_id": noteID}, opts)
	if err != nil {
		return nil, storeErr("list history", err)
	}
	defer cur.Close(ctx)

	entries := []*HistoryEntry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, storeErr("decode history", err)
	}
	return entries, nil
}

// AppendHistory records one immutable history entry, assigning its id and
// server timestamp.
func (r *Repo) AppendHistory(ctx context.Context, e *HistoryEntry) error {
	e.ID = primitive.NewObjectID()
	e.Timestamp = time.Now().UTC()
	if e.Tags == nil {
		e.Tags = []string{}
	}

	if _, err := r.history.InsertOne(ctx, e); err != nil {
		return storeErr("append history", err)
	}
	return nil
}

// UpdateFields overwrites a note's mutable fields in place. The creation
// timestamp is left untouched.
func (r *Repo) UpdateFields(ctx context.Context, id primitive.ObjectID, in NoteInput) error {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	update := bson.M{"$set": bson.M{
		"title":    in.Title,
		"content":  in.Content,
		"category": in.Category,
		"tags":     tags,
	}}

	if _, err := r.notes.UpdateByID(ctx, id, update); err != nil {
		return storeErr("update note", err)
	}
	return nil
}

// Delete removes a note and then its history entries. Deleting an absent
// note succeeds; a history cascade failure is reported without restoring
// the note.
func (r *Repo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.notes.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return storeErr("delete note", err)
	}
	if _, err := r.history.DeleteMany(ctx, bson.M{"note_id": id}); err != nil {
		return storeErr("delete note history", err)
	}
	return nil
}

// BackfillTags sets tags to an empty array on every note missing the
// field. Each note is patched independently, so a run racing user edits
// touches each document at most once and a rerun is a no-op. Returns the
// number of notes patched.
func (r *Repo) BackfillTags(ctx context.Context) (int, error) {
	cur, err := r.notes.Find(ctx,
		bson.M{"tags": bson.M{"$exists": false}},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, storeErr("find notes without tags", err)
	}
	defer cur.Close(ctx)

	var ids []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &ids); err != nil {
		return 0, storeErr("decode backfill candidates", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(backfillWorkers)
	for _, doc := range ids {
		id := doc.ID
		g.Go(func() error {
			_, err := r.notes.UpdateByID(gctx, id, bson.M{"$set": bson.M{"tags": []string{}}})
			if err != nil {
				return storeErr("backfill note tags", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(ids), nil
}
