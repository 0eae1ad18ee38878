package notes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCursor_RoundTrip_Timestamp(t *testing.T) {
	last := &Note{
		ID:        primitive.NewObjectID(),
		Timestamp: time.Date(2024, 11, 2, 10, 30, 0, 123456789, time.UTC),
	}

	token, err := encodeCursor("timestamp", "desc", last)
	require.NoError(t, err)

	value, lastID, err := decodeCursor(token, "timestamp", "desc")
	require.NoError(t, err)
	require.Equal(t, last.ID, lastID)
	require.Equal(t, last.Timestamp, value)
}

func TestCursor_RoundTrip_Title(t *testing.T) {
	last := &Note{ID: primitive.NewObjectID(), Title: "Shopping"}

	token, err := encodeCursor("title", "asc", last)
	require.NoError(t, err)

	value, lastID, err := decodeCursor(token, "title", "asc")
	require.NoError(t, err)
	require.Equal(t, last.ID, lastID)
	require.Equal(t, "Shopping", value)
}

func TestCursor_RejectsGarbage(t *testing.T) {
	_, _, err := decodeCursor("!!not-base64!!", "timestamp", "desc")
	require.True(t, IsValidation(err))

	_, _, err = decodeCursor("bm90IGpzb24", "timestamp", "desc")
	require.True(t, IsValidation(err))
}

func TestCursor_RejectsOrderingMismatch(t *testing.T) {
	last := &Note{ID: primitive.NewObjectID(), Timestamp: time.Now().UTC()}
	token, err := encodeCursor("timestamp", "desc", last)
	require.NoError(t, err)

	_, _, err = decodeCursor(token, "timestamp", "asc")
	require.True(t, IsValidation(err), "a page chain cannot switch direction")

	_, _, err = decodeCursor(token, "title", "desc")
	require.True(t, IsValidation(err), "a page chain cannot switch sort field")
}

func TestNormalizeSort(t *testing.T) {
	cases := []struct {
		sortBy, order string
		wantField     string
		wantDir       int
	}{
		{"", "", "timestamp", -1},
		{"timestamp", "desc", "timestamp", -1},
		{"title", "asc", "title", 1},
		{"category", "asc", "category", 1},
		{"timestamp", "sideways", "timestamp", -1}, // anything not asc/desc means desc
		{"creator", "asc", "timestamp", 1},         // unsupported field falls back
	}
	for _, tc := range cases {
		field, dir := normalizeSort(tc.sortBy, tc.order)
		require.Equal(t, tc.wantField, field, "sortBy=%q", tc.sortBy)
		require.Equal(t, tc.wantDir, dir, "order=%q", tc.order)
	}
}
