// internal/app/system/paging/paging.go
package paging

import (
	"errors"
	"net/http"
	"strconv"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultLimit is the page size when ?limit is absent.
	DefaultLimit = 50
	// MaxLimit caps ?limit.
	MaxLimit = 200
)

// NextCursorHeader carries the cursor for the following page, so list
// bodies can stay plain JSON arrays.
const NextCursorHeader = "X-Next-Cursor"

// ErrBadCursor is returned for an ?after value that does not decode.
var ErrBadCursor = errors.New("invalid page cursor")

// ParseLimit reads ?limit. Missing or unparsable values give DefaultLimit;
// values are clamped to [1, MaxLimit].
func ParseLimit(r *http.Request) int {
	s := query.Get(r, "limit")
	if s == "" {
		return DefaultLimit
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return DefaultLimit
	}
	return clamp(n)
}

func clamp(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxLimit:
		return MaxLimit
	}
	return n
}

// Keyset is a forward page over documents ordered by (SortField, _id).
type Keyset struct {
	SortField string
	Limit     int
	cursor    *wafflemongo.Cursor
}

// NewKeyset decodes after (empty for the first page). A zero limit means
// DefaultLimit.
func NewKeyset(sortField, after string, limit int) (Keyset, error) {
	if limit == 0 {
		limit = DefaultLimit
	}
	k := Keyset{SortField: sortField, Limit: clamp(limit)}
	if after == "" {
		return k, nil
	}
	c, ok := wafflemongo.DecodeCursor(after)
	if !ok {
		return Keyset{}, ErrBadCursor
	}
	k.cursor = &c
	return k, nil
}

// Filter combines base with the keyset window.
func (k Keyset) Filter(base bson.M) bson.M {
	if k.cursor == nil {
		return base
	}
	window := wafflemongo.KeysetWindow(k.SortField, "gt", k.cursor.CI, k.cursor.ID)
	if len(base) == 0 {
		return window
	}
	return bson.M{"$and": []bson.M{base, window}}
}

// FindOptions sorts ascending and fetches one extra row to detect a next page.
func (k Keyset) FindOptions() *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: k.SortField, Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(k.Limit + 1))
}

// Trim drops the look-ahead row and returns the cursor for the next page,
// or "" when rows was the last page.
func Trim[T any](k Keyset, rows *[]T, keyFn func(T) string, idFn func(T) primitive.ObjectID) string {
	if len(*rows) <= k.Limit {
		return ""
	}
	*rows = (*rows)[:k.Limit]
	last := (*rows)[k.Limit-1]
	return wafflemongo.EncodeCursor(keyFn(last), idFn(last))
}
