package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var tourFields = map[string]Kind{
	"name":       String,
	"duration":   Number,
	"difficulty": String,
	"price":      Number,
	"secret":     Bool,
	"owner_id":   ObjectID,
}

func TestShaper_Filter(t *testing.T) {
	t.Run("equality", func(t *testing.T) {
		s := NewShaper(tourFields).Filter(map[string]string{"difficulty": "easy"})
		require.NoError(t, s.Err())
		assert.Equal(t, bson.M{"difficulty": "easy"}, s.Criteria())
	})

	t.Run("numbers are typed", func(t *testing.T) {
		s := NewShaper(tourFields).Filter(map[string]string{"duration": "5"})
		require.NoError(t, s.Err())
		assert.Equal(t, bson.M{"duration": float64(5)}, s.Criteria())
	})

	t.Run("range operators rewrite to driver syntax", func(t *testing.T) {
		s := NewShaper(tourFields).Filter(map[string]string{
			"price[gte]": "500",
			"price[lt]":  "2000",
		})
		require.NoError(t, s.Err())
		assert.Equal(t, bson.M{
			"price": bson.M{"$gte": float64(500), "$lt": float64(2000)},
		}, s.Criteria())
	})

	t.Run("object ids parse from hex", func(t *testing.T) {
		id := bson.NewObjectID()
		s := NewShaper(tourFields).Filter(map[string]string{"owner_id": id.Hex()})
		require.NoError(t, s.Err())
		assert.Equal(t, bson.M{"owner_id": id}, s.Criteria())
	})

	t.Run("reserved names never filter", func(t *testing.T) {
		s := NewShaper(tourFields).Filter(map[string]string{
			"page":  "2",
			"sort":  "price",
			"limit": "5",
			"name":  "The Forest Hiker",
		})
		require.NoError(t, s.Err())
		assert.Equal(t, bson.M{"name": "The Forest Hiker"}, s.Criteria())
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		s := NewShaper(tourFields).Filter(map[string]string{"password_hash": "x"})
		assert.ErrorIs(t, s.Err(), ErrUnknownField)
	})

	t.Run("unknown operator rejected", func(t *testing.T) {
		s := NewShaper(tourFields).Filter(map[string]string{"price[regex]": ".*"})
		assert.ErrorIs(t, s.Err(), ErrBadOperator)
	})

	t.Run("unparsable value rejected", func(t *testing.T) {
		s := NewShaper(tourFields).Filter(map[string]string{"duration": "soon"})
		assert.ErrorIs(t, s.Err(), ErrBadValue)
	})

	t.Run("known operator with unparsable value is a value error", func(t *testing.T) {
		s := NewShaper(tourFields).Filter(map[string]string{"price[gte]": "cheap"})
		assert.ErrorIs(t, s.Err(), ErrBadValue)
	})

	t.Run("bad object id rejected", func(t *testing.T) {
		s := NewShaper(tourFields).Filter(map[string]string{"owner_id": "nothex"})
		assert.ErrorIs(t, s.Err(), ErrBadValue)
	})
}

func TestShaper_Sort(t *testing.T) {
	t.Run("default is newest first", func(t *testing.T) {
		s := NewShaper(tourFields).Sort("")
		require.NoError(t, s.Err())
		opts := s.FindOptions()
		require.NotNil(t, opts)
	})

	t.Run("minus prefix means descending", func(t *testing.T) {
		s := NewShaper(tourFields).Sort("-price,name")
		require.NoError(t, s.Err())
	})

	t.Run("unknown sort field rejected", func(t *testing.T) {
		s := NewShaper(tourFields).Sort("salary")
		assert.ErrorIs(t, s.Err(), ErrBadSortField)
	})

	t.Run("timestamps always sortable", func(t *testing.T) {
		s := NewShaper(tourFields).Sort("-created_at")
		assert.NoError(t, s.Err())
	})
}

func TestShaper_Project(t *testing.T) {
	t.Run("unknown projection field rejected", func(t *testing.T) {
		s := NewShaper(tourFields).Project("name,salary")
		assert.ErrorIs(t, s.Err(), ErrBadProjection)
	})

	t.Run("known fields accepted", func(t *testing.T) {
		s := NewShaper(tourFields).Project("name,price")
		assert.NoError(t, s.Err())
	})
}

func TestShaper_Paginate(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		wantPage  int64
		wantLimit int64
	}{
		{"defaults", "", "", 1, DefaultLimit},
		{"explicit window", "3", "10", 3, 10},
		{"garbage fails open", "abc", "-5", 1, DefaultLimit},
		{"zero page fails open", "0", "10", 1, 10},
		{"oversized limit clamped", "1", "100000", 1, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewShaper(tourFields).Paginate(tt.page, tt.limit)
			require.NoError(t, s.Err())
			assert.Equal(t, tt.wantPage, s.Page())
			assert.Equal(t, tt.wantLimit, s.Limit())
			assert.Equal(t, (tt.wantPage-1)*tt.wantLimit, s.Skip())
		})
	}
}

func TestShaper_ErrSticks(t *testing.T) {
	s := NewShaper(tourFields).Apply(map[string]string{
		"bogus": "1",
		"sort":  "price",
		"page":  "2",
	})
	assert.ErrorIs(t, s.Err(), ErrUnknownField)
	// Later stages ran but the first error is the one reported.
	assert.True(t, IsShapeError(s.Err()))
}

func TestSplitKey(t *testing.T) {
	tests := []struct {
		in        string
		wantField string
		wantOp    string
	}{
		{"price", "price", ""},
		{"price[gte]", "price", "gte"},
		{"price[", "price[", ""},
		{"[gte]", "", "gte"},
	}
	for _, tt := range tests {
		field, op := splitKey(tt.in)
		assert.Equal(t, tt.wantField, field, tt.in)
		assert.Equal(t, tt.wantOp, op, tt.in)
	}
}
