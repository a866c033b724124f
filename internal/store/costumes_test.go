package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costumeconnections/costumes/internal/db"
	"github.com/costumeconnections/costumes/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewWithDB(db.NewTestDB(t))
}

func witchHat(status string) model.Costume {
	return model.Costume{
		Status:      status,
		FirstName:   "Agatha",
		LastName:    "Harkness",
		Email:       "agatha@example.com",
		City:        "Westview",
		ImageURL:    "https://example.com/hat.jpg",
		Title:       "Witch Hat",
		Price:       "12",
		Size:        "M",
		Style:       "Classic",
		Description: "Pointy, slightly singed.",
	}
}

// fields strips store-managed values so records can be compared by content.
func fields(c model.Costume) model.Costume {
	c.ID = ""
	c.CreatedAt = time.Time{}
	c.UpdatedAt = time.Time{}
	return c
}

func TestCreateAndGetCostume(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := witchHat(model.StatusPending)
	id, err := s.Create(ctx, in)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err, "expected a UUID id, got %q", id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, fields(in), fields(*got))
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCreateIgnoresSuppliedID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := witchHat(model.StatusPending)
	in.ID = "00000000-0000-0000-0000-000000000001"

	id, err := s.Create(ctx, in)
	require.NoError(t, err)
	assert.NotEqual(t, in.ID, id)

	got, _ := s.Get(ctx, in.ID)
	assert.Nil(t, got)
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for range 20 {
		id, err := s.Create(ctx, witchHat(model.StatusPending))
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestListByStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var approved []string
	for i, status := range []string{model.StatusApproved, model.StatusPending, "weird", model.StatusApproved, model.StatusSold} {
		c := witchHat(status)
		c.Title = c.Title + " " + string(rune('A'+i))
		id, err := s.Create(ctx, c)
		require.NoError(t, err)
		if status == model.StatusApproved {
			approved = append(approved, id)
		}
	}

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	public, err := s.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, public, 2)
	for i, c := range public {
		assert.Equal(t, model.StatusApproved, c.Status)
		assert.Equal(t, approved[i], c.ID, "approved costumes should come back in insertion order")
	}
}

func TestListsInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	titles := []string{"Zorro Mask", "Astronaut Suit", "Mummy Wraps"}
	for _, title := range titles {
		c := witchHat(model.StatusApproved)
		c.Title = title
		_, err := s.Create(ctx, c)
		require.NoError(t, err)
	}

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, c := range all {
		assert.Equal(t, titles[i], c.Title)
	}
}

func TestListsEmptyNotNil(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	_, err = s.Create(ctx, witchHat(model.StatusPending))
	require.NoError(t, err)

	public, err := s.ListApproved(ctx)
	require.NoError(t, err)
	assert.NotNil(t, public)
	assert.Empty(t, public)
}

func TestGetMalformedAndUnknownID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"", "abc", "65a1b2c3d4e5f6a7b8c9d0e1", "'; DROP TABLE costumes; --", uuid.NewString()} {
		got, err := s.Get(ctx, id)
		assert.NoError(t, err, "Get(%q)", id)
		assert.Nil(t, got, "Get(%q)", id)
	}
}

func TestGetAcceptsNonCanonicalID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, witchHat(model.StatusPending))
	require.NoError(t, err)

	got, err := s.Get(ctx, "{"+id+"}")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
}

func TestUpdateReplacesAllFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, witchHat(model.StatusPending))
	require.NoError(t, err)

	// Blank fields in the replacement must blank the stored values too.
	replacement := model.Costume{Status: model.StatusApproved, Title: "Wizard Robe", Price: "30"}
	n, err := s.Update(ctx, id, replacement)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, fields(replacement), fields(*got))
	assert.Equal(t, id, got.ID)
}

func TestUpdateUnknownID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	original := witchHat(model.StatusPending)
	id, err := s.Create(ctx, original)
	require.NoError(t, err)

	for _, other := range []string{uuid.NewString(), "not-an-id", ""} {
		n, err := s.Update(ctx, other, witchHat(model.StatusApproved))
		assert.NoError(t, err)
		assert.EqualValues(t, 0, n)
	}

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, fields(original), fields(*got))
}

func TestDeleteCostume(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, witchHat(model.StatusApproved))
	require.NoError(t, err)
	keep, err := s.Create(ctx, witchHat(model.StatusApproved))
	require.NoError(t, err)

	n, err := s.Delete(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is a no-op.
	n, err = s.Delete(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep, all[0].ID)
}

func TestDeleteUnknownID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, witchHat(model.StatusPending))
	require.NoError(t, err)

	for _, id := range []string{uuid.NewString(), "garbage"} {
		n, err := s.Delete(ctx, id)
		assert.NoError(t, err)
		assert.EqualValues(t, 0, n)
	}

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLazyOpenOnce(t *testing.T) {
	d := db.NewTestDB(t)
	calls := 0
	s := New(func(context.Context) (*db.DB, error) {
		calls++
		return d, nil
	})
	ctx := context.Background()

	assert.Equal(t, 0, calls, "New must not open the database")

	_, err := s.Create(ctx, witchHat(model.StatusPending))
	require.NoError(t, err)
	_, err = s.ListAll(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))

	assert.Equal(t, 1, calls)
}

func TestLazyOpenRetriesAfterFailure(t *testing.T) {
	d := db.NewTestDB(t)
	fail := true
	s := New(func(context.Context) (*db.DB, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return d, nil
	})
	ctx := context.Background()

	_, err := s.ListAll(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	fail = false
	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
