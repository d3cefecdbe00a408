package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gonotes/notes-service/internal/errs"
	"github.com/gonotes/notes-service/internal/storage"
	"github.com/gonotes/notes-service/internal/tokens"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const goodToken = "test_token"

type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

func newTestService(t fataler, clock Clock) (Service, storage.Store) {
	t.Helper()
	ctx := context.Background()
	records := storage.NewMemoryStore()
	tokStore := storage.NewMemoryStore()
	auth := tokens.NewRepository(tokStore, "tokens")
	if _, err := auth.EnsureDefault(ctx, "user", goodToken); err != nil {
		t.Fatalf("EnsureDefault: %v", err)
	}
	return New(records, auth, clock), records
}

func TestCreateThenGetContent(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	id, err := svc.Create(ctx, goodToken, "hello")
	require.NoError(t, err)
	require.NotEmpty(t, id)
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	require.Equal(t, uuid.Version(4), parsed.Version())

	c, err := svc.GetContent(ctx, goodToken, id)
	require.NoError(t, err)
	require.Equal(t, id, c.ID)
	require.Equal(t, "hello", c.Text)
}

func TestTimestamps(t *testing.T) {
	clock := NewFakeClock(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	svc, _ := newTestService(t, clock)
	ctx := context.Background()

	id, err := svc.Create(ctx, goodToken, "a")
	require.NoError(t, err)
	info, err := svc.GetInfo(ctx, goodToken, id)
	require.NoError(t, err)
	require.True(t, info.CreatedAt.Equal(info.UpdatedAt))
	require.Equal(t, time.UTC, info.CreatedAt.Location())

	clock.Advance(time.Second)
	require.NoError(t, svc.Update(ctx, goodToken, id, "b"))
	info2, err := svc.GetInfo(ctx, goodToken, id)
	require.NoError(t, err)
	require.True(t, info2.CreatedAt.Equal(info.CreatedAt))
	require.True(t, info2.UpdatedAt.After(info2.CreatedAt))
	require.True(t, info2.UpdatedAt.Equal(clock.Now()))
}

func TestUpdate_AdvancesWithFrozenClock(t *testing.T) {
	clock := NewFakeClock(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	svc, _ := newTestService(t, clock)
	ctx := context.Background()

	id, err := svc.Create(ctx, goodToken, "a")
	require.NoError(t, err)
	require.NoError(t, svc.Update(ctx, goodToken, id, "b"))
	info, err := svc.GetInfo(ctx, goodToken, id)
	require.NoError(t, err)
	require.True(t, info.UpdatedAt.After(info.CreatedAt))
}

func TestMissingNote(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	id := uuid.NewString()

	_, err := svc.GetContent(ctx, goodToken, id)
	require.True(t, errs.Is(err, errs.NotFound))
	_, err = svc.GetInfo(ctx, goodToken, id)
	require.True(t, errs.Is(err, errs.NotFound))
	err = svc.Update(ctx, goodToken, id, "x")
	require.True(t, errs.Is(err, errs.NotFound))
	err = svc.Delete(ctx, goodToken, id)
	require.True(t, errs.Is(err, errs.NotFound))
	require.Equal(t, MsgNotFound, errs.MessageOf(err))

	// ids that cannot name a record are simply absent
	_, err = svc.GetContent(ctx, goodToken, "..")
	require.True(t, errs.Is(err, errs.NotFound))
}

func TestBadTokenShortCircuits(t *testing.T) {
	svc, records := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "nope", "x")
	require.True(t, errs.Is(err, errs.Unauthorized))
	keys, err := records.Keys(ctx)
	require.NoError(t, err)
	require.Empty(t, keys, "unauthorized create must not write")

	id, err := svc.Create(ctx, goodToken, "x")
	require.NoError(t, err)

	_, err = svc.GetContent(ctx, "nope", id)
	require.True(t, errs.Is(err, errs.Unauthorized))
	_, err = svc.GetInfo(ctx, "nope", id)
	require.True(t, errs.Is(err, errs.Unauthorized))
	require.True(t, errs.Is(svc.Update(ctx, "nope", id, "y"), errs.Unauthorized))
	require.True(t, errs.Is(svc.Delete(ctx, "nope", id), errs.Unauthorized))
	_, err = svc.List(ctx, "nope")
	require.True(t, errs.Is(err, errs.Unauthorized))

	// unauthorized on a missing id is still 401, not 404
	_, err = svc.GetContent(ctx, "nope", uuid.NewString())
	require.True(t, errs.Is(err, errs.Unauthorized))

	c, err := svc.GetContent(ctx, goodToken, id)
	require.NoError(t, err)
	require.Equal(t, "x", c.Text)
}

func TestDeleteRemovesFromList(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	empty, err := svc.List(ctx, goodToken)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	a, err := svc.Create(ctx, goodToken, "a")
	require.NoError(t, err)
	b, err := svc.Create(ctx, goodToken, "b")
	require.NoError(t, err)

	ids, err := svc.List(ctx, goodToken)
	require.NoError(t, err)
	sort.Strings(ids)
	want := []string{a, b}
	sort.Strings(want)
	require.Equal(t, want, ids)

	require.NoError(t, svc.Delete(ctx, goodToken, a))
	_, err = svc.GetContent(ctx, goodToken, a)
	require.True(t, errs.Is(err, errs.NotFound))
	ids, err = svc.List(ctx, goodToken)
	require.NoError(t, err)
	require.Equal(t, []string{b}, ids)
}

func TestConcurrentUpdatesKeepRecordIntact(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	id, err := svc.Create(ctx, goodToken, "start")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.Update(ctx, goodToken, id, "v")
		}()
	}
	wg.Wait()

	c, err := svc.GetContent(ctx, goodToken, id)
	require.NoError(t, err)
	require.Equal(t, "v", c.Text)
	info, err := svc.GetInfo(ctx, goodToken, id)
	require.NoError(t, err)
	require.True(t, info.UpdatedAt.After(info.CreatedAt))
}

func testCreateGetRoundtrip(t *rapid.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	text := rapid.String().Draw(t, "text")

	id, err := svc.Create(ctx, goodToken, text)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	c, err := svc.GetContent(ctx, goodToken, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c.Text != text || c.ID != id {
		t.Fatalf("roundtrip mismatch: got=%+v want text=%q id=%q", c, text, id)
	}
}

func TestCreateGetRoundtrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testCreateGetRoundtrip)
}
