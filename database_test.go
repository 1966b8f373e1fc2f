package firemock

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest-fire/firemock-sub000/internal/testutil"
)

func newTestDB(opts ...Option) *Database {
	opts = append([]Option{WithDelay(NoDelay()), WithPushIDs(SequentialPushIDs(""))}, opts...)
	return New(opts...)
}

func seedPeople(t *testing.T, db *Database) {
	t.Helper()
	require.NoError(t, db.Set("people", testutil.People()))
}

func keysOf(snap *Snapshot) []string {
	var keys []string
	snap.ForEach(func(child *Snapshot) bool {
		keys = append(keys, child.Key())
		return false
	})
	return keys
}

func TestDatabase_SetGet(t *testing.T) {
	db := newTestDB()
	require.NoError(t, db.Set("/a/b/", map[string]any{"n": 1, "s": "x"}))

	assert.Equal(t, map[string]any{"n": 1.0, "s": "x"}, db.Get("a.b"))
	assert.True(t, db.Exists("a/b/n"))
}

func TestDatabase_SetNilRemoves(t *testing.T) {
	db := newTestDB()
	require.NoError(t, db.Set("x", map[string]any{"a": 1, "b": 2}))
	require.NoError(t, db.Set("x/a", nil))

	assert.Nil(t, db.Get("x/a"))
	assert.Equal(t, map[string]any{"b": 2.0}, db.Get("x"))
}

func TestDatabase_SetRejectsUnsupportedValues(t *testing.T) {
	db := newTestDB()
	err := db.Set("x", map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
	assert.Nil(t, db.Get("x"))
}

func TestDatabase_SliceStoredAsIndexedObject(t *testing.T) {
	db := newTestDB()
	require.NoError(t, db.Set("list", []string{"a", "b"}))
	assert.Equal(t, map[string]any{"0": "a", "1": "b"}, db.Get("list"))
}

func TestDatabase_RemoveLeavesEmptyParent(t *testing.T) {
	db := newTestDB()
	require.NoError(t, db.Set("/x", map[string]any{"a": 1}))
	db.Remove("/x/a")
	assert.Equal(t, map[string]any{}, db.Get("/x"))
}

func TestDatabase_UpdatePreservesOtherFields(t *testing.T) {
	db := newTestDB()
	require.NoError(t, db.Set("u", map[string]any{"name": "ann", "age": 30, "city": "x"}))
	require.NoError(t, db.Update("u", map[string]any{"age": 31, "city": nil}))

	assert.Equal(t, map[string]any{"name": "ann", "age": 31.0}, db.Get("u"))
}

func TestDatabase_PushOrderAndStamp(t *testing.T) {
	db := New(WithDelay(NoDelay()), WithStampIDs(true))
	k1, err := db.Push("list", map[string]any{"n": 1})
	require.NoError(t, err)
	k2, err := db.Push("list", map[string]any{"n": 2})
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
	assert.Less(t, k1, k2)
	assert.Equal(t, map[string]any{"n": 1.0, "id": k1}, db.Get("list/"+k1))

	// Key ordering is descending, so the later push comes first.
	snap, err := db.Ref("list").OrderByKey().Once(Value)
	require.NoError(t, err)
	assert.Equal(t, []string{k2, k1}, keysOf(snap))
}

func TestDatabase_ForEachStripsStampedID(t *testing.T) {
	db := newTestDB(WithStampIDs(true))
	key, err := db.Push("list", map[string]any{"n": 1})
	require.NoError(t, err)

	snap, err := db.Ref("list").Once(Value)
	require.NoError(t, err)
	snap.ForEach(func(child *Snapshot) bool {
		assert.Equal(t, key, child.Key())
		assert.Equal(t, map[string]any{"n": 1.0}, child.Export())
		return false
	})
}

func TestDatabase_ValueListenerTwoWrites(t *testing.T) {
	db := newTestDB()
	var got []any
	_, err := db.Ref("p").On(Value, func(s *Snapshot) { got = append(got, s.Export()) })
	require.NoError(t, err)

	require.NoError(t, db.Set("p", "v1"))
	require.NoError(t, db.Set("p", "v2"))

	assert.Equal(t, []any{"v1", "v2"}, got)
}

func TestDatabase_ChildAddedOncePerNewKey(t *testing.T) {
	db := newTestDB()
	require.NoError(t, db.Set("people/a", map[string]any{"age": 1}))

	var added []string
	_, err := db.Ref("people").On(ChildAdded, func(s *Snapshot) { added = append(added, s.Key()) })
	require.NoError(t, err)

	require.NoError(t, db.Set("people/a", map[string]any{"age": 2}))
	require.NoError(t, db.Set("people/b", map[string]any{"age": 3}))
	require.NoError(t, db.Set("people/b/age", 4))

	assert.Equal(t, []string{"b"}, added)
}

func TestDatabase_MultiPathUpdateOneCallback(t *testing.T) {
	db := newTestDB()
	calls := 0
	_, err := db.Ref("root").On(Value, func(*Snapshot) { calls++ })
	require.NoError(t, err)

	require.NoError(t, db.MultiPathUpdate(map[string]any{
		"root/p1": "v1",
		"root/p2": "v2",
	}))

	assert.Equal(t, 1, calls)
	assert.Equal(t, map[string]any{"p1": "v1", "p2": "v2"}, db.Get("root"))
}

func TestDatabase_PeopleQueries(t *testing.T) {
	db := newTestDB()
	seedPeople(t, db)
	people := db.Ref("people")

	snap, err := people.OrderByChild("age").Once(Value)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, keysOf(snap))

	snap, err = people.OrderByChild("age").LimitToFirst(1).Once(Value)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keysOf(snap))

	snap, err = people.StartAt(5, "age").Once(Value)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keysOf(snap))
	assert.False(t, snap.HasChild("c"))
}

func TestDatabase_EqualToKeyWithOrderByKeyFails(t *testing.T) {
	db := newTestDB()
	seedPeople(t, db)

	q := db.Ref("people").OrderByKey().EqualTo(5, "age")
	require.Error(t, q.Err())
	assert.True(t, errors.Is(q.Err(), ErrKeyWithOrderByKey))

	_, err := q.Once(Value)
	assert.ErrorIs(t, err, ErrKeyWithOrderByKey)

	_, err = db.Ref("people").EqualTo(5, "age").OrderByKey().On(Value, nil)
	assert.ErrorIs(t, err, ErrKeyWithOrderByKey)
}

func TestDatabase_QueryErrorsStick(t *testing.T) {
	db := newTestDB()
	q := db.Ref("x").OrderByKey().OrderByValue().LimitToFirst(1)
	assert.ErrorIs(t, q.Err(), ErrOrderAlreadySet)

	q = db.Ref("x").LimitToFirst(1).LimitToLast(1)
	assert.ErrorIs(t, q.Err(), ErrLimitAlreadySet)
}

func TestDatabase_BuildersDoNotMutateReceiver(t *testing.T) {
	db := newTestDB()
	base := db.Ref("people").OrderByChild("age")
	_ = base.LimitToFirst(1)
	assert.Equal(t, "/people.orderByChild(age)", base.String())
}

func TestDatabase_UnknownEventType(t *testing.T) {
	db := newTestDB()
	_, err := db.Ref("x").On(EventType("child_exploded"), nil)
	assert.ErrorIs(t, err, ErrUnknownEventType)

	_, err = db.Ref("x").Once(EventType("nope"))
	assert.ErrorIs(t, err, ErrUnknownEventType)
}

func TestDatabase_Reset(t *testing.T) {
	db := newTestDB()
	seedPeople(t, db)
	_, err := db.Ref("people").On(Value, func(*Snapshot) {})
	require.NoError(t, err)

	db.Reset()

	assert.Equal(t, map[string]any{}, db.Get("/"))
	assert.Equal(t, 0, db.ListenerCount())
}

func TestDatabase_RemoveListener(t *testing.T) {
	db := newTestDB()
	cancelled := 0
	onCancel := OnCancel(func() { cancelled++ })

	id, err := db.Ref("a").On(Value, func(*Snapshot) {}, onCancel)
	require.NoError(t, err)
	_, err = db.Ref("a").On(ChildAdded, func(*Snapshot) {}, onCancel)
	require.NoError(t, err)
	_, err = db.Ref("b").On(ChildAdded, func(*Snapshot) {}, onCancel, ListenerContext("ctx"))
	require.NoError(t, err)

	t.Run("unknown listener is a no-op", func(t *testing.T) {
		assert.Equal(t, 0, db.RemoveListener(Filter{ID: "missing"}))
	})

	t.Run("by callback", func(t *testing.T) {
		assert.Equal(t, 1, db.RemoveListener(Filter{EventType: Value, ID: id}))
		assert.Equal(t, 1, cancelled)
	})

	t.Run("by context", func(t *testing.T) {
		assert.Equal(t, 1, db.RemoveListener(Filter{EventType: ChildAdded, Context: "ctx"}))
		assert.Equal(t, []string{"a"}, db.ListenerPaths())
	})

	t.Run("everything", func(t *testing.T) {
		assert.Equal(t, 1, db.Off())
		assert.Equal(t, 0, db.ListenerCount())
		assert.Equal(t, 3, cancelled)
	})
}

func TestDatabase_RemoveListenerCountsCancelHooks(t *testing.T) {
	db := newTestDB()
	cancelled := 0
	_, err := db.Ref("a").On(Value, func(*Snapshot) {}, OnCancel(func() { cancelled++ }))
	require.NoError(t, err)
	_, err = db.Ref("b").On(Value, func(*Snapshot) {})
	require.NoError(t, err)
	_, err = db.Ref("c").On(Value, func(*Snapshot) {})
	require.NoError(t, err)

	assert.Equal(t, 1, db.RemoveListener(Filter{}))
	assert.Equal(t, 1, cancelled)
	assert.Equal(t, 0, db.ListenerCount())
}

func TestDatabase_RemoveRootOnEmptyDatabaseIsSilent(t *testing.T) {
	db := newTestDB()
	calls := 0
	_, err := db.Ref("").On(Value, func(*Snapshot) { calls++ })
	require.NoError(t, err)

	db.Remove("")
	require.NoError(t, db.Set("/", nil))
	assert.Equal(t, 0, calls)
}

func TestDatabase_ListenerDiagnostics(t *testing.T) {
	db := newTestDB()
	for _, p := range []string{"b", "a", "a"} {
		_, err := db.Ref(p).On(Value, func(*Snapshot) {})
		require.NoError(t, err)
	}
	_, err := db.Ref("c").On(ChildRemoved, func(*Snapshot) {})
	require.NoError(t, err)

	assert.Equal(t, 4, db.ListenerCount())
	assert.Equal(t, 1, db.ListenerCount(ChildRemoved))
	assert.Equal(t, []string{"a", "b", "c"}, db.ListenerPaths())
	assert.Equal(t, []string{"c"}, db.ListenerPaths(ChildRemoved))
}

func TestDatabase_SendEventsGate(t *testing.T) {
	db := newTestDB()
	calls := 0
	_, err := db.Ref("x").On(Value, func(*Snapshot) { calls++ })
	require.NoError(t, err)

	db.SetSendEvents(false)
	require.NoError(t, db.Set("x", 1))
	assert.False(t, db.SendEvents())
	assert.Equal(t, 0, calls)

	db.SetSendEvents(true)
	require.NoError(t, db.Set("x", 2))
	assert.Equal(t, 1, calls)
}

func TestDatabase_SilentSet(t *testing.T) {
	db := newTestDB()
	calls := 0
	_, err := db.Ref("x").On(Value, func(*Snapshot) { calls++ })
	require.NoError(t, err)

	require.NoError(t, db.Set("x", 1, true))
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1.0, db.Get("x"))
}

func TestDatabase_EventObserver(t *testing.T) {
	rec := testutil.NewRecorder[Event]()
	db := newTestDB(WithEventObserver(rec.Record))
	_, err := db.Ref("people").On(ChildChanged, func(*Snapshot) {})
	require.NoError(t, err)

	require.NoError(t, db.Set("people/a", map[string]any{"age": 1}))
	require.NoError(t, db.Set("people/a/age", 2))

	events := rec.All()
	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[0].Seq)
	assert.Equal(t, int64(2), events[1].Seq)
	assert.Equal(t, ChildChanged, events[1].Type)
	assert.Equal(t, "a", events[1].Key)
	assert.Equal(t, "people", events[1].Path)
	assert.Equal(t, map[string]any{"age": 2.0}, events[1].Value)
	assert.Equal(t, map[string]any{"age": 1.0}, events[1].Prior)
}

func TestDatabase_Auth(t *testing.T) {
	db := newTestDB()
	_, ok := db.CurrentUser()
	assert.False(t, ok)

	db.SetAuth(SignedInAs(User{UID: "u1", Email: "u1@example.com"}))
	u, ok := db.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "u1", u.UID)
}

func TestDatabase_WithConfig(t *testing.T) {
	send := false
	db := New(WithConfig(Config{SendEvents: &send}))

	assert.False(t, db.SendEvents())
	assert.Equal(t, FixedDelay(5), db.Delay())
}

func TestDatabase_OnceWaitsForDelay(t *testing.T) {
	db := newTestDB(WithDelay(FixedDelay(20)))
	require.NoError(t, db.Set("x", 1))

	start := time.Now()
	snap, err := db.Ref("x").Once(Value)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, 1.0, snap.Export())
}

func TestDatabase_ReentrantCallbackWrite(t *testing.T) {
	db := newTestDB()
	_, err := db.Ref("in").On(Value, func(s *Snapshot) {
		_ = db.Set("out", s.Export())
	})
	require.NoError(t, err)

	require.NoError(t, db.Set("in", "x"))
	assert.Equal(t, "x", db.Get("out"))
}
