package journal

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/storefront"
	"github.com/roach88/storefront/internal/testutil"
)

// createTestJournal opens a journal in a temp directory.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpen_CreatesAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j1, err := Open(path)
	require.NoError(t, err)
	_, err = j1.StartSession(context.Background(), "first")
	require.NoError(t, err)
	require.NoError(t, j1.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	j2, err := Open(path)
	require.NoError(t, err)
	defer j2.Close()

	sessions, err := j2.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "first", sessions[0].Label)
}

func TestOpen_Pragmas(t *testing.T) {
	j := createTestJournal(t)

	var mode string
	require.NoError(t, j.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, j.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	var version int
	require.NoError(t, j.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestStartSession_UUIDv7(t *testing.T) {
	j := createTestJournal(t)

	id, err := j.StartSession(context.Background(), "run")
	require.NoError(t, err)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestAppend_Idempotent(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.StartSessionWithID(ctx, "s1", "run"))
	ev := storefront.Event{Seq: 1, Kind: storefront.EventCartChange, Instance: "shop1"}

	require.NoError(t, j.Append(ctx, "s1", ev))
	require.NoError(t, j.Append(ctx, "s1", ev))

	records, err := j.ReadEvents(ctx, Filter{SessionID: "s1"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAppend_RequiresSession(t *testing.T) {
	j := createTestJournal(t)

	err := j.Append(context.Background(), "missing", storefront.Event{Seq: 1, Kind: storefront.EventCartChange})

	assert.Error(t, err, "foreign key must reject events without a session")
}

func TestReadEvents_FiltersAndOrder(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.StartSessionWithID(ctx, "s1", "one"))
	require.NoError(t, j.StartSessionWithID(ctx, "s2", "two"))

	events := []struct {
		session string
		ev      storefront.Event
	}{
		{"s2", storefront.Event{Seq: 1, Kind: storefront.EventCategorySwitch, Instance: "shop1"}},
		{"s1", storefront.Event{Seq: 2, Kind: storefront.EventPageChange, Instance: "shop1", Category: "fruit"}},
		{"s1", storefront.Event{Seq: 1, Kind: storefront.EventCategorySwitch, Instance: "shop1"}},
		{"s1", storefront.Event{Seq: 3, Kind: storefront.EventItemClick, Instance: "shop2", Key: "apple"}},
	}
	for _, e := range events {
		require.NoError(t, j.Append(ctx, e.session, e.ev))
	}

	all, err := j.ReadEvents(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "s1", all[0].SessionID)
	assert.Equal(t, int64(1), all[0].Seq)
	assert.Equal(t, int64(2), all[1].Seq)
	assert.Equal(t, "fruit", all[1].Category)
	assert.Equal(t, "apple", all[2].Key)
	assert.Equal(t, "s2", all[3].SessionID)

	byInstance, err := j.ReadEvents(ctx, Filter{Instance: "shop2"})
	require.NoError(t, err)
	require.Len(t, byInstance, 1)
	assert.Equal(t, storefront.EventItemClick, byInstance[0].Kind)

	byKind, err := j.ReadEvents(ctx, Filter{SessionID: "s1", Kind: storefront.EventCategorySwitch})
	require.NoError(t, err)
	assert.Len(t, byKind, 1)

	none, err := j.ReadEvents(ctx, Filter{SessionID: "nope"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSessions_CountsAndLatest(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	latest, err := j.LatestSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", latest)

	require.NoError(t, j.StartSessionWithID(ctx, "b", "second-label"))
	require.NoError(t, j.StartSessionWithID(ctx, "a", "first-label"))
	require.NoError(t, j.Append(ctx, "a", storefront.Event{Seq: 1, Kind: storefront.EventCartChange, Instance: "x"}))

	sessions, err := j.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Session{
		{ID: "b", Label: "second-label", EventCount: 0},
		{ID: "a", Label: "first-label", EventCount: 1},
	}, sessions)

	latest, err = j.LatestSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", latest)
}

func TestRecorder_JournalsRegistryEvents(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	session, err := j.StartSession(ctx, "registry")
	require.NoError(t, err)

	reg := storefront.NewRegistry(
		storefront.WithClock(testutil.NewDeterministicClock()),
		storefront.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	rec := j.NewRecorder(ctx, session)
	reg.SubscribeAll(rec.Handle)

	reg.CreateInstance("shop1", "Shop")
	require.NoError(t, reg.AddCategory("shop1", "fruit", "Fruit", ""))
	require.NoError(t, reg.AddItem("shop1", "fruit", storefront.Item{Key: "apple", Price: storefront.ParsePrice("3")}))
	require.NoError(t, reg.AddToCart("shop1", "apple", 1))

	require.NoError(t, rec.Err())
	assert.Equal(t, 3, rec.Count())
	assert.Equal(t, session, rec.SessionID())

	records, err := j.ReadEvents(ctx, Filter{SessionID: session})
	require.NoError(t, err)
	var kinds []storefront.EventKind
	for _, r := range records {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []storefront.EventKind{
		storefront.EventCategorySwitch,
		storefront.EventPageChange,
		storefront.EventCartChange,
	}, kinds)
}

func TestRecorder_KeepsFirstError(t *testing.T) {
	j := createTestJournal(t)
	rec := j.NewRecorder(context.Background(), "unregistered")

	rec.Handle(storefront.Event{Seq: 1, Kind: storefront.EventCartChange, Instance: "shop1"})
	rec.Handle(storefront.Event{Seq: 2, Kind: storefront.EventCartChange, Instance: "shop1"})

	assert.Error(t, rec.Err())
	assert.Equal(t, 0, rec.Count())
}
