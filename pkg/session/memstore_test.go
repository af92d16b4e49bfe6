package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/litetable/litetable-orm/pkg/codec"
	"github.com/litetable/litetable-orm/pkg/schema"
	"github.com/litetable/litetable-orm/pkg/session"
	"github.com/litetable/litetable-orm/pkg/store/memstore"
	"github.com/stretchr/testify/require"
)

type order struct {
	ID      string          `ltmap:"rowkey,table=orders,namespace=shop,family=o"`
	Placed  time.Time       `ltmap:"column=placed,noupdate"`
	Status  string          `ltmap:"column=status"`
	Total   codec.Decimal   `ltmap:"column=total"`
	Items   []string        `ltmap:"family=items,column=sku:"`
	Flags   map[string]bool `ltmap:"family=flags,column=f:"`
	Comment *string         `ltmap:"column=comment"`
}

func newSession(t *testing.T, walDir string) (*session.Session, *memstore.Store) {
	reg, err := schema.NewBuilder().RegisterStruct(order{}, nil).Build()
	require.NoError(t, err)

	store, err := memstore.New(&memstore.Config{ShardCount: 4, WALPath: walDir})
	require.NoError(t, err)
	require.NoError(t, store.Start())

	s, err := session.New(&session.Config{Registry: reg, Store: store})
	require.NoError(t, err)
	return s, store
}

func TestSession_Memstore(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s, store := newSession(t, "")
	t.Cleanup(func() { _ = store.Stop() })

	placed := time.Date(2025, 5, 12, 13, 10, 0, 0, time.UTC)
	o := &order{
		ID:     "o-1",
		Placed: placed,
		Status: "new",
		Total:  codec.DecimalFromInt(4250, 2),
		Items:  []string{"a-1", "b-2"},
		Flags:  map[string]bool{"gift": true},
	}
	req.NoError(s.Save(ctx, o))

	got, err := session.Load[order](ctx, s, "o-1")
	req.NoError(err)
	req.Equal("42.50", got.Total.String())
	req.True(placed.Equal(got.Placed))
	req.Equal([]string{"a-1", "b-2"}, got.Items)
	req.Equal(map[string]bool{"gift": true}, got.Flags)
	req.Nil(got.Comment)

	// Placed is not updatable, so the stored value survives
	note := "leave at door"
	req.NoError(s.Update(ctx, &order{ID: "o-1", Placed: placed.Add(time.Hour), Status: "shipped", Comment: &note}))

	got, err = session.Load[order](ctx, s, "o-1")
	req.NoError(err)
	req.True(placed.Equal(got.Placed))
	req.Equal("shipped", got.Status)
	req.Equal(&note, got.Comment)

	cols, err := session.FieldColumns[order](s, "Status")
	req.NoError(err)
	partial, err := session.Load[order](ctx, s, "o-1", cols...)
	req.NoError(err)
	req.Equal(&order{ID: "o-1", Status: "shipped"}, partial)

	req.NoError(session.DeleteFamily[order](ctx, s, "o-1", "items"))
	got, err = session.Load[order](ctx, s, "o-1")
	req.NoError(err)
	req.Nil(got.Items)

	req.NoError(session.Delete[order](ctx, s, "o-1"))
	_, err = session.Load[order](ctx, s, "o-1")
	req.True(errors.Is(err, session.ErrNotFound))
}

func TestSession_MemstoreScan(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s, store := newSession(t, "")
	t.Cleanup(func() { _ = store.Stop() })

	req.NoError(s.SaveAll(ctx,
		&order{ID: "2025-b", Status: "new", Total: codec.DecimalFromInt(300, 2)},
		&order{ID: "2025-a", Status: "paid", Total: codec.DecimalFromInt(100, 2)},
		&order{ID: "2024-z", Status: "paid", Total: codec.DecimalFromInt(200, 2)},
	))

	got, err := session.Scan(ctx, s, &session.ScanParams[order]{Prefix: []byte("2025-")})
	req.NoError(err)
	req.Len(got, 2)
	req.Equal("2025-a", got[0].ID)
	req.Equal("2025-b", got[1].ID)

	got, err = session.Scan(ctx, s, &session.ScanParams[order]{
		Regex: "^20",
		Less: func(a, b *order) bool {
			return a.Total.Cmp(b.Total) > 0
		},
	})
	req.NoError(err)
	req.Len(got, 3)
	req.Equal([]string{"2025-b", "2024-z", "2025-a"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestSession_MemstoreWAL(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	s, store := newSession(t, dir)
	req.NoError(s.Save(ctx, &order{ID: "o-9", Status: "new", Items: []string{"x"}}))
	req.NoError(store.Stop())

	restored, store := newSession(t, dir)
	t.Cleanup(func() { _ = store.Stop() })

	got, err := session.Load[order](ctx, restored, "o-9")
	req.NoError(err)
	req.Equal("new", got.Status)
	req.Equal([]string{"x"}, got.Items)
}
