package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/litetable/litetable-orm/pkg/entity"
	"github.com/litetable/litetable-orm/pkg/session"
	"github.com/stretchr/testify/require"
)

func mut(key, family, qualifier, value string) entity.Mutation {
	return entity.Mutation{RowKey: []byte(key), Family: family, Qualifier: qualifier, Value: []byte(value)}
}

func cell(family, qualifier, value string) entity.Cell {
	return entity.Cell{Family: family, Qualifier: qualifier, Value: []byte(value)}
}

func newStore(t *testing.T, cfg *Config) *Store {
	s, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cfg     *Config
		wantErr bool
	}{
		"defaults":          {cfg: &Config{}},
		"negative shards":   {cfg: &Config{ShardCount: -1}, wantErr: true},
		"too many shards":   {cfg: &Config{ShardCount: maxShardCount + 1}, wantErr: true},
		"negative versions": {cfg: &Config{MaxVersions: -1}, wantErr: true},
		"single shard":      {cfg: &Config{ShardCount: 1, MaxVersions: 1}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			req := require.New(t)

			s, err := New(tc.cfg)
			if tc.wantErr {
				req.Error(err)
				req.Nil(s)
				return
			}
			req.NoError(err)
			req.Equal("memstore", s.Name())
			req.NotEmpty(s.shards)
		})
	}
}

func TestGetShardIndex(t *testing.T) {
	tests := map[string]struct {
		shardCount int
		rowKeys    []string
	}{
		"single shard returns zero index": {
			shardCount: 1,
			rowKeys:    []string{"champ:1", "champ:2", "champ:3"},
		},
		"multiple shards distribute keys": {
			shardCount: 8,
			rowKeys:    []string{"champ:1", "champ:2", "champ:3", "keyA", "keyB", "keyC", "o"},
		},
		"large number of shards": {
			shardCount: 64,
			rowKeys:    []string{"user:1", "user:2", "post:10", "post:11", "comment:5"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			s := &Store{shards: newShards(tc.shardCount)}

			for _, key := range tc.rowKeys {
				first := s.getShardIndex("t", []byte(key))
				req.GreaterOrEqual(first, 0)
				req.Less(first, tc.shardCount)

				for i := 0; i < 100; i++ {
					req.Equal(first, s.getShardIndex("t", []byte(key)))
				}
			}
		})
	}
}

func TestStore_ApplyAndRead(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newStore(t, &Config{ShardCount: 4})

	req.NoError(s.Apply(ctx, "users", []entity.Mutation{
		mut("u1", "main", "name", "ada"),
		mut("u1", "main", "age", "36"),
		mut("u1", "roles", "r:admin", ""),
		mut("u2", "main", "name", "bob"),
	}))
	req.NoError(s.Apply(ctx, "users", []entity.Mutation{mut("u1", "main", "name", "ada lovelace")}))

	cells, err := s.ReadRow(ctx, "users", []byte("u1"), nil)
	req.NoError(err)
	req.Equal([]entity.Cell{
		cell("main", "age", "36"),
		cell("main", "name", "ada lovelace"),
		cell("roles", "r:admin", ""),
	}, cells)

	cells, err = s.ReadRow(ctx, "users", []byte("u1"), []session.Column{{Family: "roles"}, {Family: "main", Qualifier: "na"}})
	req.NoError(err)
	req.Equal([]entity.Cell{
		cell("main", "name", "ada lovelace"),
		cell("roles", "r:admin", ""),
	}, cells)

	// tables do not share rows
	cells, err = s.ReadRow(ctx, "accounts", []byte("u1"), nil)
	req.NoError(err)
	req.Empty(cells)

	cells, err = s.ReadRow(ctx, "users", []byte("missing"), nil)
	req.NoError(err)
	req.Nil(cells)
}

func TestStore_ApplyValidates(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newStore(t, &Config{})

	err := s.Apply(ctx, "", []entity.Mutation{mut("k", "f", "q", "v")})
	req.True(errors.Is(err, ErrInvalidTable))

	err = s.Apply(ctx, "t", []entity.Mutation{mut("k", "f", "q", "v"), mut("", "f", "q", "v")})
	req.True(errors.Is(err, ErrInvalidMutation))

	err = s.Apply(ctx, "t", []entity.Mutation{mut("k", "", "q", "v")})
	req.True(errors.Is(err, ErrInvalidMutation))

	// nothing from a rejected batch is written
	cells, err := s.ReadRow(ctx, "t", []byte("k"), nil)
	req.NoError(err)
	req.Empty(cells)
}

func TestStore_Tombstones(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newStore(t, &Config{})

	req.NoError(s.Apply(ctx, "t", []entity.Mutation{
		mut("k", "a", "x", "1"),
		mut("k", "b", "y", "2"),
	}))

	req.NoError(s.DeleteFamily(ctx, "t", []byte("k"), "a"))
	cells, err := s.ReadRow(ctx, "t", []byte("k"), nil)
	req.NoError(err)
	req.Equal([]entity.Cell{cell("b", "y", "2")}, cells)

	// a write after the delete is visible again
	req.NoError(s.Apply(ctx, "t", []entity.Mutation{mut("k", "a", "x", "3")}))
	cells, err = s.ReadRow(ctx, "t", []byte("k"), []session.Column{{Family: "a"}})
	req.NoError(err)
	req.Equal([]entity.Cell{cell("a", "x", "3")}, cells)

	req.NoError(s.DeleteRow(ctx, "t", []byte("k"), nil))
	cells, err = s.ReadRow(ctx, "t", []byte("k"), nil)
	req.NoError(err)
	req.Empty(cells)

	req.NoError(s.DeleteRow(ctx, "t", []byte("missing"), []string{"a"}))
	req.NoError(s.DeleteFamily(ctx, "t", []byte("k"), "never-written"))
}

func TestStore_MaxVersions(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newStore(t, &Config{ShardCount: 1, MaxVersions: 2})

	for i := 0; i < 5; i++ {
		req.NoError(s.Apply(ctx, "t", []entity.Mutation{mut("k", "f", "q", fmt.Sprint(i))}))
	}

	versions := s.shards[0].data["t"]["k"]["f"]["q"]
	req.Len(versions, 2)
	req.Equal([]byte("3"), versions[0].value)
	req.Equal([]byte("4"), versions[1].value)
	req.Less(versions[0].timestamp, versions[1].timestamp)

	req.NoError(s.DeleteRow(ctx, "t", []byte("k"), []string{"f"}))
	versions = s.shards[0].data["t"]["k"]["f"]["q"]
	req.Len(versions, 2)
	req.True(versions[1].tombstone)
}

func TestStore_Scan(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newStore(t, &Config{ShardCount: 8})

	var muts []entity.Mutation
	for _, key := range []string{"user:3", "user:1", "user:2", "post:1", "user:10"} {
		muts = append(muts, mut(key, "main", "id", key), mut(key, "meta", "seen", "y"))
	}
	req.NoError(s.Apply(ctx, "t", muts))
	req.NoError(s.Apply(ctx, "other", []entity.Mutation{mut("user:9", "main", "id", "x")}))
	req.NoError(s.DeleteRow(ctx, "t", []byte("user:2"), nil))

	keys := func(rows []session.Row) []string {
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = string(r.Key)
		}
		return out
	}

	tests := map[string]struct {
		req      *session.ScanRequest
		expected []string
	}{
		"everything": {
			req:      nil,
			expected: []string{"post:1", "user:1", "user:10", "user:3"},
		},
		"prefix": {
			req:      &session.ScanRequest{Prefix: []byte("user:")},
			expected: []string{"user:1", "user:10", "user:3"},
		},
		"regex": {
			req:      &session.ScanRequest{Regex: `^user:\d$`},
			expected: []string{"user:1", "user:3"},
		},
		"prefix and regex": {
			req:      &session.ScanRequest{Prefix: []byte("user:1"), Regex: `0$`},
			expected: []string{"user:10"},
		},
		"no match": {
			req:      &session.ScanRequest{Prefix: []byte("nope")},
			expected: []string{},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rows, err := s.Scan(ctx, "t", tc.req)
			require.NoError(t, err)
			require.Equal(t, tc.expected, keys(rows))
		})
	}

	rows, err := s.Scan(ctx, "t", &session.ScanRequest{Prefix: []byte("post:"), Columns: []session.Column{{Family: "meta"}}})
	req.NoError(err)
	req.Equal([]session.Row{{Key: []byte("post:1"), Cells: []entity.Cell{cell("meta", "seen", "y")}}}, rows)

	_, err = s.Scan(ctx, "t", &session.ScanRequest{Regex: "(["})
	req.True(errors.Is(err, session.ErrInvalidScan))
}

func TestStore_ContextCancelled(t *testing.T) {
	req := require.New(t)
	s := newStore(t, &Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req.ErrorIs(s.Apply(ctx, "t", []entity.Mutation{mut("k", "f", "q", "v")}), context.Canceled)
	_, err := s.ReadRow(ctx, "t", []byte("k"), nil)
	req.ErrorIs(err, context.Canceled)
	req.ErrorIs(s.DeleteRow(ctx, "t", []byte("k"), nil), context.Canceled)
	_, err = s.Scan(ctx, "t", nil)
	req.ErrorIs(err, context.Canceled)
}

func TestStore_Concurrent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newStore(t, &Config{ShardCount: 4})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("row:%d", i%4)
			for j := 0; j < 50; j++ {
				_ = s.Apply(ctx, "t", []entity.Mutation{mut(key, "f", fmt.Sprintf("q%d", i), "v")})
				_, _ = s.ReadRow(ctx, "t", []byte(key), nil)
				_, _ = s.Scan(ctx, "t", &session.ScanRequest{Prefix: []byte("row:")})
			}
		}(i)
	}
	wg.Wait()

	rows, err := s.Scan(ctx, "t", nil)
	req.NoError(err)
	req.Len(rows, 4)
	for _, r := range rows {
		req.Len(r.Cells, 4)
	}
}

func TestStore_Tick(t *testing.T) {
	req := require.New(t)

	s := &Store{now: func() int64 { return 100 }}
	req.Equal(int64(100), s.tick())
	req.Equal(int64(101), s.tick())

	s.observe(500)
	req.Equal(int64(501), s.tick())
	s.observe(10)
	req.Equal(int64(502), s.tick())
}

func TestStore_WALReplay(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	first, err := New(&Config{WALPath: dir, SyncWrites: true})
	req.NoError(err)
	req.NoError(first.Start())
	req.True(errors.Is(first.Start(), ErrStarted))

	req.NoError(first.Apply(ctx, "t", []entity.Mutation{
		mut("a", "f", "x", "1"),
		mut("a", "g", "y", "2"),
		mut("b", "f", "x", "3"),
	}))
	req.NoError(first.DeleteFamily(ctx, "t", []byte("a"), "g"))
	req.NoError(first.Apply(ctx, "t", []entity.Mutation{mut("a", "f", "x", "4")}))
	req.NoError(first.DeleteRow(ctx, "t", []byte("b"), nil))
	req.NoError(first.Stop())

	second := newStore(t, &Config{WALPath: dir})

	cells, err := second.ReadRow(ctx, "t", []byte("a"), nil)
	req.NoError(err)
	req.Equal([]entity.Cell{cell("f", "x", "4")}, cells)

	cells, err = second.ReadRow(ctx, "t", []byte("b"), nil)
	req.NoError(err)
	req.Empty(cells)

	// new writes are ordered after everything replayed
	req.NoError(second.Apply(ctx, "t", []entity.Mutation{mut("b", "f", "x", "5")}))
	cells, err = second.ReadRow(ctx, "t", []byte("b"), nil)
	req.NoError(err)
	req.Equal([]entity.Cell{cell("f", "x", "5")}, cells)
}
