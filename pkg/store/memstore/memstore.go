// Package memstore is an in-memory session.Store.
//
// Rows are hash-sharded by table and row key; each shard has its own lock, so
// point reads and writes on different rows rarely contend. Every write keeps a
// new timestamped version and deletes append tombstones; reads see the newest
// version of each qualifier unless it is a tombstone.
//
// Prefix and regex scans have to visit every shard. They run one goroutine per
// shard and merge the matches.
//
// With a WAL configured every change is journaled before it is applied and the
// journal is replayed by Start.
package memstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/litetable/litetable-orm/internal/wal"
	"github.com/litetable/litetable-orm/pkg/entity"
	"github.com/litetable/litetable-orm/pkg/session"
	"github.com/rs/zerolog/log"
)

const (
	defaultShardCount = 16
	maxShardCount     = 256
	name              = "memstore"
)

var _ session.Store = (*Store)(nil)

type Store struct {
	shards      []*shard
	maxVersions int

	wal     *wal.Manager
	started atomic.Bool

	now  func() int64
	last atomic.Int64
}

type Config struct {
	// ShardCount defaults to 16.
	ShardCount int
	// MaxVersions bounds the versions kept per qualifier. Zero keeps all.
	MaxVersions int
	// WALPath enables the write-ahead log under this directory.
	WALPath string
	// SyncWrites flushes the WAL after every change.
	SyncWrites bool
}

func (c *Config) validate() error {
	var errGrp []error
	if c.ShardCount < 0 || c.ShardCount > maxShardCount {
		errGrp = append(errGrp, fmt.Errorf("shard count must be between 1 and %d", maxShardCount))
	}
	if c.MaxVersions < 0 {
		errGrp = append(errGrp, errors.New("max versions cannot be negative"))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	count := cfg.ShardCount
	if count == 0 {
		count = defaultShardCount
	}

	s := &Store{
		shards:      newShards(count),
		maxVersions: cfg.MaxVersions,
		now:         func() int64 { return time.Now().UnixNano() },
	}

	if cfg.WALPath != "" {
		w, err := wal.New(&wal.Config{Path: cfg.WALPath, SyncWrites: cfg.SyncWrites})
		if err != nil {
			return nil, err
		}
		s.wal = w
	}
	return s, nil
}

// Start replays the WAL, if any. It must run before the store is used.
func (s *Store) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrStarted
	}
	if s.wal == nil {
		return nil
	}

	start := time.Now()
	if err := s.wal.Load(s.replay); err != nil {
		return fmt.Errorf("failed to replay WAL: %w", err)
	}
	log.Info().Msgf("memstore restored from %s in %v", s.wal.Path(), time.Since(start))
	return nil
}

// Stop closes the WAL.
func (s *Store) Stop() error {
	if s.wal == nil {
		return nil
	}
	return s.wal.Close()
}

func (s *Store) Name() string {
	return name
}

// tick returns a timestamp later than any handed out or replayed before.
func (s *Store) tick() int64 {
	for {
		last := s.last.Load()
		ts := s.now()
		if ts <= last {
			ts = last + 1
		}
		if s.last.CompareAndSwap(last, ts) {
			return ts
		}
	}
}

func (s *Store) observe(ts int64) {
	for {
		last := s.last.Load()
		if ts <= last || s.last.CompareAndSwap(last, ts) {
			return
		}
	}
}

// Apply writes the mutations row by row. Every mutation of one row shares a
// timestamp. The batch is validated before anything is written.
func (s *Store) Apply(ctx context.Context, table string, mutations []entity.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if table == "" {
		return newError(ErrInvalidTable, "empty table name")
	}
	for _, m := range mutations {
		if len(m.RowKey) == 0 || m.Family == "" {
			return newError(ErrInvalidMutation, "%s: row %q family %q", table, m.RowKey, m.Family)
		}
	}

	for _, r := range entity.GroupByRow(mutations) {
		if err := s.applyRow(table, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) applyRow(table string, r entity.RowMutations) error {
	sh := s.shardFor(table, r.RowKey)
	sh.mutex.Lock()
	defer sh.mutex.Unlock()

	ts := s.tick()
	if s.wal != nil {
		cells := make([]wal.Cell, len(r.Mutations))
		for i, m := range r.Mutations {
			cells[i] = wal.Cell{Family: m.Family, Qualifier: m.Qualifier, Value: m.Value}
		}
		if err := s.wal.Apply(&wal.Entry{
			Operation: wal.OperationWrite,
			Table:     table,
			RowKey:    r.RowKey,
			Cells:     cells,
			Timestamp: ts,
		}); err != nil {
			return err
		}
	}

	key := string(r.RowKey)
	for _, m := range r.Mutations {
		sh.write(table, key, m.Family, m.Qualifier, version{value: bytes.Clone(m.Value), timestamp: ts}, s.maxVersions)
	}
	return nil
}

// ReadRow returns the live cells of the row ordered by family and qualifier.
func (s *Store) ReadRow(ctx context.Context, table string, rowKey []byte, columns []session.Column) ([]entity.Cell, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sh := s.shardFor(table, rowKey)
	sh.mutex.RLock()
	defer sh.mutex.RUnlock()

	r, ok := sh.data[table][string(rowKey)]
	if !ok {
		return nil, nil
	}
	return liveCells(r, columns), nil
}

// DeleteRow tombstones every qualifier of families. No families deletes the
// whole row. Deleting a missing row is not an error.
func (s *Store) DeleteRow(ctx context.Context, table string, rowKey []byte, families []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sh := s.shardFor(table, rowKey)
	sh.mutex.Lock()
	defer sh.mutex.Unlock()

	key := string(rowKey)
	r, ok := sh.data[table][key]
	if !ok {
		return nil
	}
	if len(families) == 0 {
		for f := range r {
			families = append(families, f)
		}
		sort.Strings(families)
	}

	ts := s.tick()
	if s.wal != nil {
		if err := s.wal.Apply(&wal.Entry{
			Operation: wal.OperationDelete,
			Table:     table,
			RowKey:    rowKey,
			Families:  families,
			Timestamp: ts,
		}); err != nil {
			return err
		}
	}

	marked := sh.tombstone(table, key, families, ts, s.maxVersions)
	log.Debug().Msgf("added %d tombstones to %s/%q", marked, table, rowKey)
	return nil
}

func (s *Store) DeleteFamily(ctx context.Context, table string, rowKey []byte, family string) error {
	return s.DeleteRow(ctx, table, rowKey, []string{family})
}

// Scan returns the rows of table matching req in row key order. Rows without
// any live selected cell are left out.
func (s *Store) Scan(ctx context.Context, table string, req *session.ScanRequest) ([]session.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil {
		req = &session.ScanRequest{}
	}

	var re *regexp.Regexp
	if req.Regex != "" {
		var err error
		if re, err = regexp.Compile(req.Regex); err != nil {
			return nil, fmt.Errorf("%w: regex %q: %v", session.ErrInvalidScan, req.Regex, err)
		}
	}

	var (
		result []session.Row
		mutex  sync.Mutex
		wg     sync.WaitGroup
	)

	wg.Add(len(s.shards))
	for _, sh := range s.shards {
		go func(sh *shard) {
			defer wg.Done()

			// Local results for this shard
			var local []session.Row

			sh.mutex.RLock()
			for key, r := range sh.data[table] {
				if !bytes.HasPrefix([]byte(key), req.Prefix) {
					continue
				}
				if re != nil && !re.MatchString(key) {
					continue
				}
				if cells := liveCells(r, req.Columns); len(cells) > 0 {
					local = append(local, session.Row{Key: []byte(key), Cells: cells})
				}
			}
			sh.mutex.RUnlock()

			if len(local) > 0 {
				mutex.Lock()
				result = append(result, local...)
				mutex.Unlock()
			}
		}(sh)
	}
	wg.Wait()

	sort.Slice(result, func(i, j int) bool {
		return bytes.Compare(result[i].Key, result[j].Key) < 0
	})
	return result, nil
}

func (s *Store) replay(e *wal.Entry) error {
	if e.Table == "" || len(e.RowKey) == 0 {
		return newError(ErrInvalidMutation, "entry %s has no table or row key", e.ID)
	}
	s.observe(e.Timestamp)

	sh := s.shardFor(e.Table, e.RowKey)
	sh.mutex.Lock()
	defer sh.mutex.Unlock()

	key := string(e.RowKey)
	switch e.Operation {
	case wal.OperationWrite:
		for _, c := range e.Cells {
			sh.write(e.Table, key, c.Family, c.Qualifier, version{value: c.Value, timestamp: e.Timestamp}, s.maxVersions)
		}
	case wal.OperationDelete:
		families := e.Families
		if len(families) == 0 {
			for f := range sh.data[e.Table][key] {
				families = append(families, f)
			}
		}
		sh.tombstone(e.Table, key, families, e.Timestamp, s.maxVersions)
	}
	return nil
}

func liveCells(r row, columns []session.Column) []entity.Cell {
	var out []entity.Cell
	for family, quals := range r {
		for q, versions := range quals {
			if !session.Selected(columns, family, q) {
				continue
			}
			v, ok := latest(versions)
			if !ok {
				continue
			}
			out = append(out, entity.Cell{Family: family, Qualifier: q, Value: bytes.Clone(v.value)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Family != out[j].Family {
			return out[i].Family < out[j].Family
		}
		return out[i].Qualifier < out[j].Qualifier
	})
	return out
}
