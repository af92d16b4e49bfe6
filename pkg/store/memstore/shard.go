package memstore

import (
	"hash/fnv"
	"sync"
)

// version is one timestamped value of a qualifier. Versions of a qualifier are
// kept oldest first.
type version struct {
	value     []byte
	timestamp int64
	tombstone bool
}

// qualifiers maps qualifiers to their versions
type qualifiers map[string][]version

// row maps families to their qualifiers
type row map[string]qualifiers

// shard is a manager for a single shard of in-memory rows, keyed by table and
// then row key.
type shard struct {
	mutex sync.RWMutex
	data  map[string]map[string]row
}

func newShards(count int) []*shard {
	shards := make([]*shard, count)
	for i := range shards {
		shards[i] = &shard{data: make(map[string]map[string]row)}
	}
	return shards
}

// getShardIndex determines which shard a particular row belongs to.
func (s *Store) getShardIndex(table string, rowKey []byte) int {
	if len(s.shards) <= 1 {
		return 0
	}

	// Use FNV-1a hash algorithm for distributing keys
	h := fnv.New32a()
	_, _ = h.Write([]byte(table))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(rowKey)
	return int(h.Sum32() % uint32(len(s.shards)))
}

func (s *Store) shardFor(table string, rowKey []byte) *shard {
	return s.shards[s.getShardIndex(table, rowKey)]
}

// write appends a version, keeping at most maxVersions. Callers hold the lock.
func (sh *shard) write(table, rowKey, family, qualifier string, v version, maxVersions int) {
	rows, ok := sh.data[table]
	if !ok {
		rows = make(map[string]row)
		sh.data[table] = rows
	}
	r, ok := rows[rowKey]
	if !ok {
		r = make(row)
		rows[rowKey] = r
	}
	quals, ok := r[family]
	if !ok {
		quals = make(qualifiers)
		r[family] = quals
	}

	versions := append(quals[qualifier], v)
	if maxVersions > 0 && len(versions) > maxVersions {
		versions = append([]version(nil), versions[len(versions)-maxVersions:]...)
	}
	quals[qualifier] = versions
}

// tombstone marks every live qualifier of the families deleted at timestamp.
// Callers hold the lock.
func (sh *shard) tombstone(table, rowKey string, families []string, timestamp int64, maxVersions int) int {
	r, ok := sh.data[table][rowKey]
	if !ok {
		return 0
	}

	var marked int
	for _, family := range families {
		for q, versions := range r[family] {
			if _, live := latest(versions); !live {
				continue
			}
			sh.write(table, rowKey, family, q, version{timestamp: timestamp, tombstone: true}, maxVersions)
			marked++
		}
	}
	return marked
}

// latest returns the newest version unless it is a tombstone.
func latest(versions []version) (version, bool) {
	if len(versions) == 0 {
		return version{}, false
	}
	v := versions[len(versions)-1]
	return v, !v.tombstone
}
