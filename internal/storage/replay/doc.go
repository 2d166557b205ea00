// Package replay provides the bundled replay-cache backends.
//
// Memory is a sharded in-process cache with a background sweeper and
// is the default. Badger persists entries to disk so replays are still
// rejected after a restart; it leans on Badger's native TTL support
// and hashes cache keys to fixed-size BLAKE2b digests.
//
// Both satisfy the service.ReplayCache contract and keep the has/add
// pair effectively atomic for callers sharing a key: Memory serializes
// per shard, Badger per transaction.
package replay
