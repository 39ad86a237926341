// Package shard provides integer-keyed concurrent maps and sets split into a
// fixed number of independently locked shards. A key is routed to shard
// uint64(key) % shardCount, so operations on different shards never contend.
package shard

// Key is the set of integer types accepted as shard keys.
type Key interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func route[K Key](key K, shardCount int) int {
	return int(uint64(key) % uint64(shardCount))
}
