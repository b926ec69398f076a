package redis

// DefaultKeyPrefix namespaces every key this store writes
const DefaultKeyPrefix = "reelkeep:"

// Key returns the Redis key for a storage key under prefix
func Key(prefix, key string) string {
	return prefix + key
}
