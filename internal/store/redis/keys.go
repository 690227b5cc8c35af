package redis

const (
	// KeyPrefixTiles is the prefix for per-service tile snapshot keys
	KeyPrefixTiles = "tilefinder:tiles:"
)

// TilesKey returns the Redis key holding the tile snapshot for a service name
func TilesKey(serviceName string) string {
	return KeyPrefixTiles + serviceName
}
