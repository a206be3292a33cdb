package cache

import "time"

// BytesCache stores rendered payloads with a TTL. A miss is (nil, false, nil).
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
}
