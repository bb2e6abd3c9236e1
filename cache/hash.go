package cache

import (
	"github.com/minio/highwayhash"
)

var key = []byte("langprobe-result-cache-key-00032")

// Hash creates a hash for the input data
func Hash(data []byte) (uint64, error) {
	h, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	_, err = h.Write(data)
	if err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// Key hashes a document text under an analysis fingerprint, so a changed configuration misses.
func Key(fingerprint, text string) (uint64, error) {
	data := make([]byte, 0, len(fingerprint)+len(text)+1)
	data = append(data, fingerprint...)
	data = append(data, 0)
	data = append(data, text...)
	return Hash(data)
}
