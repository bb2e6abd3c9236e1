package cache

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/bintly"
	"github.com/viant/langprobe/passage"
)

// Results is an in-memory passage cache keyed by Key, optionally persisted as a binary snapshot.
type Results struct {
	data map[uint64][]passage.Passage
	sync.RWMutex
}

// NewResults creates an empty result cache
func NewResults() *Results {
	return &Results{data: make(map[uint64][]passage.Passage)}
}

// Get retrieves passages by key, with existence check
func (c *Results) Get(key uint64) ([]passage.Passage, bool) {
	c.RLock()
	defer c.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

// Set stores passages under the given key
func (c *Results) Set(key uint64, passages []passage.Passage) {
	c.Lock()
	defer c.Unlock()
	c.data[key] = passages
}

// Delete removes an entry
func (c *Results) Delete(key uint64) {
	c.Lock()
	defer c.Unlock()
	delete(c.data, key)
}

// Size returns the number of cached documents
func (c *Results) Size() int {
	c.RLock()
	defer c.RUnlock()
	return len(c.data)
}

// EncodeBinary encodes all entries to a binary stream
func (c *Results) EncodeBinary(stream *bintly.Writer) error {
	c.RLock()
	defer c.RUnlock()
	stream.Int(len(c.data))
	for k, passages := range c.data {
		stream.Int(int(k))
		stream.Int(len(passages))
		for i := range passages {
			if err := passages[i].EncodeBinary(stream); err != nil {
				return err
			}
		}
	}
	return nil
}

// DecodeBinary replaces the cache content from a binary stream
func (c *Results) DecodeBinary(stream *bintly.Reader) error {
	var size int
	stream.Int(&size)
	data := make(map[uint64][]passage.Passage, size)
	for i := 0; i < size; i++ {
		var k, count int
		stream.Int(&k)
		stream.Int(&count)
		passages := make([]passage.Passage, count)
		for j := range passages {
			if err := passages[j].DecodeBinary(stream); err != nil {
				return err
			}
		}
		data[uint64(k)] = passages
	}
	c.Lock()
	c.data = data
	c.Unlock()
	return nil
}

// Save writes a snapshot to URL
func (c *Results) Save(ctx context.Context, fs afs.Service, URL string) error {
	writers := bintly.NewWriters()
	writer := writers.Get()
	defer writers.Put(writer)
	if err := c.EncodeBinary(writer); err != nil {
		return err
	}
	if err := fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(writer.Bytes())); err != nil {
		return fmt.Errorf("failed to save result cache %v: %w", URL, err)
	}
	return nil
}

// Load restores a snapshot from URL; a missing snapshot leaves the cache empty
func (c *Results) Load(ctx context.Context, fs afs.Service, URL string) error {
	if ok, _ := fs.Exists(ctx, URL); !ok {
		return nil
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return fmt.Errorf("failed to read result cache %v: %w", URL, err)
	}
	if len(data) == 0 {
		return nil
	}
	readers := bintly.NewReaders()
	stream := readers.Get()
	defer readers.Put(stream)
	if err = stream.FromBytes(data); err != nil {
		return fmt.Errorf("invalid result cache %v: %w", URL, err)
	}
	return c.DecodeBinary(stream)
}
