package match

import (
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/sirupsen/logrus"

	"go.ngs.io/salishsea-tools/internal/dataset"
)

// DefaultMaxOpenFiles caps the handle cache when the descriptor limit is unknown.
const DefaultMaxOpenFiles = 64

// MaxOpenFiles returns the handle cache capacity: the configured value,
// bounded by one fifth of the process descriptor limit.
func MaxOpenFiles(configured int) int {
	limit := DefaultMaxOpenFiles
	if n := fileLimit(); n > 0 {
		limit = max(n/5, 1)
	}
	if configured > 0 && configured < limit {
		return configured
	}
	return limit
}

// fileKey identifies one archive file: its file type and position in the index.
type fileKey struct {
	fileType string
	n        int
}

// openFile is a cached handle with per-file metadata read on open.
type openFile struct {
	fileType string
	ds       dataset.Dataset
	times    *TimeIndex
	bounds   []float64
	shapes   map[string][]int
}

// handleCache keeps a bounded set of open datasets. Evicted and removed
// handles are closed.
type handleCache struct {
	mu     sync.Mutex
	lru    *lru.Cache
	opener dataset.Opener
	log    logrus.FieldLogger
	opens  map[string]int
	err    error
}

func newHandleCache(opener dataset.Opener, capacity int, log logrus.FieldLogger) *handleCache {
	c := &handleCache{
		lru:    lru.New(capacity),
		opener: opener,
		log:    log,
		opens:  make(map[string]int),
	}
	c.lru.OnEvicted = func(key lru.Key, value interface{}) {
		f := value.(*openFile)
		if err := f.ds.Close(); err != nil && c.err == nil {
			c.err = err
		}
		c.log.WithFields(logrus.Fields{
			"filetype": key.(fileKey).fileType,
			"path":     f.ds.Path(),
		}).Debug("closed model file")
	}
	return c
}

// get returns the cached handle for key, opening path on a miss. init runs
// once per open to fill the per-file metadata.
func (c *handleCache) get(key fileKey, path string, init func(*openFile) error) (*openFile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.lru.Get(key); ok {
		return v.(*openFile), nil
	}
	ds, err := c.opener.Open(path)
	if err != nil {
		return nil, err
	}
	c.opens[path]++
	f := &openFile{fileType: key.fileType, ds: ds, shapes: make(map[string][]int)}
	if err := init(f); err != nil {
		_ = ds.Close()
		return nil, err
	}
	c.log.WithFields(logrus.Fields{
		"filetype": key.fileType,
		"path":     path,
	}).Debug("opened model file")
	c.lru.Add(key, f)
	return f, nil
}

// release closes the handle for key if it is open.
func (c *handleCache) release(key fileKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

// close closes every open handle and returns the first close error.
func (c *handleCache) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Clear()
	return c.err
}

// openCounts returns a copy of the per-path open counts.
func (c *handleCache) openCounts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.opens))
	for k, v := range c.opens {
		out[k] = v
	}
	return out
}
