package crawl

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

const shardCount = 32

// Frontier is the set of canonical URLs already dispatched in a run.
// Membership only grows; Claim is the single gate for dispatch.
type Frontier struct {
	shards [shardCount]shard
}

type shard struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewFrontier() *Frontier {
	f := &Frontier{}
	for i := range f.shards {
		f.shards[i].seen = make(map[string]struct{})
	}
	return f
}

func (f *Frontier) shardFor(url string) *shard {
	h := murmur3.New32()
	h.Write([]byte(url))
	return &f.shards[h.Sum32()%shardCount]
}

// Claim atomically checks and inserts url. It returns true only for the
// first caller, which then owns processing of url.
func (f *Frontier) Claim(url string) bool {
	s := f.shardFor(url)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[url]; ok {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

func (f *Frontier) Len() int {
	n := 0
	for i := range f.shards {
		s := &f.shards[i]
		s.mu.Lock()
		n += len(s.seen)
		s.mu.Unlock()
	}
	return n
}
