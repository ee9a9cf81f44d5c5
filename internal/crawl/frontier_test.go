package crawl

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrontierClaim(t *testing.T) {
	f := NewFrontier()
	assert.Zero(t, f.Len())
	assert.True(t, f.Claim("https://example.com/a.js"))
	assert.False(t, f.Claim("https://example.com/a.js"))
	assert.True(t, f.Claim("https://example.com/b.js"))
	assert.Equal(t, 2, f.Len())
}

func TestFrontierConcurrentClaimHasOneWinner(t *testing.T) {
	f := NewFrontier()
	const urls = 200
	var wins [urls]atomic.Int32

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < urls; i++ {
				if f.Claim(fmt.Sprintf("https://example.com/%d.js", i)) {
					wins[i].Add(1)
				}
			}
		}()
	}
	wg.Wait()

	for i := range wins {
		assert.Equal(t, int32(1), wins[i].Load(), i)
	}
	assert.Equal(t, urls, f.Len())
}

func TestFrontierClaimAnyLength(t *testing.T) {
	f := NewFrontier()
	// every murmur3 tail size, including the empty key
	for n := 0; n <= 9; n++ {
		key := strings.Repeat("a", n)
		assert.True(t, f.Claim(key), n)
		assert.False(t, f.Claim(key), n)
		assert.Same(t, f.shardFor(key), f.shardFor(strings.Clone(key)))
	}
	assert.Equal(t, 10, f.Len())
}
