package index

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 10, 5)

	p.Increment(3)
	assert.Zero(t, p.Current(), "updates before Start are ignored")
	assert.Zero(t, p.Elapsed())

	p.Start()
	p.Increment(3)
	assert.Empty(t, buf.String(), "below report interval")

	p.Increment(3)
	assert.Contains(t, buf.String(), "Embedding: 6/10 (60.0%)")

	p.Increment(100)
	assert.Equal(t, 10, p.Current(), "capped at total")

	p.Finish()
	assert.Contains(t, buf.String(), "Embedding: 10/10 (100.0%)")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}

func TestProgressTracker_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 1000, 100)
	p.Start()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.Increment(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, p.Current())
}
