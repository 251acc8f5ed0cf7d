package policy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/passwordguard/internal/model"
)

func TestProviderReplaceBumpsGeneration(t *testing.T) {
	p := NewProvider(model.DefaultPolicySnapshot())
	assert.Equal(t, int64(1), p.Snapshot().Generation)

	next := model.DefaultPolicySnapshot()
	next.MinLength = 16
	gen := p.Replace(next)

	assert.Equal(t, int64(2), gen)
	assert.Equal(t, 16, p.Snapshot().MinLength)
	assert.Equal(t, int64(2), p.Snapshot().Generation)
}

func TestProviderSnapshotIsACopy(t *testing.T) {
	p := NewProvider(model.DefaultPolicySnapshot())

	snap := p.Snapshot()
	snap.MinLength = 99

	assert.Equal(t, 12, p.Snapshot().MinLength)
}

func TestProviderConcurrentReadsDuringReplace(t *testing.T) {
	p := NewProvider(model.DefaultPolicySnapshot())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				snap := p.Snapshot()
				// A reader must always see a coherent snapshot, either
				// fully old or fully new.
				assert.True(t, snap.MinLength == 12 || snap.MinLength == 20)
			}
		}()
	}

	next := model.DefaultPolicySnapshot()
	next.MinLength = 20
	p.Replace(next)
	wg.Wait()
}
