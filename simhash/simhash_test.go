package simhash_test

import (
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/icscrawl/simhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomText returns a deterministic text of n words drawn from alphabet.
func randomText(seed uint64, n int, alphabet string) []string {
	r := rand.New(rand.NewPCG(seed, seed+1))
	words := make([]string, n)
	for i := range words {
		var b strings.Builder
		length := 3 + r.IntN(6)
		for j := 0; j < length; j++ {
			b.WriteByte(alphabet[r.IntN(len(alphabet))])
		}
		words[i] = b.String()
	}
	return words
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	t.Run("identical text has zero distance", func(t *testing.T) {
		t.Parallel()

		text := strings.Join(randomText(1, 500, "abcdefghijklmnopqrstuvwxyz"), " ")

		assert.Equal(t, 0, simhash.Distance(simhash.Fingerprint(text), simhash.Fingerprint(text)))
	})

	t.Run("ignores case and punctuation", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, simhash.Fingerprint("helloworld"), simhash.Fingerprint("Hello, World!"))
	})

	t.Run("one inserted sentence stays below threshold", func(t *testing.T) {
		t.Parallel()

		words := randomText(7, 8000, "abcdefghijklmnopqrstuvwxyz")
		original := strings.Join(words, " ")

		edited := make([]string, 0, len(words)+1)
		edited = append(edited, words[:4000]...)
		edited = append(edited, "Zebras quietly vanish.")
		edited = append(edited, words[4000:]...)

		d := simhash.Distance(simhash.Fingerprint(original), simhash.Fingerprint(strings.Join(edited, " ")))

		assert.Less(t, d, simhash.DuplicateThreshold)
	})

	t.Run("unrelated text exceeds threshold", func(t *testing.T) {
		t.Parallel()

		a := strings.Join(randomText(3, 2000, "abcdefghijklm"), " ")
		b := strings.Join(randomText(4, 2000, "nopqrstuvwxyz"), " ")

		d := simhash.Distance(simhash.Fingerprint(a), simhash.Fingerprint(b))

		assert.GreaterOrEqual(t, d, simhash.DuplicateThreshold)
	})

	t.Run("handles text shorter than a shingle", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, simhash.Fingerprint("ab"), simhash.Fingerprint("a-b"))
		assert.NotPanics(t, func() { simhash.Fingerprint("") })
	})
}

func TestDistance(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, simhash.Distance(0, 0))
	assert.Equal(t, 64, simhash.Distance(0, ^uint64(0)))
	assert.Equal(t, 2, simhash.Distance(0b1010, 0b0000))
}

func TestIndex_Check(t *testing.T) {
	t.Parallel()

	t.Run("stores new fingerprints", func(t *testing.T) {
		t.Parallel()

		idx := simhash.NewIndex()

		assert.False(t, idx.Check(0))
		assert.Equal(t, 1, idx.Len())
	})

	t.Run("flags fingerprints within threshold", func(t *testing.T) {
		t.Parallel()

		idx := simhash.NewIndex()
		require.False(t, idx.Check(0))

		assert.True(t, idx.Check(0b1111), "distance 4 is a duplicate")
		assert.False(t, idx.Check(0b11111), "distance 5 is not a duplicate")
		assert.Equal(t, 2, idx.Len(), "duplicates are not stored")
	})

	t.Run("concurrent checks of one fingerprint admit exactly one", func(t *testing.T) {
		t.Parallel()

		idx := simhash.NewIndex()
		fp := simhash.Fingerprint("the same page fetched by many workers")

		var wg sync.WaitGroup
		var mu sync.Mutex
		accepted := 0
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !idx.Check(fp) {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, accepted)
		assert.Equal(t, 1, idx.Len())
	})
}
