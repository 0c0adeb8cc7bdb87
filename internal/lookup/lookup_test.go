package lookup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "bob", NormalizeKey("  Bob "))
	assert.Equal(t, "zezima", NormalizeKey("Zezima"))
}

func TestSecondStartRejectedWhileRunning(t *testing.T) {
	f := New(zerolog.Nop())
	release := make(chan struct{})
	done := make(chan struct{})

	err := f.Start(context.Background(), "bob", func(ctx context.Context) error {
		<-release
		close(done)
		return nil
	})
	require.NoError(t, err)
	require.True(t, f.Contains("bob"))

	err = f.Start(context.Background(), "bob", func(ctx context.Context) error {
		t.Error("duplicate resolve must not run")
		return nil
	})
	var already *ErrAlreadyRunning
	require.ErrorAs(t, err, &already)
	assert.Equal(t, "bob", already.Key)

	// A different key is unaffected by bob's outstanding resolution.
	other := make(chan struct{})
	require.NoError(t, f.Start(context.Background(), "alice", func(ctx context.Context) error {
		close(other)
		return nil
	}))
	<-other

	close(release)
	<-done
}

func TestKeyReleasedAfterFailure(t *testing.T) {
	f := New(zerolog.Nop())
	done := make(chan struct{})

	err := f.Start(context.Background(), "bob", func(ctx context.Context) error {
		defer close(done)
		return errors.New("stats api timed out")
	})
	require.NoError(t, err)
	<-done

	// The failed run must not block a fresh lookup for the same name.
	require.Eventually(t, func() bool { return !f.Contains("bob") },
		time.Second, time.Millisecond)

	ran := make(chan struct{})
	require.NoError(t, f.Start(context.Background(), "bob", func(ctx context.Context) error {
		close(ran)
		return nil
	}))
	<-ran
}

func TestConcurrentStartsSingleWinner(t *testing.T) {
	f := New(zerolog.Nop())
	var started int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	var rejected int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.Start(context.Background(), "bob", func(ctx context.Context) error {
				atomic.AddInt32(&started, 1)
				<-release
				return nil
			})
			if err != nil {
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}
	wg.Wait()
	close(release)

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&started) == 1 },
		time.Second, time.Millisecond)
	assert.Equal(t, int32(15), atomic.LoadInt32(&rejected))
}
