package realtime

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConn(id string) *Conn {
	return newConn(id, nil, 16, time.Second)
}

func TestRegistryJoinResolve(t *testing.T) {
	r := NewRegistry()
	c := testConn("a")

	r.Join(UserKey(42), c)
	got := r.Resolve(UserKey(42))
	require.Len(t, got, 1)
	assert.Same(t, c, got[0])

	// joining twice is a no-op
	r.Join(UserKey(42), c)
	assert.Len(t, r.Resolve(UserKey(42)), 1)
}

func TestRegistryResolveUnknownKey(t *testing.T) {
	r := NewRegistry()
	got := r.Resolve("user:999")
	assert.NotNil(t, got)
	assert.Empty(t, got, "no subscribers is a normal empty result, not an error")
}

func TestRegistryMultiDeviceAndMultiKey(t *testing.T) {
	r := NewRegistry()
	phone := testConn("phone")
	laptop := testConn("laptop")

	// same user on two devices
	r.Join(UserKey(1), phone)
	r.Join(UserKey(1), laptop)
	assert.Len(t, r.Resolve(UserKey(1)), 2)

	// one connection interested in two keys
	r.Join(VenueKey(7), phone)
	assert.Len(t, r.Resolve(VenueKey(7)), 1)
}

func TestRegistryLeave(t *testing.T) {
	r := NewRegistry()
	c := testConn("a")
	r.Join(UserKey(1), c)
	r.Leave(UserKey(1), c)
	assert.Empty(t, r.Resolve(UserKey(1)))
}

func TestRegistryLeaveAll(t *testing.T) {
	r := NewRegistry()
	c := testConn("a")
	other := testConn("b")
	r.Join(UserKey(1), c)
	r.Join(VenueKey(2), c)
	r.Join(UserKey(1), other)

	r.LeaveAll(c)

	got := r.Resolve(UserKey(1))
	require.Len(t, got, 1)
	assert.Same(t, other, got[0])
	assert.Empty(t, r.Resolve(VenueKey(2)))
}

// After LeaveAll returns, no Resolve may observe the connection, no matter
// how quickly it follows.
func TestRegistryResolveAfterLeaveAll(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 200; i++ {
		c := testConn(fmt.Sprintf("c%d", i))
		r.Join(UserKey(1), c)
		r.LeaveAll(c)
		for _, got := range r.Resolve(UserKey(1)) {
			assert.NotSame(t, c, got, "resolve observed a connection after LeaveAll")
		}
	}
}

func TestRegistryConcurrentChurn(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := testConn(fmt.Sprintf("c%d", i))
			key := UserKey(int64(i % 5))
			for n := 0; n < 100; n++ {
				r.Join(key, c)
				_ = r.Resolve(key)
				r.LeaveAll(c)
			}
		}(i)
	}
	// concurrent readers on the hot keys
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for n := 0; n < 500; n++ {
				_ = r.Resolve(UserKey(int64(i)))
			}
		}(i)
	}
	wg.Wait()

	// everything left, so every key set must have been dropped
	for i := 0; i < 5; i++ {
		assert.Empty(t, r.Resolve(UserKey(int64(i))))
	}
}
