package coordinator

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryMembershipLifecycle(t *testing.T) {
	reg := NewRegistry()
	reg.Register("c1", nopSender{})
	reg.Register("c2", nopSender{})

	reg.Join("c1", "lobby")
	reg.Join("c2", "lobby")
	reg.Join("c1", "random")

	assert.Equal(t, []string{"c1", "c2"}, reg.Members("lobby"))
	assert.Equal(t, []string{"lobby", "random"}, reg.RoomsOf("c1"))
	assert.True(t, reg.InRoom("c1", "random"))

	reg.Leave("c1", "lobby")
	assert.Equal(t, []string{"c2"}, reg.Members("lobby"))
	assert.False(t, reg.InRoom("c1", "lobby"))

	// Unregister drops every remaining membership.
	reg.Unregister("c1")
	assert.Empty(t, reg.Members("random"))
	assert.Empty(t, reg.RoomsOf("c1"))
	assert.False(t, reg.Registered("c1"))

	_, ok := reg.Handle("c1")
	assert.False(t, ok)
}

func TestRegistryJoinUnknownConnectionIsNoOp(t *testing.T) {
	reg := NewRegistry()
	reg.Join("ghost", "lobby")
	assert.Empty(t, reg.Members("lobby"))
}

func TestRegistryDisplayNameFallsBackToConnectionID(t *testing.T) {
	reg := NewRegistry()
	reg.Register("c1", nopSender{})

	assert.Equal(t, "c1", reg.DisplayName("c1"))

	reg.SetName("c1", "alice")
	assert.Equal(t, "alice", reg.DisplayName("c1"))

	// Names are not recorded for unregistered connections.
	reg.SetName("ghost", "casper")
	assert.Equal(t, "ghost", reg.DisplayName("ghost"))
}

func TestRegistryConnectionIDsExcludes(t *testing.T) {
	reg := NewRegistry()
	reg.Register("c1", nopSender{})
	reg.Register("c2", nopSender{})
	reg.Register("c3", nopSender{})

	assert.Equal(t, []string{"c1", "c2", "c3"}, reg.ConnectionIDs())
	assert.Equal(t, []string{"c1", "c3"}, reg.ConnectionIDs("c2"))
}

func TestRegistryConcurrentRegisterUnregister(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			reg.Register(id, nopSender{})
			reg.Join(id, "lobby")
			reg.Members("lobby")
			if i%2 == 0 {
				reg.Unregister(id)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, reg.Members("lobby"), 25)
	assert.Len(t, reg.ConnectionIDs(), 25)
}
