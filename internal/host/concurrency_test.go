package host

import (
	"fmt"
	"sync"
	"testing"

	"github.com/eachlabs/chattabs/internal/channel"
	"github.com/eachlabs/chattabs/internal/router"
	"github.com/stretchr/testify/assert"
)

func TestSession_ConcurrentOperations(t *testing.T) {
	s := newTestSession(t)

	const (
		workers = 8
		rounds  = 200
	)
	topics := []channel.Type{channel.TypeGame, channel.TypePublic, channel.TypeQuest}
	filters := []string{"all", "game", "quest", "public", "private"}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				s.Chat.Deliver(router.Incoming{
					Type:    topics[(w+i)%len(topics)],
					Speaker: "Amy",
					Text:    fmt.Sprintf("w%d-%d", w, i),
				})
				s.Chat.Send(fmt.Sprintf("say %d-%d", w, i))
				s.Chat.ClickFilter(filters[(w+i)%len(filters)], router.FilterEvent{})
				if i%10 == 0 {
					_ = s.SetEnabled(i%20 == 0)
				}
				_ = s.Registry.Run("channels")
				s.Chat.Pump()
			}
		}(w)
	}
	wg.Wait()
	s.Chat.Pump()

	// Every delivered topic message and every echoed send lands in "all".
	assert.Equal(t, workers*rounds*2, s.Controller.Store().Len(channel.All))
	assert.Zero(t, s.Chat.Pending())
}
