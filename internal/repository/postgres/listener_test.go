package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReconnectBackoff(t *testing.T) {
	t.Run("Should double from the minimum delay up to the cap", func(t *testing.T) {
		b := reconnectBackoff()

		var got []time.Duration
		for i := 0; i < 8; i++ {
			d, stop := b.Next()
			assert.False(t, stop)
			got = append(got, d)
		}

		assert.Equal(t, []time.Duration{
			time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
			16 * time.Second, maxReconnectDelay, maxReconnectDelay, maxReconnectDelay,
		}, got)
	})

	t.Run("Should start over with a fresh backoff", func(t *testing.T) {
		b := reconnectBackoff()
		for i := 0; i < 5; i++ {
			b.Next()
		}

		d, _ := reconnectBackoff().Next()
		assert.Equal(t, minReconnectDelay, d)
	})
}
