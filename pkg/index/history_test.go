package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryPushFront(t *testing.T) {
	h := newHistory()

	h.PushFront(1.0)
	h.PushFront(2.0)
	h.PushFront(3.0)

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 3.0, h.Front())
	assert.Equal(t, []float64{3.0, 2.0, 1.0}, h.Values())
}

func TestHistoryBoundedCapacity(t *testing.T) {
	tests := []struct {
		name   string
		pushes int
		want   int
	}{
		{"under capacity", 5, 5},
		{"at capacity", 20, 20},
		{"over capacity", 50, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHistory()
			for i := 1; i <= tt.pushes; i++ {
				h.PushFront(float64(i))
			}

			assert.Equal(t, tt.want, h.Len())
			// Front is always the most recently pushed value.
			assert.Equal(t, float64(tt.pushes), h.Front())
			// Oldest retained value sits at the back.
			assert.Equal(t, float64(tt.pushes-tt.want+1), h.Values()[h.Len()-1])
		})
	}
}
