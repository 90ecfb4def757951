package attemptdomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveCount(t *testing.T) {
	tests := map[int]int{0: 0, 1: 1, 5: 1, 12: 1, 20: 1, 21: 2, 50: 3, 100: 5}
	for size, want := range tests {
		assert.Equal(t, want, RemoveCount(size), "size %d", size)
	}
}

func TestAverage(t *testing.T) {
	tests := []struct {
		name   string
		window []Attempt
		size   int
		want   int
		wantOK bool
	}{
		{
			name:   "ao5 trims fastest and slowest",
			window: newestFirst(0, 89550, 88500, 96780, 84060, 70940),
			size:   5,
			want:   87370,
			wantOK: true,
		},
		{
			name:   "ao12 first window",
			window: newestFirst(0, 68070, 52980, 93270, 78630, 88740, 84950, 89550, 88500, 96780, 84060, 70940, 85510),
			size:   12,
			want:   83222,
			wantOK: true,
		},
		{
			name:   "ao12 second window",
			window: newestFirst(0, 52980, 93270, 78630, 88740, 84950, 89550, 88500, 96780, 84060, 70940, 85510, 69280),
			size:   12,
			want:   83343,
			wantOK: true,
		},
		{
			name:   "short window has no result",
			window: newestFirst(0, 1000, 2000, 3000, 4000),
			size:   5,
		},
		{
			name:   "long window has no result",
			window: newestFirst(0, 1000, 2000, 3000, 4000, 5000, 6000),
			size:   5,
		},
		{
			name:   "empty window",
			window: nil,
			size:   12,
		},
		{
			name:   "two dnfs in ao5 has no result",
			window: newestFirst(50000, 67280, dnf, 50717, dnf, 73941),
			size:   5,
		},
		{
			name:   "one dnf is trimmed as the slowest",
			window: newestFirst(1, 4000, dnf, 1000, 3000, 2000),
			size:   5,
			want:   3000,
			wantOK: true,
		},
		{
			name:   "dnf milliseconds are ignored",
			window: newestFirst(10, 57970, 73941, 48917, dnf, 80280),
			size:   5,
			want:   70730,
			wantOK: true,
		},
		{
			name:   "rounds to nearest",
			window: newestFirst(0, 1, 1, 2, 2, 9),
			size:   5,
			want:   2,
			wantOK: true,
		},
		{
			name:   "size one is not an average",
			window: newestFirst(0, 1234),
			size:   1,
		},
		{
			name:   "non positive size",
			window: nil,
			size:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Average(tt.window, tt.size)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestAverageRejectsTooManyDNFs(t *testing.T) {
	for _, size := range []int{5, 12, 100} {
		values := make([]int, size)
		for i := range values {
			values[i] = 10000 + i
		}
		for i := 0; i <= RemoveCount(size); i++ {
			values[i*2] = dnf
		}
		_, ok := Average(newestFirst(0, values...), size)
		assert.False(t, ok, "size %d", size)
	}
}

func TestAverageDoesNotReorderInput(t *testing.T) {
	window := newestFirst(0, 5000, 1000, 4000, 2000, 3000)
	before := append([]Attempt(nil), window...)

	_, ok := Average(window, 5)

	assert.True(t, ok)
	assert.Equal(t, before, window)
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 3, roundHalfUp(5, 2))
	assert.Equal(t, 4, roundHalfUp(7, 2))
	assert.Equal(t, 1, roundHalfUp(4, 3))
	assert.Equal(t, 2, roundHalfUp(5, 3))
	assert.Equal(t, 0, roundHalfUp(0, 3))
}
