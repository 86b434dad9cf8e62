package utils

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, Map([]int{1, 2}, strconv.Itoa))
	assert.Empty(t, Map([]int{}, strconv.Itoa))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"judge", "board"}, "board"))
	assert.False(t, Contains([]string{"judge"}, "auditor"))
	assert.False(t, Contains(nil, 1))
}

func TestUniques(t *testing.T) {
	assert.ElementsMatch(t, []int{3, 1, 2}, Uniques([]int{1, 2, 2, 3, 1}))
	assert.ElementsMatch(t, []int{4, 5}, Keys(map[int]bool{4: true, 5: false}))
}
