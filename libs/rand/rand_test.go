package rand_test

import (
	"strings"
	"testing"

	vgrand "github.com/abstract-foundation/agw-session-keys/libs/rand"

	"github.com/stretchr/testify/assert"
)

func TestRandomHelpers(t *testing.T) {
	t.Run("Random strings have the requested size", testRandomStringsHaveRequestedSize)
	t.Run("Random strings are alphanumeric", testRandomStringsAreAlphanumeric)
	t.Run("Random bytes have the requested size", testRandomBytesHaveRequestedSize)
}

func testRandomStringsHaveRequestedSize(t *testing.T) {
	for _, size := range []int{0, 1, 32, 100} {
		assert.Len(t, vgrand.RandomStr(size), size)
	}
}

func testRandomStringsAreAlphanumeric(t *testing.T) {
	str := vgrand.RandomStr(256)

	assert.Empty(t, strings.Trim(str, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890"))
}

func testRandomBytesHaveRequestedSize(t *testing.T) {
	for _, size := range []int{0, 1, 32, 100} {
		assert.Len(t, vgrand.RandomBytes(size), size)
	}
	assert.NotEqual(t, vgrand.RandomBytes(32), vgrand.RandomBytes(32))
}
