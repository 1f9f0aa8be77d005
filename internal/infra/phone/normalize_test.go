package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeE164(t *testing.T) {
	assert.Equal(t, "+16502530000", NormalizeE164("(650) 253-0000"))
	assert.Equal(t, "+16502530000", NormalizeE164(" +1 650-253-0000 "))
	assert.Equal(t, "abc", NormalizeE164(" abc "))
	assert.Equal(t, "", NormalizeE164("   "))
}

func TestIsPlausible(t *testing.T) {
	assert.True(t, IsPlausible("(650) 253-0000"))
	assert.False(t, IsPlausible("12"))
	assert.False(t, IsPlausible("not a phone"))
}
