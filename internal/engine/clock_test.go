package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/weft/internal/node"
)

func TestClock_Sequence(t *testing.T) {
	c := NewClock()
	assert.Zero(t, c.Current())
	assert.EqualValues(t, 1, c.Next())
	assert.EqualValues(t, 2, c.Next())
	assert.EqualValues(t, 2, c.Current())
}

func TestClock_NumbersPasses(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t, node.H("p", nil))
	fx.mount(t, node.H("p", nil))

	assert.EqualValues(t, 2, fx.root.Pass())
	assert.EqualValues(t, 1, fx.commits[0].Pass)
	assert.EqualValues(t, 2, fx.commits[1].Pass)
}
