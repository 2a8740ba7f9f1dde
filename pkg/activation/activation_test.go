package activation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinear(t *testing.T) {
	a := Linear{}
	assert.Equal(t, float32(3.5), a.Activate(3.5))
	assert.Equal(t, float32(1), a.Prime(3.5))
}

func TestReLU(t *testing.T) {
	a := ReLU{}
	assert.Equal(t, float32(0), a.Activate(-2))
	assert.Equal(t, float32(2), a.Activate(2))
	assert.Equal(t, float32(0), a.Prime(-1))
	assert.Equal(t, float32(1), a.Prime(1))
}

func TestSigmoid(t *testing.T) {
	s := Sigmoid{}
	assert.InDelta(t, 0.5, s.Activate(0), 1e-6)
	assert.InDelta(t, 0.25, s.Prime(0), 1e-6)
}

func TestByName(t *testing.T) {
	for _, name := range []string{"linear", "relu", "sigmoid"} {
		_, err := ByName(name)
		require.NoError(t, err)
	}
	_, err := ByName("bogus")
	assert.Error(t, err)
}
