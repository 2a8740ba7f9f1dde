package loss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMSE(t *testing.T) {
	m := MSE{}
	assert.Equal(t, float32(0.25), m.Loss(1, 1.5))
	assert.Equal(t, float32(0.5), m.Delta(1, 1.5))
}

func TestNLL(t *testing.T) {
	n := NLL{}
	assert.Greater(t, n.Loss(1, 0.1), float32(0))
	assert.Equal(t, float32(0.5), n.Delta(1, 1.5))
}

func TestByName(t *testing.T) {
	for _, name := range []string{"mse", "nll"} {
		_, err := ByName(name)
		require.NoError(t, err)
	}
	_, err := ByName("bogus")
	assert.Error(t, err)
}
