package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "jose nunez", Fold("  José Núñez "))
	assert.Equal(t, "idriss", Fold("IDRISS"))
	assert.Equal(t, "", Fold(""))
}
