package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWipeBytes(t *testing.T) {
	b := []byte("hunter2")
	WipeBytes(b)
	require.Equal(t, make([]byte, len("hunter2")), b)
}

func TestWipeBytes_Empty(t *testing.T) {
	WipeBytes(nil)
	WipeBytes([]byte{})
}
