package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	text, err := GetSimpleText(bufio.NewReader(strings.NewReader("  hello \n")), "Say something", &out)
	require.NoError(t, err)
	require.Equal(t, "hello", text)
	require.Contains(t, out.String(), "Say something")
}

func TestGetSimpleText_PartialLineAtEOF(t *testing.T) {
	var out bytes.Buffer
	text, err := GetSimpleText(bufio.NewReader(strings.NewReader("hello")), "p", &out)
	require.NoError(t, err)
	require.Equal(t, "hello", text)
}

func TestGetSimpleText_EmptyAtEOF(t *testing.T) {
	var out bytes.Buffer
	_, err := GetSimpleText(bufio.NewReader(strings.NewReader("")), "p", &out)
	require.Error(t, err)
}

func TestGetPassword_UsesSeam(t *testing.T) {
	saved := readPassword
	defer func() { readPassword = saved }()
	readPassword = func(int) ([]byte, error) { return []byte("hunter2"), nil }

	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	require.Equal(t, []byte("hunter2"), pw)
	require.Contains(t, out.String(), "Enter password:")
}
