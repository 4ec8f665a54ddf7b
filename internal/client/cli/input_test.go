package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("  alice \n"), "Enter username", &out)
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
	assert.Equal(t, "Enter username\n> ", out.String())
}

func TestGetSimpleText_LastLineWithoutNewline(t *testing.T) {
	got, err := GetSimpleText(rdr("alice"), "?", &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
}

func TestGetSimpleText_EOF(t *testing.T) {
	_, err := GetSimpleText(rdr(""), "?", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestGetMultiline(t *testing.T) {
	got, err := GetMultiline(rdr("line one\nline two\n\nnot read\n"), "Content", &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", got)
}

func TestGetMultiline_EOFEndsInput(t *testing.T) {
	got, err := GetMultiline(rdr("only"), "Content", &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "only", got)
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)
	assert.NotContains(t, out.String(), "s3cret")

	readPassword = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }
	_, err = GetPassword(&bytes.Buffer{})
	assert.Error(t, err)
}
