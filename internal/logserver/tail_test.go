package logserver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultLogFileName)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func asStrings(entries [][]byte) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, string(e))
	}
	return out
}

func TestTailFile(t *testing.T) {
	tcs := []struct {
		name     string
		lines    []string
		n        int
		expected []string
	}{
		{
			name:     "keeps the last n lines",
			lines:    []string{`{"msg":"1"}`, `{"msg":"2"}`, `{"msg":"3"}`},
			n:        2,
			expected: []string{`{"msg":"2"}`, `{"msg":"3"}`},
		},
		{
			name:     "fewer lines than n",
			lines:    []string{`{"msg":"1"}`},
			n:        500,
			expected: []string{`{"msg":"1"}`},
		},
		{
			name:     "blank lines are skipped",
			lines:    []string{`{"msg":"1"}`, ``, `   `, `{"msg":"2"}`},
			n:        10,
			expected: []string{`{"msg":"1"}`, `{"msg":"2"}`},
		},
		{
			name:     "invalid JSON becomes a RAW entry",
			lines:    []string{`Traceback (most recent call last):`},
			n:        10,
			expected: []string{`{"msg":"Traceback (most recent call last):","level":"RAW","ts":null}`},
		},
		{
			name:     "sensitive values are redacted",
			lines:    []string{`{"msg":"login","api_key":"abc","Authorization":"Bearer x","user":"bob"}`},
			n:        10,
			expected: []string{`{"msg":"login","api_key":"[REDACTED]","Authorization":"[REDACTED]","user":"bob"}`},
		},
		{
			name:     "nested objects are redacted",
			lines:    []string{`{"msg":"call","extra":{"refresh_token":"r","depth":{"password":"p"}}}`},
			n:        10,
			expected: []string{`{"msg":"call","extra":{"refresh_token":"[REDACTED]","depth":{"password":"[REDACTED]"}}}`},
		},
		{
			name:     "empty sensitive values are kept",
			lines:    []string{`{"token":"","secret":null,"cookie":0,"credential":false}`},
			n:        10,
			expected: []string{`{"token":"","secret":null,"cookie":0,"credential":false}`},
		},
		{
			name:     "non-object JSON is passed through",
			lines:    []string{`[1,2,3]`},
			n:        10,
			expected: []string{`[1,2,3]`},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			path := writeLog(t, tc.lines...)
			assert.Equal(t, tc.expected, asStrings(TailFile(path, tc.n)))
		})
	}
}

func TestTailFile_MissingFile(t *testing.T) {
	assert.Empty(t, TailFile(filepath.Join(t.TempDir(), "nope.log"), 10))
}

func TestTailFile_NoTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.log")
	require.NoError(t, os.WriteFile(path, []byte(`{"msg":"a"}`+"\n"+`{"msg":"b"}`), 0o600))

	assert.Equal(t, []string{`{"msg":"a"}`, `{"msg":"b"}`}, asStrings(TailFile(path, 10)))
}

func TestLastLines_Wraparound(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "line-%d\n", i)
	}

	lines, err := lastLines(strings.NewReader(b.String()), 7)
	require.NoError(t, err)
	require.Len(t, lines, 7)
	assert.Equal(t, "line-18\n", lines[0])
	assert.Equal(t, "line-24\n", lines[6])
}

func TestIsSensitiveKey(t *testing.T) {
	for _, key := range []string{"token", "ACCESS_TOKEN", "Password", "api_key", "client_secret", "authorization", "set-cookie", "credentials", "bearer"} {
		assert.True(t, isSensitiveKey(key), key)
	}
	for _, key := range []string{"msg", "level", "ts", "tool", "apikey"} {
		assert.False(t, isSensitiveKey(key), key)
	}
}
