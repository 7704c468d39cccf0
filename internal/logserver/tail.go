package logserver

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/valyala/fastjson"
)

const redactedValue = "[REDACTED]"

// sensitiveKeys are matched as substrings of the lowercased key
var sensitiveKeys = []string{
	"token", "password", "api_key", "secret", "authorization", "cookie", "credential", "bearer",
}

// TailFile returns the last n non-blank lines of a JSON-lines log file, each
// rendered as a JSON value with sensitive fields redacted. Lines that are not
// valid JSON become {"msg": line, "level": "RAW", "ts": null}. A missing or
// unreadable file yields no entries.
func TailFile(path string, n int) [][]byte {
	f, err := os.Open(path) //nolint:gosec // Serving the configured log file is the point
	if err != nil {
		return nil
	}
	defer f.Close() //nolint:errcheck // Read-only file

	lines, err := lastLines(f, n)
	if err != nil {
		return nil
	}

	var p fastjson.Parser
	var a fastjson.Arena
	out := make([][]byte, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, renderLine(&p, &a, line))
		a.Reset()
	}
	return out
}

// lastLines reads r to the end and keeps the last n lines
func lastLines(r io.Reader, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	ring := make([]string, n)
	count := 0
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			ring[count%n] = strings.ToValidUTF8(line, "�")
			count++
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	if count <= n {
		return ring[:count], nil
	}
	start := count % n
	return append(ring[start:], ring[:start]...), nil
}

// renderLine parses and redacts one line. The result does not reference p or a.
func renderLine(p *fastjson.Parser, a *fastjson.Arena, line string) []byte {
	v, err := p.Parse(line)
	if err != nil {
		raw := a.NewObject()
		raw.Set("msg", a.NewString(line))
		raw.Set("level", a.NewString("RAW"))
		raw.Set("ts", a.NewNull())
		return raw.MarshalTo(nil)
	}

	redact(v, a)
	return v.MarshalTo(nil)
}

// redact replaces, in place, every truthy value whose key looks sensitive and
// descends into nested objects
func redact(v *fastjson.Value, a *fastjson.Arena) {
	obj, err := v.Object()
	if err != nil {
		return
	}

	obj.Visit(func(key []byte, field *fastjson.Value) {
		k := string(key)
		switch {
		case isSensitiveKey(k) && truthy(field):
			obj.Set(k, a.NewString(redactedValue))
		case field.Type() == fastjson.TypeObject:
			redact(field, a)
		}
	})
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// truthy follows the log producer's notion of an empty value
func truthy(v *fastjson.Value) bool {
	switch v.Type() {
	case fastjson.TypeNull, fastjson.TypeFalse:
		return false
	case fastjson.TypeString:
		return len(v.GetStringBytes()) > 0
	case fastjson.TypeNumber:
		return v.GetFloat64() != 0
	case fastjson.TypeArray:
		return len(v.GetArray()) > 0
	case fastjson.TypeObject:
		obj, _ := v.Object()
		return obj.Len() > 0
	default:
		return true
	}
}
