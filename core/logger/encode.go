package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
)

type encoder interface {
	encode(buf *bytes.Buffer, e entry) error
}

var bufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

func getBuffer() *bytes.Buffer {
	b := bufPool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

func putBuffer(b *bytes.Buffer) {
	if b.Cap() > 64<<10 {
		return
	}
	bufPool.Put(b)
}

// sortedKeys lists the keys of e named in order first, then the rest sorted.
func sortedKeys(e entry, order []string) []string {
	keys := make([]string, 0, len(e))
	for _, k := range order {
		if _, ok := e[k]; ok {
			keys = append(keys, k)
		}
	}
	listed := len(keys)
	for k := range e {
		if !slices.Contains(keys[:listed], k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys[listed:])
	return keys
}

// kvEncoder writes key=value pairs separated by spaces.
type kvEncoder struct{ order []string }

func (k kvEncoder) encode(buf *bytes.Buffer, e entry) error {
	for i, key := range sortedKeys(e, k.order) {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(key)
		buf.WriteByte('=')
		buf.WriteString(kvValue(e[key]))
	}
	return nil
}

func kvValue(v any) string {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	default:
		s = fmt.Sprint(x)
	}
	if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}

// jsonEncoder writes one JSON object with keys in the same order as kv.
type jsonEncoder struct{ order []string }

func (j jsonEncoder) encode(buf *bytes.Buffer, e entry) error {
	buf.WriteByte('{')
	for i, key := range sortedKeys(e, j.order) {
		if i > 0 {
			buf.WriteByte(',')
		}
		raw, err := json.Marshal(e[key])
		if err != nil {
			return fmt.Errorf("logger: encode %s: %w", key, err)
		}
		buf.WriteString(strconv.Quote(key))
		buf.WriteByte(':')
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return nil
}
