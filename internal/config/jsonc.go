package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// readJSONC 读取允许注释的 JSON 文件；文件不存在时 found=false
// readJSONC decodes a JSON-with-comments file into v. A missing file is not an error.
func readJSONC(path string, v any) (found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := json.Unmarshal(stripJSONComments(data), v); err != nil {
		return false, fmt.Errorf("parse config %q: %w", path, err)
	}
	return true, nil
}

// stripJSONComments drops // and /* */ comments that sit outside string literals.
// Line comments keep their newline.
func stripJSONComments(src []byte) []byte {
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); {
		switch {
		case src[i] == '"':
			end := stringEnd(src, i)
			out = append(out, src[i:end]...)
			i = end
		case bytes.HasPrefix(src[i:], []byte("//")):
			if nl := bytes.IndexByte(src[i:], '\n'); nl >= 0 {
				i += nl
			} else {
				i = len(src)
			}
		case bytes.HasPrefix(src[i:], []byte("/*")):
			if end := bytes.Index(src[i+2:], []byte("*/")); end >= 0 {
				i += end + 4
			} else {
				i = len(src)
			}
		default:
			out = append(out, src[i])
			i++
		}
	}
	return out
}

// stringEnd returns the index just past the string literal opening at src[start].
func stringEnd(src []byte, start int) int {
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(src)
}
