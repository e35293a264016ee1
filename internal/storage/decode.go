package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"studyroom/internal/logger"
)

// LoadJSON 读取并解析 JSON 值。值损坏时删除该 key 并返回 found=false，
// 调用方回退到默认值；不向用户暴露错误。
// LoadJSON reads key and decodes it into v. A value that fails to parse is treated as
// corruption: the key is removed and found is false so the caller keeps its default.
// Only backend read failures are returned as errors. v is left untouched unless the
// whole value decodes.
func LoadJSON(kv KV, key string, v any) (found bool, err error) {
	dst := reflect.ValueOf(v)
	if dst.Kind() != reflect.Pointer || dst.IsNil() {
		return false, fmt.Errorf("load %s: need a non-nil pointer, got %T", key, v)
	}
	raw, ok, err := kv.Get(key)
	if err != nil || !ok {
		return false, err
	}
	// json.Unmarshal 出错时可能已写入一部分字段，先解到新值
	fresh := reflect.New(dst.Elem().Type())
	if err := json.Unmarshal([]byte(raw), fresh.Interface()); err != nil {
		discardCorrupt(kv, key, err)
		return false, nil
	}
	dst.Elem().Set(fresh.Elem())
	return true, nil
}

// SaveJSON encodes v and writes it under key.
func SaveJSON(kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return kv.Set(key, string(data))
}

// LoadInt 读取非负数；小数向下取整，缺失或损坏时返回 0
// LoadInt reads a non-negative number, flooring fractions ("12.5" is 12).
// It returns 0 when the key is absent or corrupt.
func LoadInt(kv KV, key string) (int64, error) {
	raw, ok, err := kv.Get(key)
	if err != nil || !ok {
		return 0, err
	}
	n, err := ParseCount(raw)
	if err != nil {
		discardCorrupt(kv, key, err)
		return 0, nil
	}
	return n, nil
}

// ParseCount parses a non-negative integer or decimal and floors it.
// NaN, infinities and negative values are rejected.
func ParseCount(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative count %d", n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("count out of range: %q", raw)
	}
	return int64(math.Floor(f)), nil
}

// LoadFlag reads a "1"/"0" flag. Anything other than "1" is false.
func LoadFlag(kv KV, key string) (bool, error) {
	raw, ok, err := kv.Get(key)
	if err != nil || !ok {
		return false, err
	}
	return raw == FlagOn, nil
}

// SaveFlag writes a boolean as "1"/"0".
func SaveFlag(kv KV, key string, on bool) error {
	if on {
		return kv.Set(key, FlagOn)
	}
	return kv.Set(key, FlagOff)
}

// DiscardCorrupt removes key after a caller-side validation failure.
func DiscardCorrupt(kv KV, key string, reason error) {
	discardCorrupt(kv, key, reason)
}

func discardCorrupt(kv KV, key string, reason error) {
	log := logger.With("storage")
	log.Warn().Str("key", key).AnErr("reason", reason).Msg("discarding corrupted value")
	if err := kv.Remove(key); err != nil {
		log.Error().Str("key", key).Err(err).Msg("remove corrupted value failed")
	}
}
