package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// 浏览器版 localStorage 的 key
// Keys used by the browser build's localStorage.
const (
	legacyUserKey          = "study_room_user"
	legacyTotalSecondsKey  = "study_room_total_seconds"
	legacyTodoKey          = "study_room_todos"
	legacyLive2DEnabledKey = "study_room_live2d_enabled"
	legacyAPIBaseKey       = "study_ai_api_base"
	legacyAPIKeyKey        = "study_ai_api_key"
	legacyModelKey         = "study_ai_model"
)

// ImportReport 描述一次迁移的结果
// ImportReport describes what ImportLegacy did.
type ImportReport struct {
	Owner    string
	Imported []string
	Skipped  []string
}

// ImportLegacy 将浏览器 localStorage 导出的 JSON 对象迁移到 store
// ImportLegacy migrates a JSON object dump of the browser localStorage into store.
//
// owner overrides the nickname found in the dump; one of them must be non-empty.
// Values already present in store are kept. Values that fail validation are skipped.
func ImportLegacy(store KV, r io.Reader, owner string) (ImportReport, error) {
	var dump map[string]string
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return ImportReport{}, fmt.Errorf("parse legacy dump: %w", err)
	}

	owner = strings.TrimSpace(owner)
	if owner == "" {
		if raw, ok := dump[legacyUserKey]; ok {
			var user struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal([]byte(raw), &user); err == nil {
				owner = strings.TrimSpace(user.Name)
			}
		}
	}
	if owner == "" {
		return ImportReport{}, fmt.Errorf("legacy dump has no user; pass an owner name")
	}

	report := ImportReport{Owner: owner}
	scoped := Scoped(store, owner)
	secrets := NewLocalSecrets(scoped)

	put := func(kv KV, legacyKey, key, value string) error {
		if _, exists, err := kv.Get(key); err != nil {
			return err
		} else if exists {
			report.Skipped = append(report.Skipped, legacyKey)
			return nil
		}
		if err := kv.Set(key, value); err != nil {
			return err
		}
		report.Imported = append(report.Imported, legacyKey)
		return nil
	}

	keys := make([]string, 0, len(dump))
	for k := range dump {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, legacyKey := range keys {
		raw := dump[legacyKey]
		var err error
		switch legacyKey {
		case legacyUserKey:
			data, _ := json.Marshal(map[string]string{"name": owner})
			err = put(store, legacyKey, KeyIdentity, string(data))
		case legacyTotalSecondsKey:
			n, convErr := ParseCount(raw)
			if convErr != nil {
				report.Skipped = append(report.Skipped, legacyKey)
				continue
			}
			err = put(scoped, legacyKey, KeyCumulativeSeconds, strconv.FormatInt(n, 10))
		case legacyTodoKey:
			var items []json.RawMessage
			if json.Unmarshal([]byte(raw), &items) != nil {
				report.Skipped = append(report.Skipped, legacyKey)
				continue
			}
			err = put(scoped, legacyKey, KeyTodoItems, raw)
		case legacyLive2DEnabledKey:
			err = put(scoped, legacyKey, KeyVisualEnabled, raw)
		case legacyAPIBaseKey:
			err = put(scoped, legacyKey, KeyChatEndpointBase, raw)
		case legacyModelKey:
			err = put(scoped, legacyKey, KeyChatModel, raw)
		case legacyAPIKeyKey:
			existing, getErr := secrets.Secret(SecretChatAPIKey)
			if getErr != nil {
				err = getErr
				break
			}
			if existing != "" {
				report.Skipped = append(report.Skipped, legacyKey)
				continue
			}
			if err = secrets.SetSecret(SecretChatAPIKey, raw); err == nil {
				report.Imported = append(report.Imported, legacyKey)
			}
		default:
			report.Skipped = append(report.Skipped, legacyKey)
		}
		if err != nil {
			return report, fmt.Errorf("import %s: %w", legacyKey, err)
		}
	}
	return report, nil
}
