// Package i18n holds the English and Simplified Chinese message catalogs.
package i18n

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

const (
	LocaleEnglish = "en"
	LocaleChinese = "zh-CN"
)

// I18n 一个语言的只读消息表，查不到时回退英文，再回退为 key 本身
// I18n is a read-only view of one catalog. Lookups fall back to English, then to the key.
type I18n struct {
	locale  string
	catalog map[string]string
}

var (
	global     *I18n
	globalOnce sync.Once
)

// Global returns a process-wide translator for the environment's locale.
func Global() *I18n {
	globalOnce.Do(func() {
		global = New("")
	})
	return global
}

// New 按 locale 选择消息表；空字符串表示从环境变量检测
// New picks the catalog for locale. An empty locale is detected from the environment.
func New(locale string) *I18n {
	if strings.TrimSpace(locale) == "" {
		locale = DetectLocale()
	}
	locale = normalizeLocale(locale)

	catalog := EnMessages
	if locale == LocaleChinese {
		catalog = ZhCNMessages
	}
	return &I18n{locale: locale, catalog: catalog}
}

// T formats the message for key with args (fmt verbs, indexed verbs allowed).
func (i *I18n) T(key string, args ...any) string {
	tmpl, ok := i.catalog[key]
	if !ok {
		if tmpl, ok = EnMessages[key]; !ok {
			return key
		}
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

func (i *I18n) Locale() string {
	return i.locale
}

// IsChinese reports whether the Chinese catalog is active.
func (i *I18n) IsChinese() bool {
	return i.locale == LocaleChinese
}

// DetectLocale 依次读取 STUDYROOM_LANG、LANG、LC_ALL、LC_MESSAGES
// DetectLocale reads STUDYROOM_LANG, LANG, LC_ALL and LC_MESSAGES in that order.
func DetectLocale() string {
	for _, name := range []string{"STUDYROOM_LANG", "LANG", "LC_ALL", "LC_MESSAGES"} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return normalizeLocale(v)
		}
	}
	return LocaleEnglish
}

// normalizeLocale maps "zh_CN.UTF-8", "zh-TW", "zh" and friends onto a supported
// catalog. Anything that is not Chinese uses English.
func normalizeLocale(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if cut := strings.IndexAny(s, ".@"); cut >= 0 {
		s = s[:cut]
	}
	if s == "zh" || strings.HasPrefix(s, "zh_") || strings.HasPrefix(s, "zh-") {
		return LocaleChinese
	}
	return LocaleEnglish
}
