package storage

import (
	"strings"
	"testing"
)

func TestImportLegacy(t *testing.T) {
	dump := `{
		"study_room_user": "{\"name\":\"小林\"}",
		"study_room_total_seconds": "3600",
		"study_room_todos": "[{\"id\":1,\"text\":\"背单词\",\"done\":false}]",
		"study_room_live2d_enabled": "1",
		"study_ai_api_base": "https://api.deepseek.com/v1",
		"study_ai_api_key": "sk-legacy",
		"study_ai_model": "deepseek-chat",
		"theme": "dark"
	}`
	kv := NewMemoryStore()
	report, err := ImportLegacy(kv, strings.NewReader(dump), "")
	if err != nil {
		t.Fatalf("ImportLegacy: %v", err)
	}
	if report.Owner != "小林" {
		t.Fatalf("owner=%q", report.Owner)
	}
	if len(report.Imported) != 7 {
		t.Fatalf("imported=%v", report.Imported)
	}
	if len(report.Skipped) != 1 || report.Skipped[0] != "theme" {
		t.Fatalf("skipped=%v", report.Skipped)
	}

	scoped := Scoped(kv, "小林")
	if v, _, _ := scoped.Get(KeyCumulativeSeconds); v != "3600" {
		t.Fatalf("cumulative=%q", v)
	}
	if v, _, _ := scoped.Get(KeyChatModel); v != "deepseek-chat" {
		t.Fatalf("model=%q", v)
	}
	if v, _ := NewLocalSecrets(scoped).Secret(SecretChatAPIKey); v != "sk-legacy" {
		t.Fatalf("api key=%q", v)
	}
	if v, _, _ := kv.Get(KeyIdentity); v != `{"name":"小林"}` {
		t.Fatalf("identity=%q", v)
	}
}

func TestImportLegacy_KeepsExistingAndSkipsInvalid(t *testing.T) {
	kv := NewMemoryStore()
	scoped := Scoped(kv, "lin")
	_ = scoped.Set(KeyCumulativeSeconds, "99")

	dump := `{"study_room_total_seconds":"10","study_room_todos":"not json"}`
	report, err := ImportLegacy(kv, strings.NewReader(dump), "lin")
	if err != nil {
		t.Fatalf("ImportLegacy: %v", err)
	}
	if len(report.Imported) != 0 || len(report.Skipped) != 2 {
		t.Fatalf("report=%+v", report)
	}
	if v, _, _ := scoped.Get(KeyCumulativeSeconds); v != "99" {
		t.Fatalf("existing value overwritten: %q", v)
	}
}

func TestImportLegacy_NeedsOwner(t *testing.T) {
	if _, err := ImportLegacy(NewMemoryStore(), strings.NewReader(`{"study_ai_model":"m"}`), ""); err == nil {
		t.Fatal("expected error without owner")
	}
	if _, err := ImportLegacy(NewMemoryStore(), strings.NewReader(`[`), "x"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestImportLegacy_FractionalTotalIsFloored(t *testing.T) {
	kv := NewMemoryStore()
	dump := `{"study_room_total_seconds":"125.9"}`
	report, err := ImportLegacy(kv, strings.NewReader(dump), "lin")
	if err != nil {
		t.Fatalf("ImportLegacy: %v", err)
	}
	if len(report.Imported) != 1 {
		t.Fatalf("report=%+v", report)
	}
	if v, _, _ := Scoped(kv, "lin").Get(KeyCumulativeSeconds); v != "125" {
		t.Fatalf("cumulative=%q, want 125", v)
	}
}
