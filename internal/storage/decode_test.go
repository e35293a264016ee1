package storage

import "testing"

func TestLoadJSON(t *testing.T) {
	tests := []struct {
		name      string
		stored    *string
		wantFound bool
		wantKept  bool
	}{
		{name: "absent", stored: nil, wantFound: false, wantKept: false},
		{name: "valid", stored: strPtr(`{"name":"lin"}`), wantFound: true, wantKept: true},
		{name: "corrupted", stored: strPtr(`{"name":`), wantFound: false, wantKept: false},
		{name: "wrong type", stored: strPtr(`[1,2]`), wantFound: false, wantKept: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kv := NewMemoryStore()
			if tc.stored != nil {
				_ = kv.Set(KeyIdentity, *tc.stored)
			}
			var v struct {
				Name string `json:"name"`
			}
			found, err := LoadJSON(kv, KeyIdentity, &v)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if found != tc.wantFound {
				t.Fatalf("found=%v, want %v", found, tc.wantFound)
			}
			_, kept, _ := kv.Get(KeyIdentity)
			if kept != tc.wantKept {
				t.Fatalf("key kept=%v, want %v", kept, tc.wantKept)
			}
		})
	}
}

func TestLoadJSON_PartialDecodeLeavesTargetAlone(t *testing.T) {
	type item struct {
		ID   int64  `json:"id"`
		Text string `json:"text"`
		Done bool   `json:"done"`
	}
	kv := NewMemoryStore()
	_ = kv.Set(KeyTodoItems, `[{"id":1,"text":"half","done":"yes"}]`)

	items := []item{{ID: 9, Text: "default"}}
	found, err := LoadJSON(kv, KeyTodoItems, &items)
	if err != nil || found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if len(items) != 1 || items[0].Text != "default" {
		t.Fatalf("target modified by failed decode: %+v", items)
	}
	if _, present, _ := kv.Get(KeyTodoItems); present {
		t.Fatal("corrupted key not removed")
	}

	var notPtr []item
	if _, err := LoadJSON(kv, KeyTodoItems, notPtr); err == nil {
		t.Fatal("expected error for non-pointer target")
	}
}

func TestLoadInt(t *testing.T) {
	tests := []struct {
		name     string
		stored   string
		want     int64
		wantKept bool
	}{
		{name: "decimal", stored: "42", want: 42, wantKept: true},
		{name: "padded", stored: " 7 ", want: 7, wantKept: true},
		{name: "fraction floors", stored: "12.5", want: 12, wantKept: true},
		{name: "exponent", stored: "1e3", want: 1000, wantKept: true},
		{name: "garbage", stored: "abc", want: 0, wantKept: false},
		{name: "nan", stored: "NaN", want: 0, wantKept: false},
		{name: "infinity", stored: "Inf", want: 0, wantKept: false},
		{name: "negative", stored: "-5", want: 0, wantKept: false},
		{name: "negative fraction", stored: "-0.5", want: 0, wantKept: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kv := NewMemoryStore()
			_ = kv.Set(KeyCumulativeSeconds, tc.stored)
			got, err := LoadInt(kv, KeyCumulativeSeconds)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got=%d want=%d", got, tc.want)
			}
			if _, kept, _ := kv.Get(KeyCumulativeSeconds); kept != tc.wantKept {
				t.Fatalf("kept=%v want %v", kept, tc.wantKept)
			}
		})
	}
}

func TestFlags(t *testing.T) {
	kv := NewMemoryStore()
	if on, _ := LoadFlag(kv, KeyVisualEnabled); on {
		t.Fatal("absent flag should be off")
	}
	_ = SaveFlag(kv, KeyVisualEnabled, true)
	if v, _, _ := kv.Get(KeyVisualEnabled); v != "1" {
		t.Fatalf("stored=%q, want 1", v)
	}
	_ = SaveFlag(kv, KeyVisualEnabled, false)
	if on, _ := LoadFlag(kv, KeyVisualEnabled); on {
		t.Fatal("flag should be off")
	}
}

func TestScopedIsolation(t *testing.T) {
	kv := NewMemoryStore()
	alice := Scoped(kv, "Alice")
	aliceAgain := Scoped(kv, "  alice ")
	bob := Scoped(kv, "bob")

	_ = alice.Set(KeyCumulativeSeconds, "10")
	if v, ok, _ := aliceAgain.Get(KeyCumulativeSeconds); !ok || v != "10" {
		t.Fatalf("same owner should share namespace, got %q ok=%v", v, ok)
	}
	if _, ok, _ := bob.Get(KeyCumulativeSeconds); ok {
		t.Fatal("bob must not see alice's value")
	}
	if _, ok, _ := kv.Get(KeyCumulativeSeconds); ok {
		t.Fatal("unscoped key must not be written")
	}
	if got := OwnerPrefix("a/b"); got != "u/a%2Fb/" {
		t.Fatalf("OwnerPrefix escaped=%q", got)
	}
}

func TestLocalSecrets(t *testing.T) {
	kv := NewMemoryStore()
	s := NewLocalSecrets(kv)
	if v, err := s.Secret(SecretChatAPIKey); err != nil || v != "" {
		t.Fatalf("unset secret=%q err=%v", v, err)
	}
	_ = s.SetSecret(SecretChatAPIKey, "sk-test")
	if v, _ := s.Secret(SecretChatAPIKey); v != "sk-test" {
		t.Fatalf("secret=%q", v)
	}
	if _, ok, _ := kv.Get(SecretChatAPIKey); ok {
		t.Fatal("secret must live under its own prefix")
	}
	_ = s.DeleteSecret(SecretChatAPIKey)
	if v, _ := s.Secret(SecretChatAPIKey); v != "" {
		t.Fatalf("deleted secret=%q", v)
	}
}

func strPtr(s string) *string { return &s }
