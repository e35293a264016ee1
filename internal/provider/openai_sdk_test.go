package provider

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientListModels(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"object":"list","data":[
			{"id":"gpt-4o-mini","object":"model","owned_by":"openai"},
			{"id":"deepseek-chat","object":"model","owned_by":"deepseek"}
		]}`)
	}))
	defer srv.Close()

	models, err := NewClient(Options{}).ListModels(context.Background(), Endpoint{BaseURL: srv.URL + "/v1/", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if gotPath != "/v1/models" {
		t.Fatalf("path=%q", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("auth=%q", gotAuth)
	}
	if len(models) != 2 || models[0].ID != "deepseek-chat" || models[1].OwnedBy != "openai" {
		t.Fatalf("models=%+v", models)
	}
}

func TestClientListModels_EmptyBase(t *testing.T) {
	if _, err := NewClient(Options{}).ListModels(context.Background(), Endpoint{}); err == nil {
		t.Fatal("expected error for empty base url")
	}
}
