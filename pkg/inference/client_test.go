package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/pawfinderz-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
)

func smallTensor() [][][][]float32 {
	return [][][][]float32{{{{0.5, 0.5, 0.5}}}}
}

func TestInferReturnsEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models/dog-embedder:predict" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Instances [][][][]float32 `json:"instances"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(body.Instances) != 1 {
			t.Errorf("expected batch of 1, got %d", len(body.Instances))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"predictions": [][]float32{{0.1, 0.2, 0.3}},
		})
	}))
	defer server.Close()

	client, err := NewClient(config.InferenceConfig{BaseURL: server.URL, ModelName: "dog-embedder"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	vec, err := client.Infer(context.Background(), smallTensor())
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("expected 3 components, got %d", len(vec))
	}
}

func TestInferMapsServerErrorToDependency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(config.InferenceConfig{BaseURL: server.URL, ModelName: "dog-embedder"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Infer(context.Background(), smallTensor())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestPingReadiness(t *testing.T) {
	ready := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ready {
			http.Error(w, "loading", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(config.InferenceConfig{BaseURL: server.URL, ModelName: "dog-embedder"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping failure while model is loading")
	}
	ready = true
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("expected ping success once model is serving, got %v", err)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(config.InferenceConfig{}); err == nil {
		t.Fatal("expected error for missing base url")
	}
}
