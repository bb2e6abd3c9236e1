package fasttext

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/viant/langprobe/langid"
)

func TestModel_Predict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case healthEndpoint:
			w.WriteHeader(http.StatusOK)
		case predictEndpoint:
			var req predictRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if req.Text != "bonjour tout le monde" {
				http.Error(w, "unexpected text "+req.Text, http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(predictResponse{
				Labels: []string{"__label__fr", "__label__en"},
				Scores: []float64{0.93, 0.04},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	model, err := Open(context.Background(), "lid.176", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	predictions, err := model.Predict(context.Background(), "bonjour\ntout le monde", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(predictions) != 2 || predictions[0].Label != "__label__fr" || predictions[0].Confidence != 0.93 {
		t.Fatalf("unexpected predictions: %v", predictions)
	}
}

func TestOpen_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()
	if _, err := Open(context.Background(), "", server.URL); !errors.Is(err, langid.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestModel_PredictError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(predictResponse{Error: "boom"})
	}))
	defer server.Close()
	model := &Model{C: NewClientWithOptions("", WithBaseURL(server.URL))}
	if _, err := model.Predict(context.Background(), "text", 1); err == nil {
		t.Fatalf("expected error")
	}
}
