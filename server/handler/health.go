package handler

import (
	"encoding/json"
	"net/http"
)

// NewHealthHandler は視聴者数を添えて 200 を返す。
func NewHealthHandler(viewers func() int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "viewers": viewers()})
	}
}
