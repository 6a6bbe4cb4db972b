package main

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"github.com/protectmyphone/pmp/internal/api"
	"github.com/protectmyphone/pmp/internal/middleware"
	"github.com/protectmyphone/pmp/internal/utils"
)

func main() {
	addr := utils.SafeEnv("PMP_ADDR", ":8080")
	commit := os.Getenv("PMP_COMMIT")
	buildTime := os.Getenv("PMP_BUILD_TIME")

	store, closeStore, err := openStore()
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	mux := http.NewServeMux()
	// API routes
	api.NewRouter(store).Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "ProtectMyPhone API",
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	// Frontend serving strategy (priority):
	// 1) Static files if PMP_STATIC_DIR is set (fullstack image)
	// 2) Dev proxy if PMP_DEV_FRONTEND_URL is set (proxy / to the Astro dev server)
	if staticDir := os.Getenv("PMP_STATIC_DIR"); staticDir != "" {
		fs := http.FileServer(http.Dir(staticDir))
		mux.Handle("/", fs)
	} else if devURL := os.Getenv("PMP_DEV_FRONTEND_URL"); devURL != "" {
		if u, err := url.Parse(devURL); err == nil {
			rp := httputil.NewSingleHostReverseProxy(u)
			// Ensure no-store headers also apply to proxied responses
			rp.ModifyResponse = func(res *http.Response) error {
				res.Header.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
				res.Header.Set("Pragma", "no-cache")
				res.Header.Set("Expires", "0")
				return nil
			}
			mux.Handle("/", rp)
		} else {
			log.Printf("invalid PMP_DEV_FRONTEND_URL=%q: %v", devURL, err)
		}
	}

	// Wrap mux with security, CORS, cache and auth-claims middleware
	handler := middleware.SecureHeaders(middleware.CORS(middleware.NoStore(middleware.WithAuth(mux))))

	log.Printf("ProtectMyPhone server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
