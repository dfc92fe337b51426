// Command oauth-init runs the one-time OAuth consent flow for exporting
// to a personal Google account. It exchanges the authorization code via
// a local callback server and stores the refresh token where the worker
// expects it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"

	"rutapro/internal/journal/sheets"
)

func main() {
	cfg, err := sheets.OAuthClientConfig()
	if err != nil {
		log.Fatalf("oauth client: %v", err)
	}
	if cfg == nil {
		log.Fatalf("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
	}

	redirect := os.Getenv("GOOGLE_OAUTH_REDIRECT")
	if redirect == "" {
		redirect = "http://localhost:8099/callback"
	}
	cfg.RedirectURL = redirect

	codeCh := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code parameter", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization received, you can close this tab.")
		codeCh <- code
	})
	srv := &http.Server{Addr: ":8099", Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("callback server: %v", err)
		}
	}()

	authURL := cfg.AuthCodeURL("state-token",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Open this URL in your browser and authorize access:\n\n%s\n\n", authURL)

	var code string
	select {
	case code = <-codeCh:
	case <-time.After(5 * time.Minute):
		log.Fatalf("timed out waiting for authorization")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		log.Fatalf("exchange code: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	tokenFile := sheets.OAuthTokenFile()
	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		log.Fatalf("encode token: %v", err)
	}
	if err := os.WriteFile(tokenFile, b, 0600); err != nil {
		log.Fatalf("write token file: %v", err)
	}

	fmt.Printf("Token saved to %s\n", tokenFile)
}
