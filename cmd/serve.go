/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/promptg/internal/prompt"
	"github.com/valpere/promptg/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local JSON API",
	Long: `Run a local HTTP server exposing the prompt builder as a JSON API:

  GET    /healthz
  GET    /api/options
  GET    /api/session          POST /api/session {"apiKey": "..."}   DELETE /api/session
  POST   /api/prompts/assemble
  POST   /api/prompts
  GET    /api/history?limit=N`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		client := buildClient()
		sess, err := buildSession(ctx, client, db)
		if err != nil {
			return err
		}

		app := &server.App{
			Session:     sess,
			Generator:   buildGenerator(client, db, cfg.Prompt.Raw),
			Catalog:     prompt.DefaultCatalog(),
			CORSOrigins: cfg.Server.CORSOrigins,
			Logger:      log,
		}
		if cfg.History {
			app.History = db
		}

		srv := server.NewHTTPServer(cfg.Server.Addr, server.NewRouter(app), cfg.API.Timeout)

		errCh := make(chan error, 1)
		go func() {
			log.Info("listening", "addr", cfg.Server.Addr, "session_active", sess.Active())
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-quit:
		}
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shut down: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address")
	serveCmd.Flags().StringSlice("cors-origin", []string{"http://localhost:3000"}, "Allowed CORS origins")

	bindFlag(serveCmd, "server.addr", "addr")
	bindFlag(serveCmd, "server.cors_origins", "cors-origin")
}
