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
	"fmt"
	"os"
	"path/filepath"

	"github.com/valpere/promptg/internal/enhancer"
	"github.com/valpere/promptg/internal/generator"
	"github.com/valpere/promptg/internal/prompt"
	"github.com/valpere/promptg/internal/session"
	"github.com/valpere/promptg/internal/store"
)

func openStore() (*store.Store, error) {
	if dir := filepath.Dir(cfg.DB); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := store.New(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func buildClient() *enhancer.Client {
	return enhancer.New(enhancer.Options{
		BaseURL: cfg.API.BaseURL,
		Model:   cfg.API.Model,
		Timeout: cfg.API.Timeout,
		Logger:  log,
	})
}

// buildSession prefers a credential from the environment; otherwise it
// resumes whatever the last login persisted.
func buildSession(ctx context.Context, client enhancer.CredentialValidator, db *store.Store) (*session.Session, error) {
	var creds session.CredentialStore
	if db != nil {
		creds = db
	}
	s := session.New(client, creds)

	if cfg.API.Key != "" {
		if err := s.Adopt(cfg.API.Key); err != nil {
			return nil, err
		}
		log.Debug("using credential from environment")
		return s, nil
	}

	if _, err := s.Resume(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func buildGenerator(client enhancer.Enhancer, db *store.Store, raw bool) *generator.Generator {
	assembler := prompt.NewAssembler(
		prompt.WithHeuristic(cfg.LanguageHeuristic()),
		prompt.WithInlineAdvisory(cfg.Prompt.InlineAdvisory),
	)

	opts := []generator.Option{generator.WithLogger(log)}
	if db != nil && cfg.History {
		opts = append(opts, generator.WithRecorder(db))
	}
	return generator.New(assembler, client, generator.Config{
		Timeout: cfg.API.Timeout,
		Raw:     raw,
	}, opts...)
}
