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
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/valpere/promptg/internal/config"
	"github.com/valpere/promptg/internal/logger"
)

var version = "0.1.0"

var (
	cfgFile string
	v       = config.New()
	cfg     config.Config
	log     = logger.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "promptg",
	Short: "Build and enhance prompts for AI image and video generation",
	Long: `promptg assembles a prompt from a few choices (mode, theme, background,
character style, composition and a free-text description) and sends it to
Groq for stylistic enhancement.

Start with "promptg login", then "promptg generate --help".
Run "promptg serve" for the local JSON API.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $HOME/.promptg.yaml or ./promptg.yaml)")
	rootCmd.PersistentFlags().String("db", "./data/promptg.db", "Database path")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	_ = v.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	if file := configFile(); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = loaded

	log = logger.New(os.Stderr, logger.FromConfig(cfg.Log.Level, cfg.Log.Format))
	slog.SetDefault(log)
	if used := v.ConfigFileUsed(); used != "" {
		log.Debug("config loaded", "file", used)
	}
	return nil
}

// configFile returns --config when given, otherwise the first default
// location that exists.
func configFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".promptg.yaml"))
	}
	candidates = append(candidates, "promptg.yaml")
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// bindFlag ties a command flag to a config key so flags win over env and file.
func bindFlag(cmd *cobra.Command, key, flag string) {
	_ = v.BindPFlag(key, cmd.Flags().Lookup(flag))
}
