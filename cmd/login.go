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
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/valpere/promptg/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login [api-key]",
	Short: "Validate a Groq API key and remember it",
	Long: `Validate a Groq API key against the Groq API and store it in the local
database so later commands can use it. Without an argument the key is read
from standard input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := ""
		if len(args) == 1 {
			key = args[0]
		} else {
			fmt.Fprint(os.Stderr, "Groq API key: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read API key: %w", err)
			}
			key = line
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		sess := session.New(buildClient(), db)
		err = sess.Start(context.Background(), key)
		switch {
		case errors.Is(err, session.ErrEmptyCredential):
			return fmt.Errorf("API key is empty")
		case errors.Is(err, session.ErrCredentialRejected):
			return fmt.Errorf("invalid API key, please check your Groq API key and try again")
		case err != nil:
			return err
		}

		fmt.Println("Logged in. The API key is stored in", cfg.DB)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := session.New(buildClient(), db).Logout(context.Background()); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether an API key is available",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.API.Key != "" {
			fmt.Println("Using API key from the environment.")
			return nil
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		active, err := session.New(buildClient(), db).Resume(context.Background())
		if err != nil {
			return err
		}
		if !active {
			fmt.Println("Not logged in. Run \"promptg login\".")
			return nil
		}
		fmt.Println("Logged in with a stored API key.")
		fmt.Println("Model:", cfg.API.Model)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
}
