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
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/promptg/internal/enhancer"
	"github.com/valpere/promptg/internal/generator"
	"github.com/valpere/promptg/internal/prompt"
	"github.com/valpere/promptg/internal/session"
	"github.com/valpere/promptg/internal/store"
	"github.com/valpere/promptg/internal/validator"
)

var (
	genMode        string
	genAudio       bool
	genTheme       string
	genBackground  string
	genCharacter   string
	genComposition string
	genInput       string

	genAgain        int
	genNoHistory    bool
	genAssembleOnly bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [description]",
	Short: "Assemble a prompt and enhance it with Groq",
	Long: `Assemble a prompt from the given choices and send it to Groq for
enhancement. The description can be passed as arguments or with --input.

Example:
  promptg generate --mode video --audio --theme Noir \
    --background "Dark alley" --character Photorealistic \
    "a detective lighting a cigarette"

Use --assemble-only to print the base prompt without contacting Groq,
and --again N to ask for N more variations of the same prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selectionFromFlags(args)
		if err != nil {
			return err
		}

		if genAssembleOnly {
			return runAssemble(sel)
		}

		if genAgain < 0 {
			return fmt.Errorf("--again must not be negative")
		}

		ctx := context.Background()

		var db *store.Store
		if !genNoHistory || cfg.API.Key == "" {
			db, err = openStore()
			if err != nil {
				return err
			}
			defer db.Close()
		}

		client := buildClient()
		sess, err := buildSession(ctx, client, db)
		if err != nil {
			return err
		}
		credential, err := sess.Credential()
		if errors.Is(err, session.ErrNoSession) {
			return fmt.Errorf("no API key: run \"promptg login\" or set GROQ_API_KEY")
		}
		if err != nil {
			return err
		}

		recorder := db
		if genNoHistory {
			recorder = nil
		}
		gen := buildGenerator(client, recorder, cfg.Prompt.Raw)

		for i := 0; i <= genAgain; i++ {
			res, err := gen.Generate(ctx, credential, sel)
			if err != nil {
				return describeGenerateError(err)
			}
			if i == 0 {
				fmt.Printf("Base prompt:\n%s\n", res.BasePrompt)
				if res.Advisory != "" && !cfg.Prompt.InlineAdvisory {
					fmt.Fprintf(os.Stderr, "Note: %s\n", res.Advisory)
				}
			}
			fmt.Printf("\nEnhanced prompt:\n%s\n", res.EnhancedPrompt)
			log.Debug("generation done", "id", res.ID, "latency", res.Latency)
		}
		return nil
	},
}

func selectionFromFlags(args []string) (prompt.Selection, error) {
	sel := prompt.NewSelection()

	mode, err := prompt.ParseMode(genMode)
	if err != nil {
		return sel, err
	}
	sel.Mode = mode
	sel.IncludeAudio = genAudio
	sel.Theme = genTheme
	sel.BackgroundStyle = genBackground
	sel.CharacterStyle = genCharacter
	sel.Composition = genComposition

	sel.UserInput = genInput
	if len(args) > 0 {
		sel.UserInput = strings.Join(args, " ")
	}
	return sel, nil
}

func runAssemble(sel prompt.Selection) error {
	assembler := prompt.NewAssembler(
		prompt.WithHeuristic(cfg.LanguageHeuristic()),
		prompt.WithInlineAdvisory(cfg.Prompt.InlineAdvisory),
	)
	assembly, err := assembler.Assemble(sel)
	if err != nil {
		return describeGenerateError(err)
	}
	fmt.Println(assembly.Prompt)
	if assembly.Advisory != "" && !cfg.Prompt.InlineAdvisory {
		fmt.Fprintf(os.Stderr, "Note: %s\n", assembly.Advisory)
	}
	return nil
}

// describeGenerateError turns pipeline errors into messages for the terminal.
func describeGenerateError(err error) error {
	var (
		verr *validator.ValidationError
		rse  *enhancer.RemoteServiceError
		terr *enhancer.TransportError
		gerr *generator.Error
	)
	if errors.As(err, &gerr) {
		fmt.Fprintf(os.Stderr, "Base prompt (not enhanced):\n%s\n\n", gerr.BasePrompt)
	}

	switch {
	case errors.As(err, &verr):
		return verr
	case errors.As(err, &rse):
		if rse.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("groq rejected the API key (status 401): run \"promptg login\" again")
		}
		return fmt.Errorf("failed to generate prompt: groq returned status %d", rse.StatusCode)
	case enhancer.IsTimeout(err):
		return fmt.Errorf("failed to generate prompt: groq did not answer within %s", cfg.API.Timeout)
	case errors.As(err, &terr):
		return fmt.Errorf("failed to reach groq, check your connection: %w", terr.Err)
	}
	return err
}

func init() {
	rootCmd.AddCommand(generateCmd)

	def := prompt.NewSelection()
	generateCmd.Flags().StringVarP(&genMode, "mode", "m", string(def.Mode), "Generation mode: image or video")
	generateCmd.Flags().BoolVar(&genAudio, "audio", def.IncludeAudio, "Include audio (video mode only)")
	generateCmd.Flags().StringVarP(&genTheme, "theme", "t", "", "Theme, e.g. Cyberpunk (see \"promptg options\")")
	generateCmd.Flags().StringVarP(&genBackground, "background", "b", "", "Background style")
	generateCmd.Flags().StringVarP(&genCharacter, "character", "c", "", "Character style")
	generateCmd.Flags().StringVar(&genComposition, "composition", "", "Composition (optional)")
	generateCmd.Flags().StringVarP(&genInput, "input", "i", "", "Description of the scene")

	generateCmd.Flags().IntVar(&genAgain, "again", 0, "Request N more enhancements of the same prompt")
	generateCmd.Flags().Bool("raw", false, "Print the model reply without cleanup")
	generateCmd.Flags().StringP("model", "M", "", "Groq model (default llama3-8b-8192)")
	generateCmd.Flags().BoolVar(&genNoHistory, "no-history", false, "Do not record this generation")
	generateCmd.Flags().BoolVar(&genAssembleOnly, "assemble-only", false, "Print the base prompt only, without calling Groq")

	bindFlag(generateCmd, "prompt.raw", "raw")
	bindFlag(generateCmd, "api.model", "model")
}
