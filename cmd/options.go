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
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/promptg/internal/prompt"
)

var optionsJSON bool

var optionsCmd = &cobra.Command{
	Use:   "options [section]",
	Short: "List the preset themes, backgrounds, character styles and compositions",
	Long: `List the preset values offered for each choice. Any other value is also
accepted by "promptg generate"; the presets are suggestions.

Sections: themes, backgrounds, characters, compositions`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"themes", "backgrounds", "characters", "compositions"},
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := prompt.DefaultCatalog()

		if optionsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(catalog)
		}

		sections := []string{"themes", "backgrounds", "characters", "compositions"}
		if len(args) == 1 {
			sections = args
		}

		for i, name := range sections {
			values, ok := catalog.Section(name)
			if !ok {
				return fmt.Errorf("unknown section %q, expected one of: themes, backgrounds, characters, compositions", name)
			}
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("%s:\n", strings.ToUpper(name[:1])+name[1:])
			for _, val := range values {
				fmt.Printf("  %s\n", val)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(optionsCmd)
	optionsCmd.Flags().BoolVar(&optionsJSON, "json", false, "Print the catalog as JSON")
}
