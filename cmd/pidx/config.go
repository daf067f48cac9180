package main

import (
	"errors"
	"fmt"

	"github.com/matsen/paperindex/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set values in <data-dir>/config.yml.

Usage:
  pidx config                              # Show all config
  pidx config embedding.provider           # Get specific value
  pidx config embedding.provider ollama    # Set value
  pidx config default-k 5                  # Dashes work too

Changing the embedding provider, model or dimensions marks stored
embeddings stale until 'pidx reembed' is run.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	dataDir := resolveDataDir()

	// File values only; environment overrides would leak into Save
	cfg, err := config.Load(dataDir)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	switch len(args) {
	case 0:
		values := make(map[string]string)
		for _, key := range config.Keys() {
			v, _ := cfg.Get(key)
			values[key] = v
		}
		if humanOutput {
			for _, key := range config.Keys() {
				fmt.Printf("%-24s %s\n", key+":", values[key])
			}
		} else {
			outputJSON(values)
		}

	case 1:
		v, err := cfg.Get(args[0])
		if err != nil {
			exitWithError(ExitConfigError, "%v (valid keys: %v)", err, config.Keys())
		}
		if humanOutput {
			fmt.Println(v)
		} else {
			outputJSON(map[string]string{args[0]: v})
		}

	case 2:
		if err := cfg.Set(args[0], args[1]); err != nil {
			code := ExitError
			if errors.Is(err, config.ErrUnknownKey) {
				code = ExitConfigError
			}
			exitWithError(code, "%v", err)
		}
		if err := cfg.Save(dataDir); err != nil {
			exitWithError(ExitError, "saving config: %v", err)
		}
		v, _ := cfg.Get(args[0])
		if humanOutput {
			fmt.Printf("Set %s = %s\n", args[0], v)
		} else {
			outputJSON(UpdateResponse{Status: "updated", Key: args[0], Value: v})
		}
	}
	return nil
}
