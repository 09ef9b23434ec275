package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tdinh-labs/go-sign-flow/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize gsf configuration interactively",
	Long: `Guides you through setting up gsf configuration step by step.
Creates a config file with analysis resource limits and summary cache settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	// === SECTION 1: Resource Limits ===
	var limitPreset string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Analysis Limits - Bound the work a single analysis may do").
				Description("Select a resource limit preset").
				Options(
					huh.NewOption("Default (10k steps, 5s)", "default"),
					huh.NewOption("Strict (1k steps, 1s)", "strict"),
					huh.NewOption("Generous (100k steps, 30s)", "generous"),
				).
				Value(&limitPreset),
		),
	)
	err := form.Run()
	if err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 2: Summary Cache ===
	cacheEnabled := true
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Summary Cache - Reuse call summaries across runs").
				Description("Persist function summaries to disk?").
				Affirmative("Yes, enable cache").
				Negative("No, recompute every run").
				Value(&cacheEnabled),
		),
	)
	err = form.Run()
	if err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 3: Config Location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Global (~/.gsf/config.yaml)", "global"),
					huh.NewOption("Project (./.gsf/config.yaml)", "project"),
				).
				Value(&saveLocationChoice),
		),
	)
	err = form.Run()
	if err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	var configPath string
	if saveLocationChoice == "global" {
		configPath = config.ConfigPath()
	} else {
		configPath = ".gsf/config.yaml"
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		err = form.Run()
		if err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	// === Build config struct ===
	cfg := config.DefaultConfig()
	switch limitPreset {
	case "strict":
		cfg.MaxSteps = 1000
		cfg.Timeout = time.Second
		cfg.MaxStatesPerPoint = 4
		cfg.MaxCallDepth = 2
	case "generous":
		cfg.MaxSteps = 100000
		cfg.Timeout = 30 * time.Second
		cfg.MaxStatesPerPoint = 16
		cfg.MaxCallDepth = 8
	}
	cfg.CacheEnabled = cacheEnabled

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Show config preview
	fmt.Println("\n=== Configuration Preview ===")
	fmt.Printf("Config path: %s\n", configPath)
	fmt.Printf("Max Steps: %d\n", cfg.MaxSteps)
	fmt.Printf("Timeout: %s\n", cfg.Timeout)
	fmt.Printf("Max States Per Point: %d\n", cfg.MaxStatesPerPoint)
	fmt.Printf("Max Block Iterations: %d\n", cfg.MaxBlockIterations)
	fmt.Printf("Max Call Depth: %d\n", cfg.MaxCallDepth)
	if cfg.CacheEnabled {
		fmt.Printf("Summary Cache: enabled (%s, %d entries)\n", cfg.CachePath, cfg.CacheSize)
	} else {
		fmt.Println("Summary Cache: disabled")
	}
	fmt.Println("================================")

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration saved to: %s\n", configPath)
	return nil
}
