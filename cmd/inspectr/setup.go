package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mark3labs/inspectr/internal/config"
)

var setupFlags struct {
	project bool
	force   bool
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create inspectr configuration file",
	Long: `Create an inspectr configuration file with sensible defaults.

By default, creates a global config at ~/.config/inspectr/inspectr.yml.
Use --project to create a project-local config in the current directory.
The --api-url, --web-url, --token, --data-dir and --log-level flags are
written into the file.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing config file")
}

func runSetup(cmd *cobra.Command, args []string) error {
	// Determine target path
	targetPath := config.GlobalPath()
	if setupFlags.project {
		targetPath = config.ProjectPath()
	}

	// Check if config already exists
	if !setupFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	cfg := &config.Config{
		APIURL:         orDefault(globalFlags.apiURL, config.DefaultAPIURL),
		WebURL:         globalFlags.webURL,
		Token:          globalFlags.token,
		DataDir:        orDefault(globalFlags.dataDir, ".inspectr"),
		LogLevel:       orDefault(globalFlags.logLevel, "info"),
		MaxPhotos:      config.DefaultMaxPhotos,
		CaptureTimeout: 30 * time.Second,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Write config to target location
	var err error
	if setupFlags.project {
		err = config.WriteProject(cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}

	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Config written to: %s\n\n", targetPath)
	fmt.Println("Run 'inspectr properties' to check the connection, then 'inspectr new' to get started.")

	return nil
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

// fileExists checks if a file exists (helper for setup command).
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
