package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syahmiabbas/scangate/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and bootstrap scangate configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration without contacting the backend",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(ConfigFile)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			return
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Printf("Error encoding config: %v\n", err)
			return
		}
		fmt.Print(string(data))
		if err := cfg.Validate(); err != nil {
			fmt.Printf("\nValidation: %v\n", err)
			return
		}
		fmt.Println("\nValidation: ok")
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file with the defaults",
	Run: func(cmd *cobra.Command, args []string) {
		path := ConfigFile
		if path == "" {
			path = config.DefaultFileName
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("Refusing to overwrite existing %s\n", path)
			return
		}
		if err := config.Save(config.Default(), path); err != nil {
			fmt.Printf("Error writing config: %v\n", err)
			return
		}
		fmt.Printf("Wrote %s\n", path)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
