package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/c360studio/openspec/config"
	"github.com/c360studio/openspec/workflow"
)

func newInitCmd(logLevel *string) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Initialize an openspec workspace",
		Long: `Init creates the openspec directory layout (specs/, changes/,
archive/) and a project config file in the target directory, the
current directory by default.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			absRoot, err := filepath.Abs(root)
			if err != nil {
				return err
			}
			if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
				return fmt.Errorf("not a directory: %s", absRoot)
			}

			manager := workflow.NewManagerWithRoot(absRoot, dir)
			if err := manager.EnsureDirectories(); err != nil {
				return err
			}

			projectPath := filepath.Join(manager.RootPath(), "project.md")
			if _, err := os.Stat(projectPath); os.IsNotExist(err) {
				if err := os.WriteFile(projectPath, []byte(workflow.ProjectTemplate()), 0644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", projectPath)
			}

			configPath := filepath.Join(absRoot, config.ProjectConfigFile)
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				cfg := config.DefaultConfig()
				cfg.Project.Dir = dir
				if err := cfg.SaveToFile(configPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configPath)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized openspec workspace at %s\n", manager.RootPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", workflow.DefaultRootDir, "Directory name for specs and changes")

	return cmd
}
