package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vango-dev/retree/internal/config"
	"github.com/vango-dev/retree/internal/errors"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default retree.json",
		Long: `Write retree.json with every default spelled out.

Examples:
  retree init
  retree init ./tools --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(dir, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing retree.json")

	return cmd
}

func runInit(dir string, force bool) error {
	if config.Exists(dir) && !force {
		return errors.New("E124").
			WithDetail("retree.json already exists in " + dir)
	}

	path := filepath.Join(dir, config.ConfigFileName)
	if err := config.New().SaveTo(path); err != nil {
		return err
	}
	success("Wrote %s", path)
	return nil
}
