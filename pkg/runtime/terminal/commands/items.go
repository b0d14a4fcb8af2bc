package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type ItemsCmd struct {
	file    string
	cfgPath string
	envs    EnvFactory
}

func NewItemsCmd(envs EnvFactory) *cobra.Command {
	ic := &ItemsCmd{envs: envs}
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List the item names of a POS export",
		RunE:  ic.run,
	}

	cmd.Flags().StringVar(&ic.file, "file", "", "Path or s3:// URI of the POS export")
	cmd.Flags().StringVarP(&ic.cfgPath, "config", "c", "", "Path to a YAML config file")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (ic *ItemsCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	env, err := ic.envs(ctx, EnvOptions{ConfigPath: ic.cfgPath})
	if err != nil {
		return err
	}
	defer env.Close()

	ds, err := loadDataset(ctx, env, ic.file)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", ic.file, err)
	}

	names := ds.ItemNames()
	if len(names) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No items found in %s\n", ds.Source())
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Items in %s:\n%s\n", ds.Source(), strings.Join(names, "\n"))
	return nil
}
