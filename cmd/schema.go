package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Lumos-Labs-HQ/schoolseed/internal/seeder"
)

func newSchemaCmd(c *cli) *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the CREATE TABLE statements the generated data expects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.load(cmd, map[string]string{"database.provider": "dialect"})
			if err != nil {
				return err
			}
			dialect, err := cfg.Dialect()
			if err != nil {
				return err
			}

			ddl, err := seeder.Schema(dialect)
			if err != nil {
				return err
			}
			script := strings.Join(ddl, "\n\n") + "\n"

			if outFile == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), script)
				return err
			}

			if dir := filepath.Dir(outFile); dir != "" && dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create directory %s: %w", dir, err)
				}
			}
			if err := os.WriteFile(outFile, []byte(script), 0644); err != nil {
				return fmt.Errorf("failed to write schema file: %w", err)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✅ Wrote %s schema for %d tables to %s\n",
				dialect, len(ddl), outFile)
			return nil
		},
	}

	cmd.Flags().String("dialect", "postgresql", "SQL dialect (postgresql, mysql, sqlite)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the schema to a file instead of stdout")

	return cmd
}
