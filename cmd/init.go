package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Lumos-Labs-HQ/schoolseed/internal/config"
	"github.com/Lumos-Labs-HQ/schoolseed/internal/sqlgen"
)

const envTemplate = `# schoolseed overrides, e.g.
# SCHOOLSEED_SEED=42
# SCHOOLSEED_ROSTER_TEACHERS=25
`

func newInitCmd() *cobra.Command {
	var (
		sqliteFlag     bool
		postgresqlFlag bool
		mysqlFlag      bool
		dir            string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a schoolseed.config.json with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dialect := sqlgen.Postgres
			flagCount := 0

			if sqliteFlag {
				dialect = sqlgen.SQLite
				flagCount++
			}
			if postgresqlFlag {
				dialect = sqlgen.Postgres
				flagCount++
			}
			if mysqlFlag {
				dialect = sqlgen.MySQL
				flagCount++
			}

			if flagCount > 1 {
				return fmt.Errorf("please specify only one database type (--sqlite, --postgresql, or --mysql)")
			}

			return initializeProject(cmd, dir, dialect)
		},
	}

	cmd.Flags().BoolVar(&sqliteFlag, "sqlite", false, "Generate SQLite SQL")
	cmd.Flags().BoolVar(&postgresqlFlag, "postgresql", false, "Generate PostgreSQL SQL")
	cmd.Flags().BoolVar(&mysqlFlag, "mysql", false, "Generate MySQL SQL")
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to initialize")

	return cmd
}

func initializeProject(cmd *cobra.Command, dir string, dialect sqlgen.Dialect) error {
	cfg := config.Default()
	cfg.Database.Provider = string(dialect)

	configPath := filepath.Join(dir, config.DefaultConfigFile)
	if err := config.WriteFile(configPath, cfg); err != nil {
		return err
	}
	if err := handleEnvFile(filepath.Join(dir, ".env")); err != nil {
		return fmt.Errorf("failed to handle .env file: %w", err)
	}

	out := cmd.OutOrStdout()
	color.New(color.FgGreen).Fprintf(out, "✅ Initialized schoolseed for %s\n", dialect)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "📝 Configuration file created:")
	fmt.Fprintf(out, "   %s\n", configPath)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "🚀 Next steps:")
	fmt.Fprintln(out, "   schoolseed schema --out schema.sql   # Create the tables")
	fmt.Fprintln(out, "   schoolseed generate                  # Generate the data")
	return nil
}

// handleEnvFile creates .env with commented overrides, or appends them to an
// existing file that has none yet.
func handleEnvFile(envPath string) error {
	existingContent, err := os.ReadFile(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return os.WriteFile(envPath, []byte(envTemplate), 0644)
		}
		return err
	}

	existingStr := string(existingContent)
	if strings.Contains(existingStr, config.EnvPrefix+"_") {
		return nil
	}

	if len(existingStr) > 0 && !strings.HasSuffix(existingStr, "\n") {
		existingStr += "\n"
	}
	existingStr += "\n" + envTemplate

	return os.WriteFile(envPath, []byte(existingStr), 0644)
}
