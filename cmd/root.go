package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Lumos-Labs-HQ/schoolseed/internal/config"
)

var Version = "1.0.0"

func showBanner(w io.Writer) {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════════════════╗",
		"║                                                          ║",
		"║        🏫  S C H O O L S E E D                           ║",
		"║                                                          ║",
		"║     Conflict-free school data as plain SQL INSERTs       ║",
		"║                                                          ║",
		"║     PostgreSQL • MySQL • SQLite                          ║",
		"║                                                          ║",
		"╚══════════════════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Fprintln(w, line)
	}

	fmt.Fprint(w, "                        ")
	color.New(color.FgCyan, color.Bold).Fprint(w, "Version: ")
	color.New(color.FgYellow, color.Bold).Fprintf(w, "%s\n", Version)
}

// cli carries the state shared by one command tree: its own viper instance
// and the --config flag value.
type cli struct {
	v       *viper.Viper
	cfgFile string
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "schoolseed",
		Short: "Generate realistic, conflict-free school data as SQL INSERT statements",
		Long: `
schoolseed fills a school-management database with fake but consistent data:
academic years, teachers, modules, subjects, classes, students, class sessions,
attendance and marks.

Class sessions are placed by a scheduler that never books a class twice at the
same instant and never books a room twice, except for the configured overlap room.

Output is an ordered SQL script for:
- PostgreSQL
- MySQL
- SQLite`,
		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "schoolseed version %s\n", Version)
				return err
			}

			showBanner(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout())
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is ./"+config.DefaultConfigFile+")")
	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")

	rootCmd.AddCommand(
		newGenerateCmd(c),
		newSchemaCmd(c),
		newInitCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// load reads .env files, the config file and SCHOOLSEED_* variables, then
// binds the given config keys to the command's flags so that flags win.
func (c *cli) load(cmd *cobra.Command, bindings map[string]string) (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
		godotenv.Load(".env.local")
	}

	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	} else {
		c.v.AddConfigPath(".")
		c.v.SetConfigType("json")
		c.v.SetConfigName("schoolseed.config")
	}
	config.BindEnv(c.v)

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if c.cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	for key, flag := range bindings {
		if err := c.v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return nil, fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}

	cfg, err := config.LoadWith(c.v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
