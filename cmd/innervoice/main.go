package main

import (
	"fmt"
	"os"
	"strings"

	innervoice "github.com/unowned-ai/innervoice/pkg"
	pkgdb "github.com/unowned-ai/innervoice/pkg/db"

	"github.com/spf13/cobra"
)

var (
	dbPath   string
	walMode  bool
	syncMode string
	driver   string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:     "innervoice",
	Short:   "A journal that reads between the lines of your notes.",
	Long:    ``,
	Version: fmt.Sprintf("v%s", innervoice.Version),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for innervoice.

The command prints a completion script to stdout. You can source it in your shell
or install it to the appropriate location for your shell to enable completions permanently.

Examples:

  Bash (current shell):
    $ source <(innervoice completion bash)

  Zsh:
    $ innervoice completion zsh > "${fpath[1]}/_innervoice"

  Fish:
    $ innervoice completion fish > ~/.config/fish/completions/innervoice.fish

  PowerShell:
    PS> innervoice completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of innervoice",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(innervoice.Version)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the InnerVoice database",
	Long:  `Provides commands for managing the InnerVoice SQLite database, including schema upgrades.`,
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the database schema to the latest version for the notes component",
	Long: `Connects to the SQLite database at the specified path (or the default location) and applies any
necessary schema migrations to bring the notes component up to the current application schema version.
If the database does not exist or is uninitialized, it will be created with the latest schema.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Upgrading notes component in database at: %s (WAL: %t, Sync: %s)\n", path, walMode, syncMode)

		dbConn, err := pkgdb.OpenDBConnectionWithDriver(driver, path, walMode, syncMode)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		return pkgdb.UpgradeDB(dbConn, path, pkgdb.TargetSchemaVersion)
	},
}

func initCmd() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (uses config, $INNERVOICE_DB_PATH or a system-specific default if not provided)")
	rootCmd.PersistentFlags().BoolVar(&walMode, "wal", false, "Enable SQLite WAL (Write-Ahead Logging) mode")
	rootCmd.PersistentFlags().StringVar(&syncMode, "sync", "FULL", "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA)")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", pkgdb.DriverCGO, "SQLite driver: sqlite3 (cgo) or sqlite (pure Go)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	dbCmd.AddCommand(dbUpgradeCmd)

	initNotesCmd()
	initConfigCmd()
	rootCmd.AddCommand(completionCmd, versionCmd, dbCmd, notesCmd, configCmd, mcpCmd, serveCmd)
}

func main() {
	initCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
