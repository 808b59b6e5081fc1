package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/innervoice/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the InnerVoice MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes the journal as MCP tools via STDIO.

The --db flag is optional. If not provided, a system-specific default location will be used:
- Windows: %USERPROFILE%\AppData\Roaming\innervoice\innervoice.db
- macOS: ~/Library/Application Support/innervoice/innervoice.db
- Linux: ~/.local/share/innervoice/innervoice.db

Set GEMINI_API_KEY to analyze notes with Gemini. Without it notes are analyzed by
the built-in keyword rules.

Example:
  innervoice mcp
  innervoice mcp --db innervoice.db --wal`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Log to stderr so we don't contaminate the JSON-RPC stream on stdout.
		a, err := openApp(cmd.Context(), newLogger(os.Stderr))
		if err != nil {
			return err
		}
		defer a.Close()

		srv := mcp.NewInnerVoiceMCPServer(a.svc)

		fmt.Fprintf(os.Stderr, "InnerVoice MCP server started. DB: %s (WAL: %t, Sync: %s, Model: %s)\n", a.dbPath, walMode, syncMode, a.modelName())
		fmt.Fprintln(os.Stderr, "Available tools: ping, create_note, get_note, list_notes, update_note, delete_note, find_related_notes, search_notes, get_emotion_stats")
		fmt.Fprintln(os.Stderr, "Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)")

		return srv.Start()
	},
}
