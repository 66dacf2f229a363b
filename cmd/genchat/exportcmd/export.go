package exportcmder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/SAMRAT47/genchat/pkg/export"
	"github.com/SAMRAT47/genchat/pkg/session"
)

const exportLongDesc string = `Export a chat session transcript to a file.

Reads the session from the SQLite database and writes it in the
requested format. Without a session id the most recently updated
session is exported.

Examples:
  genchat export
  genchat export --format markdown 2f1c9a60-...
  genchat export --db ~/.genchat/sessions.db --output chat.txt`

const exportShortDesc string = "Export a session transcript"

type exportCommander struct {
	dbPath string
	format string
	output string
}

func NewExportCmd() *cobra.Command {
	cmder := &exportCommander{}

	cmd := &cobra.Command{
		Use:   "export [session-id]",
		Short: exportShortDesc,
		Long:  exportLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return cmder.run(cmd.Context(), cmd, id)
		},
	}

	cmd.Flags().StringVar(&cmder.dbPath, "db", "", "Path to SQLite session database (default: ~/.genchat/sessions.db)")
	cmd.Flags().StringVarP(&cmder.format, "format", "f", export.FormatText, "Export format: text, markdown or json")
	cmd.Flags().StringVarP(&cmder.output, "output", "o", "", "Output file (default: chat_<timestamp>.<ext>)")

	return cmd
}

func (c *exportCommander) run(ctx context.Context, cmd *cobra.Command, id string) error {
	exporter, err := export.New(c.format)
	if err != nil {
		return err
	}

	dbPath := c.dbPath
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not resolve session database: %w", err)
		}
		dbPath = filepath.Join(home, ".genchat", "sessions.db")
	}

	store, err := session.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("could not open session database %s: %w", dbPath, err)
	}
	defer store.Close()

	sess, err := c.resolve(ctx, store, id)
	if err != nil {
		return err
	}
	if len(sess.Messages) == 0 {
		return fmt.Errorf("session %s has no messages", sess.ID)
	}

	content, err := exporter.Export(sess)
	if err != nil {
		return fmt.Errorf("could not render transcript: %w", err)
	}

	output := c.output
	if output == "" {
		output = export.Filename(exporter, time.Now())
	}
	if err := os.WriteFile(output, content, 0o644); err != nil {
		return fmt.Errorf("could not write %s: %w", output, err)
	}

	stats := sess.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d messages from session %s to %s\n",
		stats.TotalMessages, sess.ID, output)

	return nil
}

func (c *exportCommander) resolve(ctx context.Context, store session.Store, id string) (*session.Session, error) {
	if id != "" {
		sess, err := store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("could not load session: %w", err)
		}
		return sess, nil
	}

	sessions, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no sessions in %s", c.dbPath)
	}

	// List is ordered most recently updated first, but its entries carry
	// no messages; fetch the full transcript.
	sess, err := store.Get(ctx, sessions[0].ID)
	if err != nil {
		return nil, fmt.Errorf("could not load session: %w", err)
	}
	return sess, nil
}
