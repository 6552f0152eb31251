package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pdxmph/softphone-sync/internal/db"
	"github.com/pdxmph/softphone-sync/internal/logging"
	"github.com/pdxmph/softphone-sync/internal/tui"
	"github.com/spf13/cobra"
)

func initCmd(load configLoader) *cobra.Command {
	var fixtures bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the local CRM database and a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, configPath, err := load()
			if err != nil {
				return err
			}

			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				if err := cfg.SaveTo(configPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", configPath)
			}

			if fixtures {
				err = db.CreateFixturesDatabase(cfg.Database.Path)
			} else {
				err = db.Initialize(cfg.Database.Path)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created CRM database at %s\n", cfg.Database.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fixtures, "fixtures", false, "Seed the database with sample call logs")

	return cmd
}

func runCmd(load configLoader) *cobra.Command {
	var origin string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the agent desktop with CRM panel sync and transcript export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("origin") {
				cfg.CRM.Origin = origin
			}

			// The terminal belongs to the UI, so logs always go to a file.
			logDir := cfg.Log.Dir
			if logDir == "" {
				logDir = filepath.Dir(cfg.Database.Path)
			}
			logger, err := logging.NewLogger(logDir, cfg.Log.Level)
			if err != nil {
				return err
			}
			defer logger.Close()

			sess, err := newSession(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			model := tui.New(sess.runtime, sess.database, tui.Options{
				Origin:    cfg.CRM.Origin,
				Connected: sess.orchestrator.Active(),
				FullWidth: cfg.Panel.FullWidth,
			})
			p := tea.NewProgram(model, tea.WithAltScreen())
			_, err = p.Run()
			return errors.Join(err, sess.Close())
		},
	}

	cmd.Flags().StringVar(&origin, "origin", "", "Ancestor origin of the hosting CRM page")

	return cmd
}

// previewWidth is how much of a transcript the logs listing shows
const previewWidth = 40

func logsCmd(load configLoader) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List call log records saved to the CRM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load()
			if err != nil {
				return err
			}
			database, err := db.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer database.Close()

			logs, err := database.ListLogs(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(logs) == 0 {
				fmt.Fprintln(out, "No call logs saved yet")
				return nil
			}
			fmt.Fprintf(out, "%-20s %6s %6s  %-19s  %s\n", "RECORD", "MSGS", "SAVES", "UPDATED", "PREVIEW")
			for _, l := range logs {
				fmt.Fprintf(out, "%-20s %6d %6d  %-19s  %s\n", l.ID, l.MessageCount(), l.SaveCount,
					l.UpdatedAt.Format("2006-01-02 15:04:05"), l.Preview(previewWidth))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records to list")

	return cmd
}

func transcriptCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "transcript [record-id]",
		Short: "Print the transcript stored on a CRM record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load()
			if err != nil {
				return err
			}
			database, err := db.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer database.Close()

			l, err := database.GetLog(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), l.Description)
			return nil
		},
	}
}
