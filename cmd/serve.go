package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve matchup features over HTTP",
	Long: `Load the stored history once and answer feature requests:

  GET  /api/health
  GET  /api/schema
  GET  /api/entities
  POST /api/features         {team1, team2, venue, toss_winner, toss_decision, match_type?}
  POST /api/features/batch   {queries: [...]}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	aliases, err := loadAliases()
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	history, err := loadHistory(db)
	db.Close()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg.Server, newQuerier(history, aliases), aliases).Run(ctx, cfg.Addr())
}
