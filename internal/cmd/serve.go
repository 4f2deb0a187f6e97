package cmd

import (
	"context"

	"github.com/packerlschupfer/ESP32-Logger/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve <log-file-or-glob>",
	Short: "Follow a test log and serve a live analysis dashboard",
	Long: `Serve runs the same follow pipeline as watch and additionally exposes a
web dashboard: the current report at /api/report, raw counters at
/api/stats, and a websocket stream of analyzed lines at /ws.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "8080", "dashboard port")
	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, h, err := startPipeline(ctx, args)
	if err != nil {
		return err
	}
	go h.Start(ctx)

	srv := server.New(h, a, reportOptions(), viper.GetString("port"))
	return srv.Start()
}
