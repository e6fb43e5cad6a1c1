package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toyinlola/topsis/pkg/cli"
	"github.com/toyinlola/topsis/pkg/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP ranking service",
	Long: `Serve exposes ranking over HTTP:

  GET  /                       health check
  POST /api/topsis             multipart upload (file, weights, impacts, email, send_mail)
  GET  /api/download/{name}    result CSV from a previous ranking
  GET  /metrics                Prometheus metrics

The server stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides server.address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := cli.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	if serveAddr != "" {
		cfg.Server.Address = serveAddr
	}

	var opts []server.Option
	mailer, err := cli.NewMailer(cfg.Mail)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	if mailer != nil {
		opts = append(opts, server.WithMailer(mailer))
		slog.Info("mail delivery enabled", "host", cfg.Mail.Host, "from", cfg.Mail.Sender())
	} else {
		slog.Info("mail delivery disabled", "reason", "mail.host not set")
	}

	srv, err := server.New(serverConfig(cfg.Server), opts...)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

func serverConfig(c cli.ServerConfig) server.Config {
	return server.Config{
		Address:         c.Address,
		OutputDir:       c.OutputDir,
		MaxUploadBytes:  c.MaxUploadBytes,
		RateLimit:       c.RateLimit,
		RateBurst:       c.RateBurst,
		ReadTimeout:     c.ReadTimeout,
		ShutdownTimeout: c.ShutdownTimeout,
		Retention:       c.Retention,
		CORSOrigins:     c.CORSOrigins,
	}
}
