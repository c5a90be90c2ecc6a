package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/domain"
	jwtinfra "github.com/workstation-tools/internal/infrastructure/jwt"
	"github.com/workstation-tools/internal/pkg/token"
	transporthttp "github.com/workstation-tools/internal/transport/http"
)

func (a *app) jwtProvider(days int) (*jwtinfra.Provider, error) {
	p, err := jwtinfra.NewProvider(a.cfg.APISecret, time.Duration(days)*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("set DOWNLOADER_API_SECRET to use the API: %w", domain.ErrPrecondition)
	}
	return p, nil
}

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the queue over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.bind(cmd)
			provider, err := a.jwtProvider(a.cfg.APITokenTTLDay)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			q, err := a.queue(ctx)
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:         ":" + a.v.GetString("port"),
				Handler:      transporthttp.NewRouter(ctx, a.cfg, &transporthttp.Deps{Queue: q, JWTProvider: provider}),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("server starting", "addr", srv.Addr, "table", a.cfg.DownloadTable)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			slog.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("forced shutdown: %w", err)
			}
			slog.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().String("port", a.cfg.APIPort, "Port to listen on")
	cmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	return cmd
}

func tokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the queue API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.bind(cmd)
			provider, err := a.jwtProvider(a.v.GetInt("days"))
			if err != nil {
				return err
			}
			tok, err := provider.Sign(a.v.GetString("client"))
			if err != nil {
				return err
			}
			console.Println("%s", tok)
			return nil
		},
	}
	host, _ := os.Hostname()
	cmd.Flags().String("client", host, "Client name recorded in the token")
	cmd.Flags().Int("days", a.cfg.APITokenTTLDay, "Token lifetime in days")
	return cmd
}

func secretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "secret",
		Short: "Generate a value for DOWNLOADER_API_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s, err := token.NewSecret()
			if err != nil {
				return err
			}
			console.Println("%s", s)
			return nil
		},
	}
}
