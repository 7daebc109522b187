package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dialspace/dialspace/internal/config"
	"github.com/dialspace/dialspace/internal/server"
	"github.com/dialspace/dialspace/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		flagAddr     string
		flagDataFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if flagAddr != "" {
				cfg.Addr = flagAddr
			}
			if flagDataFile != "" {
				cfg.DataFile = flagDataFile
			}

			log, err := newLogger(cfg.Env)
			if err != nil {
				return err
			}
			defer log.Sync()

			st := store.Open(cfg.DataFile, server.DefaultRooms(), cfg.HistoryLimit, log)
			defer st.Close()

			sessions := server.NewSessionManager(st)
			registry := server.NewRegistry(st.Rooms(), sessions, cfg.RoomCap, cfg.RoomCapacity)
			dispatch := server.NewDispatcher(sessions, log)
			router := server.NewRouter(cfg, log, sessions, registry, dispatch, st)
			srv := server.New(cfg, log, router, registry, sessions)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			go func() {
				log.Info("relay listening", zap.String("addr", cfg.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("listen", zap.Error(err))
				}
			}()

			<-stop
			log.Info("shutting down")

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Warn("shutdown", zap.Error(err))
			}
			log.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagAddr, "addr", "a", "", "listen address (overrides DS_ADDR)")
	cmd.Flags().StringVarP(&flagDataFile, "data-file", "d", "", "snapshot file path (overrides DS_DATA_FILE)")
	return cmd
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
