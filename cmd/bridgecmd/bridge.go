// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package bridgecmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luxfi/lc1c/pkg/application"
	"github.com/luxfi/lc1c/pkg/bridge"
	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/luxfi/lc1c/pkg/session"
	"github.com/luxfi/lc1c/pkg/statemachine"
	"github.com/luxfi/lc1c/pkg/ux"
)

var (
	app *application.Lux

	addr        string
	corsOrigins []string
)

// NewCmd creates the bridge command
func NewCmd(injectedApp *application.Lux) *cobra.Command {
	app = injectedApp
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Serve a session over local HTTP",
		Long: `Serve one lc1c session over HTTP so a UI can drive it.

Requests under /v1 install, verify, configure, launch and kill the chain;
/v1/events streams new blocks and their transactions over a websocket. A chain still running when
the bridge stops is killed.`,
		Args: cobra.NoArgs,
		RunE: serve,
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+constants.DefaultBridgeAddr+")")
	cmd.Flags().StringSliceVar(&corsOrigins, "cors-origin", []string{"*"}, "allowed websocket and CORS origins")
	return cmd
}

func serve(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, _, err := session.NewLocal(app, ux.Logger.Writer(), session.WithLogger(app.Log))
	if err != nil {
		return err
	}
	defer sess.Close()

	cfg := bridge.DefaultServerConfig()
	cfg.Addr = app.Conf.BridgeAddr()
	if addr != "" {
		cfg.Addr = addr
	}
	cfg.CORSOrigins = corsOrigins

	ux.Logger.PrintToUser("Bridge listening on http://%s, press Ctrl+C to stop", cfg.Addr)
	runErr := bridge.NewServer(sess, cfg, app.Log).Run(ctx)

	if sess.Orchestrator().State() == statemachine.StateRunning {
		killCtx, cancel := context.WithTimeout(context.Background(), constants.APIRequestTimeout)
		defer cancel()
		if err := sess.Orchestrator().Kill(killCtx); err != nil {
			app.Log.Warn("failed stopping the chain", zap.Error(err))
		}
	}
	return runErr
}
