// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package chaincmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luxfi/lc1c/pkg/application"
	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/luxfi/lc1c/pkg/genesis"
	"github.com/luxfi/lc1c/pkg/orchestrator"
	"github.com/luxfi/lc1c/pkg/reconciler"
	"github.com/luxfi/lc1c/pkg/session"
	"github.com/luxfi/lc1c/pkg/statemachine"
	"github.com/luxfi/lc1c/pkg/ux"
)

var (
	fromFolder   string
	specFile     string
	documentFile string
	filter       string
)

func newLaunchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch a local chain and follow its balances",
		Long: `Launch a local chain and print the account balances of every new block
until interrupted. Ctrl+C stops the node.

Without flags the bundled single baker template is used. --spec merges a
YAML or JSON file over the default genesis description, --document hands a
genesis creator TOML file over unchanged and --from relaunches a chain
folder generated earlier.`,
		Args: cobra.NoArgs,
		RunE: launch,
	}
	cmd.Flags().StringVar(&fromFolder, "from", "", "relaunch an existing chain folder, e.g. chain-1")
	cmd.Flags().StringVar(&specFile, "spec", "", "YAML or JSON genesis overrides merged over the defaults")
	cmd.Flags().StringVar(&documentFile, "document", "", "genesis creator TOML document used as-is")
	cmd.Flags().StringVar(&filter, "filter", "", "only show addresses containing this text")
	cmd.MarkFlagsMutuallyExclusive("from", "spec", "document")
	return cmd
}

func launch(cmd *cobra.Command, _ []string) error {
	return LaunchAndMonitor(cmd.Context(), app, func(sess *session.Session) (genesis.Resolver, error) {
		return resolverFromFlags(cmd.Context(), sess)
	}, filter)
}

func resolverFromFlags(ctx context.Context, sess *session.Session) (genesis.Resolver, error) {
	switch {
	case fromFolder != "":
		r, err := sess.SnapshotResolver(ctx)
		if err != nil {
			return nil, err
		}
		if err := r.Select(fromFolder); err != nil {
			return nil, err
		}
		return r, nil
	case specFile != "":
		bs, err := os.ReadFile(specFile)
		if err != nil {
			return nil, fmt.Errorf("failed reading genesis overrides: %w", err)
		}
		r := genesis.NewFormResolver()
		if err := r.Merge(bs); err != nil {
			return nil, err
		}
		return r, nil
	case documentFile != "":
		bs, err := os.ReadFile(documentFile)
		if err != nil {
			return nil, fmt.Errorf("failed reading genesis document: %w", err)
		}
		return genesis.NewDocumentResolver(string(bs)), nil
	default:
		return genesis.TemplateResolver{}, nil
	}
}

// Prepare installs the node when missing and verifies it.
func Prepare(ctx context.Context, sess *session.Session) error {
	orch := sess.Orchestrator()
	steps := ux.NewStepTracker(ux.Logger)
	if orch.State() == statemachine.StateUninstalled {
		steps.Start("Installing the Concordium node")
		if err := orch.Install(ctx); err != nil {
			steps.Failed(err.Error())
			return err
		}
		steps.Complete("")
	}
	steps.Start("Verifying the installation")
	version, err := orch.Verify(ctx)
	if err != nil {
		steps.Failed(err.Error())
		return err
	}
	steps.Complete(version)
	return nil
}

// LaunchAndMonitor runs a full local session: install, verify, submit the
// resolved config, launch and print balances until ctx ends or the node
// fails. An interrupt kills the node.
func LaunchAndMonitor(
	ctx context.Context,
	app *application.Lux,
	resolve func(*session.Session) (genesis.Resolver, error),
	predicate string,
) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rec *reconciler.Reconciler
	failed := make(chan string, 1)
	sess, _, err := session.NewLocal(app, ux.Logger.Writer(),
		session.WithLogger(app.Log),
		session.WithOnChange(func(snap reconciler.Snapshot) {
			if err := ux.PrintBalances(ux.Logger.Writer(), snap.Number, snap.Hash, rec.View()); err != nil {
				app.Log.Warn("failed printing balances", zap.Error(err))
			}
		}),
		session.WithObserver(func(t orchestrator.Transition) {
			if t.To == statemachine.StateFailed {
				select {
				case failed <- t.Reason:
				default:
				}
			}
		}),
	)
	if err != nil {
		return err
	}
	defer sess.Close()
	rec = sess.Reconciler()

	if err := Prepare(ctx, sess); err != nil {
		return err
	}

	r, err := resolve(sess)
	if err != nil {
		return err
	}
	if err := sess.Resolve(r); err != nil {
		return err
	}
	if err := rec.SetFilter(predicate); err != nil {
		return err
	}

	steps := ux.NewStepTracker(ux.Logger)
	steps.Start(fmt.Sprintf("Launching the chain (%s)", sess.Orchestrator().Payload().Mode()))
	if err := sess.Orchestrator().Launch(ctx); err != nil {
		steps.Failed(err.Error())
		return err
	}
	steps.Complete("")
	ux.Logger.PrintToUser("Following %s, press Ctrl+C to stop the node", app.Conf.NodeGRPCAddr())

	select {
	case reason := <-failed:
		return fmt.Errorf("chain stopped: %s", reason)
	case <-ctx.Done():
	}

	killCtx, cancel := context.WithTimeout(context.Background(), constants.APIRequestTimeout)
	defer cancel()
	steps.Start("Stopping the node")
	if err := sess.Orchestrator().Kill(killCtx); err != nil {
		steps.Failed(err.Error())
		return err
	}
	steps.Complete("")
	return nil
}
