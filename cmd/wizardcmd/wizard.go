// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package wizardcmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/lc1c/cmd/chaincmd"
	"github.com/luxfi/lc1c/pkg/application"
	"github.com/luxfi/lc1c/pkg/genesis"
	"github.com/luxfi/lc1c/pkg/prompts"
	"github.com/luxfi/lc1c/pkg/session"
	"github.com/luxfi/lc1c/pkg/ux"
)

var app *application.Lux

const (
	optionTemplate = "Bundled single baker template"
	optionForm     = "Edit the default genesis"
	optionDocument = "Genesis creator TOML file"
	optionExisting = "Relaunch an existing chain"
)

var errNoChains = errors.New("no chain folders to relaunch yet")

// NewCmd creates the interactive launch command
func NewCmd(injectedApp *application.Lux) *cobra.Command {
	app = injectedApp
	return &cobra.Command{
		Use:   "wizard",
		Short: "Launch a local chain interactively",
		Long: `Walk through the ways to configure a local chain, launch it and follow
its balances. Needs a terminal; use 'lc1c chain launch' from scripts.`,
		Args: cobra.NoArgs,
		RunE: runWizard,
	}
}

func runWizard(cmd *cobra.Command, _ []string) error {
	if prompts.IsNonInteractive() {
		return fmt.Errorf("%w: the wizard needs a terminal, use 'lc1c chain launch'", prompts.ErrNonInteractive)
	}
	predicate, err := app.Prompt.CaptureStringAllowEmpty("Only show addresses containing (empty for all)")
	if err != nil {
		return err
	}
	return chaincmd.LaunchAndMonitor(cmd.Context(), app, func(sess *session.Session) (genesis.Resolver, error) {
		return resolve(cmd.Context(), app.Prompt, sess)
	}, predicate)
}

// resolve asks for a configuration strategy and the input it needs.
func resolve(ctx context.Context, prompt prompts.Prompter, sess *session.Session) (genesis.Resolver, error) {
	choice, err := prompt.CaptureList("How should the genesis be configured?",
		[]string{optionTemplate, optionForm, optionDocument, optionExisting})
	if err != nil {
		return nil, err
	}
	switch choice {
	case optionTemplate:
		return genesis.TemplateResolver{}, nil
	case optionForm:
		r := genesis.NewFormResolver()
		for {
			if err := editForm(prompt, r); err != nil {
				return nil, err
			}
			err := checkForm(sess, r)
			var invalid *genesis.InvalidSpecError
			if !errors.As(err, &invalid) {
				if err != nil {
					return nil, err
				}
				return r, nil
			}
			// back to the form, edits so far are kept
			for _, v := range invalid.Violations() {
				ux.Logger.RedXToUser("%s: %s", v.Field, v.Reason)
			}
		}
	case optionDocument:
		path, err := prompt.CaptureExistingFilepath("Path to the genesis creator TOML file")
		if err != nil {
			return nil, err
		}
		bs, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed reading genesis document: %w", err)
		}
		return genesis.NewDocumentResolver(string(bs)), nil
	case optionExisting:
		r, err := sess.SnapshotResolver(ctx)
		if err != nil {
			return nil, err
		}
		folders := r.Folders()
		if len(folders) == 0 {
			return nil, errNoChains
		}
		folder, err := prompt.CaptureList("Which chain?", folders)
		if err != nil {
			return nil, err
		}
		if err := r.Select(folder); err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown option %q", choice)
	}
}

// checkForm assembles the draft without submitting it.
func checkForm(sess *session.Session, r *genesis.FormResolver) error {
	src, err := r.Resolve()
	if err != nil {
		return err
	}
	_, err = sess.Assemble(src)
	return err
}

// editForm covers the values people change most. Anything else goes
// through 'lc1c chain launch --spec'.
func editForm(prompt prompts.Prompter, r *genesis.FormResolver) error {
	versions := make([]string, 0, len(genesis.SupportedProtocolVersions))
	for _, v := range genesis.SupportedProtocolVersions {
		versions = append(versions, string(v))
	}
	version, err := prompt.CaptureList("Protocol version", versions)
	if err != nil {
		return err
	}
	slot, err := prompt.CaptureUint64("Slot duration in milliseconds")
	if err != nil {
		return err
	}
	epoch, err := prompt.CaptureUint64("Epoch length in slots")
	if err != nil {
		return err
	}
	r.Edit(func(spec *genesis.LaunchSpec) {
		spec.ProtocolVersion = genesis.ProtocolVersion(version)
		spec.Parameters.SlotDuration = slot
		spec.Parameters.EpochLength = epoch
	})

	draft := r.Draft()
	for i, account := range draft.Accounts {
		edit, err := prompt.CaptureNoYes(fmt.Sprintf("Change the %s account balance (%s)?", account.Template, account.Balance))
		if err != nil {
			return err
		}
		if !edit {
			continue
		}
		balance, err := prompt.CaptureValidatedString("Balance in microCCD", prompts.ValidateAmount)
		if err != nil {
			return err
		}
		r.Edit(func(spec *genesis.LaunchSpec) {
			spec.Accounts[i].Balance = balance
		})
	}
	return nil
}
