// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

/*
Package prompts provides the terminal prompts used by the launch wizard.

# Mode Detection

Non-interactive mode is enabled when ANY of these is true:

  - the --non-interactive flag was given (SetNonInteractive)
  - LC1C_NON_INTERACTIVE=1/true/yes/on environment variable
  - CI=1/true environment variable (GitHub Actions, GitLab CI, etc.)
  - stdin is not a TTY (piped/redirected/scripted)

In non-interactive mode NewPrompterForMode returns a NonInteractivePrompter
whose every capture fails with ErrNonInteractive, so commands can tell the
operator which flag is missing instead of hanging on a prompt.

# Testing

The promptui runners are package variables so tests can replace them, and
mocks.Prompter implements Prompter with testify/mock.
*/
package prompts
