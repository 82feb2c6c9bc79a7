// Copyright 2026 The Packsig Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/packsig/packsig-go/pkg/policy"
	"github.com/packsig/packsig-go/pkg/trust/config"
)

const defaultLogLevel = "info"

// newRootCmd creates the root command for packsig.
func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "packsig",
		Short: "Package signature verification policy tooling",
		Long: `Inspect, validate, and evaluate package signature verification policies.

A policy is resolved from a trusted-signers file (YAML) plus PACKSIG_
environment overrides, or from a named preset. Policies are content
addressed: equivalent policies share one digest.

Example:
  packsig policy show --trust-config trust.yaml --output table
  packsig policy eval --mode require --evidence evidence.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", defaultLogLevel, "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newPolicyCmd())

	return rootCmd
}

func newPolicyCmd() *cobra.Command {
	policyCmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect and evaluate verification policies",
	}

	policyCmd.AddCommand(newPolicyShowCmd())
	policyCmd.AddCommand(newPolicyValidateCmd())
	policyCmd.AddCommand(newPolicyWatchCmd())
	policyCmd.AddCommand(newPolicyEvalCmd())

	return policyCmd
}

// setupLogging installs a text handler on stderr so command output on stdout
// stays machine readable.
func setupLogging(level string) error {
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parsed})
	slog.SetDefault(slog.New(handler))
	return nil
}

// resolveSettings builds the effective policy from the trusted-signers file
// and an optional mode override. The override keeps the file's allow lists
// but selects a different preset; "verify" selects the verify-command preset,
// which has no spelling in the file itself.
func resolveSettings(trustConfigPath, modeOverride string) (*policy.Settings, error) {
	cfg, err := config.Load(trustConfigPath)
	if err != nil {
		return nil, err
	}

	if modeOverride == "" {
		return cfg.Settings()
	}

	repository, client, err := cfg.AllowLists()
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(strings.TrimSpace(modeOverride), "verify") {
		return policy.VerifyCommandDefault(repository, client), nil
	}

	mode, err := policy.ParseMode(modeOverride)
	if err != nil {
		return nil, err
	}
	switch mode {
	case policy.ModeRequire:
		return policy.RequireModeDefault(repository, client), nil
	default:
		return policy.AcceptModeDefault(repository, client), nil
	}
}
