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

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/packsig/packsig-go/pkg/trust/config"
)

func newPolicyValidateCmd() *cobra.Command {
	var trustConfigPath string

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a trusted-signers file",
		Long: `Load the trusted-signers file, validate every signer entry, and print a
summary of the policy it resolves to. Exits non-zero when the file is
invalid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(trustConfigPath)
			if err != nil {
				return err
			}

			repository, client, err := cfg.AllowLists()
			if err != nil {
				return err
			}

			settings, err := cfg.Settings()
			if err != nil {
				return err
			}
			digest, err := settings.Digest()
			if err != nil {
				return err
			}

			green := color.New(color.FgGreen, color.Bold).SprintFunc()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s: mode %s, %d repository signer(s), %d client signer(s)\n",
				green("✓"), trustConfigPath, cfg.Mode, repository.Len(), client.Len())
			fmt.Fprintf(out, "policy digest: %s\n", digest)
			return nil
		},
	}

	validateCmd.Flags().StringVarP(&trustConfigPath, "trust-config", "c", "", "Path to the trusted-signers file (YAML)")
	_ = validateCmd.MarkFlagRequired("trust-config")

	return validateCmd
}
