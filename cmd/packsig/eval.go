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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/packsig/packsig-go/pkg/verify"
)

func newPolicyEvalCmd() *cobra.Command {
	var (
		evidencePath    string
		trustConfigPath string
		mode            string
	)

	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate signature evidence against the effective policy",
		Long: `Decode an evidence file (JSON) and evaluate it against the effective
policy. The result is printed as JSON. The exit status is non-zero only
when the outcome is fail; warnings exit zero.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := resolveSettings(trustConfigPath, mode)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(evidencePath)
			if err != nil {
				return fmt.Errorf("failed to read evidence file: %w", err)
			}

			var evidence verify.Evidence
			if err := json.Unmarshal(data, &evidence); err != nil {
				return fmt.Errorf("failed to parse evidence file: %w", err)
			}

			result := verify.Evaluate(settings, evidence)

			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

			if result.Outcome == verify.OutcomeFail {
				return result.Err()
			}
			return nil
		},
	}

	evalCmd.Flags().StringVarP(&evidencePath, "evidence", "e", "", "Path to the evidence file (JSON)")
	evalCmd.Flags().StringVarP(&trustConfigPath, "trust-config", "c", "", "Path to the trusted-signers file (YAML)")
	evalCmd.Flags().StringVarP(&mode, "mode", "m", "", "Preset override (accept, require, verify)")
	_ = evalCmd.MarkFlagRequired("evidence")

	return evalCmd
}
