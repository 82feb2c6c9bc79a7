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
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/packsig/packsig-go/pkg/policy"
	"github.com/packsig/packsig-go/pkg/trust"
)

func newPolicyShowCmd() *cobra.Command {
	var (
		trustConfigPath string
		mode            string
		output          string
	)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective verification policy",
		Long: `Print the policy resolved from the trusted-signers file, the PACKSIG_
environment overrides, and the optional mode override.

The json output is the policy document form, suitable for storage and
content addressing. The table output is for humans.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := resolveSettings(trustConfigPath, mode)
			if err != nil {
				return err
			}
			return printSettings(cmd.OutOrStdout(), settings, output)
		},
	}

	showCmd.Flags().StringVarP(&trustConfigPath, "trust-config", "c", "", "Path to the trusted-signers file (YAML)")
	showCmd.Flags().StringVarP(&mode, "mode", "m", "", "Preset override (accept, require, verify)")
	showCmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json, yaml)")

	return showCmd
}

func printSettings(out io.Writer, settings *policy.Settings, format string) error {
	switch format {
	case "table":
		return printSettingsTable(out, settings)
	case "json":
		return printSettingsJSON(out, settings)
	case "yaml":
		return printSettingsYAML(out, settings)
	default:
		return fmt.Errorf("unknown output format %q (expected table, json, or yaml)", format)
	}
}

func printSettingsJSON(out io.Writer, settings *policy.Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// printSettingsYAML re-encodes the document form as YAML. Key order follows
// the YAML encoder, not the document; the digest is unaffected because it is
// computed over the canonical JSON form.
func printSettingsYAML(out io.Writer, settings *policy.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	encoded, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = out.Write(encoded)
	return err
}

func printSettingsTable(out io.Writer, settings *policy.Settings) error {
	digest, err := settings.Digest()
	if err != nil {
		return err
	}

	allow := color.New(color.FgGreen).SprintFunc()
	deny := color.New(color.FgRed, color.Bold).SprintFunc()
	relaxation := func(allowed bool) string {
		if allowed {
			return allow("allow")
		}
		return deny("deny")
	}

	// Values sit in the trailing column so color escapes cannot skew the
	// tabwriter alignment.
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SETTING\tVALUE\n")
	fmt.Fprintf(w, "unsigned packages\t%s\n", relaxation(settings.AllowsUnsigned()))
	fmt.Fprintf(w, "illegal signatures\t%s\n", relaxation(settings.AllowsIllegal()))
	fmt.Fprintf(w, "untrusted signatures\t%s\n", relaxation(settings.AllowsUntrusted()))
	fmt.Fprintf(w, "unverified timestamps\t%s\n", relaxation(settings.AllowsIgnoreTimestamp()))
	fmt.Fprintf(w, "multiple timestamps\t%s\n", relaxation(settings.AllowsMultipleTimestamps()))
	fmt.Fprintf(w, "missing timestamps\t%s\n", relaxation(settings.AllowsNoTimestamp()))
	fmt.Fprintf(w, "unknown revocation\t%s\n", relaxation(settings.AllowsUnknownRevocation()))
	fmt.Fprintf(w, "missing repository allow list\t%s\n", relaxation(settings.AllowsNoRepositoryAllowList()))
	fmt.Fprintf(w, "missing client allow list\t%s\n", relaxation(settings.AllowsNoClientAllowList()))
	fmt.Fprintf(w, "verification target\t%s\n", settings.VerificationTarget())
	fmt.Fprintf(w, "signature placement\t%s\n", settings.SignaturePlacement())
	fmt.Fprintf(w, "countersignature behavior\t%s\n", settings.CountersignatureBehavior())
	fmt.Fprintf(w, "repository allow list\t%s\n", describeAllowList(settings.RepositoryAllowList()))
	fmt.Fprintf(w, "client allow list\t%s\n", describeAllowList(settings.ClientAllowList()))
	fmt.Fprintf(w, "digest\t%s\n", digest)
	return w.Flush()
}

func describeAllowList(list *trust.AllowList) string {
	switch {
	case list.IsEmpty():
		return "(absent)"
	case list.Len() == 1:
		return "1 entry"
	default:
		return fmt.Sprintf("%d entries", list.Len())
	}
}
