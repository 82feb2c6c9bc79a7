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
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/packsig/packsig-go/pkg/trust/config"
)

func newPolicyWatchCmd() *cobra.Command {
	var trustConfigPath string

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a trusted-signers file and log each policy reload",
		Long: `Watch the trusted-signers file and log the digest of the effective policy
on start and after every reload. Malformed writes keep the last good
policy. Stop with SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := slog.Default()

			watcher, err := config.NewWatcher(trustConfigPath, logger)
			if err != nil {
				return err
			}
			defer watcher.Close()

			updates := watcher.Subscribe()

			for {
				select {
				case <-ctx.Done():
					logger.Info("stopping policy watch", "path", trustConfigPath)
					return nil
				case settings := <-updates:
					digest, err := settings.Digest()
					if err != nil {
						logger.Warn("failed to digest policy", "error", err)
						continue
					}
					logger.Info("effective policy",
						"digest", digest,
						"unsigned", settings.AllowsUnsigned(),
						"untrusted", settings.AllowsUntrusted(),
					)
				}
			}
		},
	}

	watchCmd.Flags().StringVarP(&trustConfigPath, "trust-config", "c", "", "Path to the trusted-signers file (YAML)")
	_ = watchCmd.MarkFlagRequired("trust-config")

	return watchCmd
}
