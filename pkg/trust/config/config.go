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

// Package config loads the trusted-signers file that client installations use
// to declare their verification mode and certificate allow lists. Loading is
// layered: built-in defaults, then the YAML file, then PACKSIG_ environment
// variables, each layer overriding the one below. The package resolves a
// loaded configuration into an immutable policy and can watch the file for
// changes, producing a fresh policy per reload.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/packsig/packsig-go/pkg/limits"
	"github.com/packsig/packsig-go/pkg/policy"
	"github.com/packsig/packsig-go/pkg/trust"
)

var ErrTooManyEntries = errors.New("too many trust entries")

// Signer is one trusted-signer declaration. The fingerprint identifies the
// signing certificate; hashAlgorithm defaults to sha256 when omitted.
type Signer struct {
	Name          string   `koanf:"name"`
	Fingerprint   string   `koanf:"fingerprint"`
	HashAlgorithm string   `koanf:"hashAlgorithm"`
	Owners        []string `koanf:"owners"`
}

// Config is the decoded trusted-signers file.
type Config struct {
	// Mode selects the policy preset: "accept" or "require".
	Mode string `koanf:"mode"`
	// Repository lists certificates trusted for repository signatures.
	Repository []Signer `koanf:"repository"`
	// Client lists certificates trusted for author signatures.
	Client []Signer `koanf:"client"`
}

// Load reads the trusted-signers file at path and applies PACKSIG_ environment
// overrides on top of it. An empty path skips the file layer and yields the
// built-in defaults: accept mode with no trusted signers. The mode is
// validated eagerly; signer entries are validated by AllowLists.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults() {
		k.Set(key, value)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load trust config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("PACKSIG_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trust config: %w", err)
	}

	if _, err := policy.ParseMode(cfg.Mode); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() map[string]any {
	return map[string]any{
		"mode": policy.ModeAccept.String(),
	}
}

// envTransform converts environment variable names to configuration keys.
// Example: PACKSIG_MODE -> mode. Only top-level scalar keys are meaningful as
// overrides; the signer sections come from the file.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "PACKSIG_"))
}

// AllowLists builds validated allow lists from the configured signer
// sections. An empty section yields a nil list, which the policy layer treats
// as an absent list. Each section is bounded by
// limits.MaxAllowedTrustEntries.
func (c *Config) AllowLists() (repository, client *trust.AllowList, err error) {
	repository, err = buildAllowList("repository", c.Repository)
	if err != nil {
		return nil, nil, err
	}

	client, err = buildAllowList("client", c.Client)
	if err != nil {
		return nil, nil, err
	}

	return repository, client, nil
}

// Settings resolves the configuration into a policy: the mode picks the
// preset and the signer sections become its allow lists.
func (c *Config) Settings() (*policy.Settings, error) {
	mode, err := policy.ParseMode(c.Mode)
	if err != nil {
		return nil, err
	}

	repository, client, err := c.AllowLists()
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

func buildAllowList(section string, signers []Signer) (*trust.AllowList, error) {
	if len(signers) == 0 {
		return nil, nil
	}
	if len(signers) > limits.MaxAllowedTrustEntries {
		return nil, fmt.Errorf("%w: %s section has %d signers, limit is %d", ErrTooManyEntries, section, len(signers), limits.MaxAllowedTrustEntries)
	}

	entries := make([]trust.Entry, 0, len(signers))
	for i, signer := range signers {
		entry, err := signer.entry()
		if err != nil {
			return nil, fmt.Errorf("%s signer %d (%q): %w", section, i, signer.Name, err)
		}
		entries = append(entries, entry)
	}
	return trust.NewAllowList(entries...), nil
}

func (s Signer) entry() (trust.Entry, error) {
	algorithm := trust.SHA256
	if s.HashAlgorithm != "" {
		parsed, err := trust.ParseHashAlgorithm(s.HashAlgorithm)
		if err != nil {
			return trust.Entry{}, err
		}
		algorithm = parsed
	}
	return trust.NewEntry(algorithm, s.Fingerprint, s.Owners...)
}
