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
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/packsig/packsig-go/pkg/policy"
	"github.com/packsig/packsig-go/pkg/trust"
	"github.com/packsig/packsig-go/pkg/verify"
)

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()

	assert.Equal(t, "packsig", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	logLevelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, logLevelFlag)
	assert.Equal(t, "l", logLevelFlag.Shorthand)
	assert.Equal(t, defaultLogLevel, logLevelFlag.DefValue)

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["policy"], "should have policy command")
}

func TestPolicyCmdSubcommands(t *testing.T) {
	cmd := newPolicyCmd()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, name := range []string{"show", "validate", "watch", "eval"} {
		assert.True(t, names[name], "should have %s command", name)
	}
}

func TestResolveSettings(t *testing.T) {
	fingerprint := strings.Repeat("ab", 32)
	trustConfig := writeTempFile(t, "trust.yaml", `
mode: require
repository:
  - name: registry
    fingerprint: "`+fingerprint+`"
`)

	tests := []struct {
		name        string
		trustConfig string
		mode        string
		want        func() *policy.Settings
		wantErr     bool
	}{
		{
			name: "defaults without config or mode",
			want: func() *policy.Settings { return policy.AcceptModeDefault(nil, nil) },
		},
		{
			name: "mode override without config",
			mode: "require",
			want: func() *policy.Settings { return policy.RequireModeDefault(nil, nil) },
		},
		{
			name:        "config file mode",
			trustConfig: trustConfig,
			want: func() *policy.Settings {
				return policy.RequireModeDefault(allowListFor(t, fingerprint), nil)
			},
		},
		{
			name:        "mode override keeps config lists",
			trustConfig: trustConfig,
			mode:        "accept",
			want: func() *policy.Settings {
				return policy.AcceptModeDefault(allowListFor(t, fingerprint), nil)
			},
		},
		{
			name:        "verify override selects verify-command preset",
			trustConfig: trustConfig,
			mode:        "verify",
			want: func() *policy.Settings {
				return policy.VerifyCommandDefault(allowListFor(t, fingerprint), nil)
			},
		},
		{
			name:    "unknown mode",
			mode:    "paranoid",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, err := resolveSettings(tt.trustConfig, tt.mode)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, settings.Equal(tt.want()))
		})
	}
}

func TestPolicyShowJSON(t *testing.T) {
	out := executeCommand(t, nil, "policy", "show", "--mode", "require", "--output", "json")

	reparsed, err := policy.ParseSettings([]byte(out))
	require.NoError(t, err)
	assert.True(t, reparsed.Equal(policy.RequireModeDefault(nil, nil)))
}

func TestPolicyShowTable(t *testing.T) {
	color.NoColor = true

	out := executeCommand(t, nil, "policy", "show", "--mode", "require")

	assert.Contains(t, out, "unsigned packages")
	assert.Contains(t, out, "deny")
	assert.Contains(t, out, "verification target")
	assert.Contains(t, out, "digest")

	digest, err := policy.RequireModeDefault(nil, nil).Digest()
	require.NoError(t, err)
	assert.Contains(t, out, digest)
}

func TestPolicyShowYAML(t *testing.T) {
	out := executeCommand(t, nil, "policy", "show", "--output", "yaml")

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, policy.PolicyMediaType01, doc["mediaType"])
}

func TestPolicyShowRejectsUnknownFormat(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"policy", "show", "--output", "xml"})
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestPolicyValidate(t *testing.T) {
	path := writeTempFile(t, "trust.yaml", `
mode: accept
client:
  - name: release
    fingerprint: "`+strings.Repeat("ab", 32)+`"
`)

	out := executeCommand(t, nil, "policy", "validate", "--trust-config", path)
	assert.Contains(t, out, "mode accept")
	assert.Contains(t, out, "1 client signer(s)")
	assert.Contains(t, out, "policy digest")
}

func TestPolicyValidateRejectsBrokenFile(t *testing.T) {
	path := writeTempFile(t, "trust.yaml", `
mode: accept
client:
  - fingerprint: "not hex"
`)

	root := newRootCmd()
	root.SetArgs([]string{"policy", "validate", "--trust-config", path})
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))

	assert.Error(t, root.Execute())
}

func TestPolicyEval(t *testing.T) {
	clean := verify.Evidence{
		Signed:             true,
		Type:               verify.SignatureTypeAuthor,
		Conformant:         true,
		Trusted:            true,
		TimestampCount:     1,
		TimestampsVerified: true,
		Revocation:         verify.RevocationStatusGood,
	}

	// The result JSON is a report, not a wire input, so tests decode it
	// generically instead of through the verify types.
	type report struct {
		Outcome  string              `json:"outcome"`
		Errors   []map[string]string `json:"errors"`
		Warnings []map[string]string `json:"warnings"`
	}

	t.Run("clean evidence accepts", func(t *testing.T) {
		// Require mode denies missing allow lists, so the config carries both.
		trustConfig := writeTempFile(t, "trust.yaml", `
mode: require
repository:
  - fingerprint: "`+strings.Repeat("ab", 32)+`"
client:
  - fingerprint: "`+strings.Repeat("cd", 32)+`"
`)

		out := executeCommand(t, nil, "policy", "eval",
			"--trust-config", trustConfig, "--evidence", writeEvidence(t, clean))

		var result report
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, "accept", result.Outcome)
		assert.Empty(t, result.Errors)
	})

	t.Run("unsigned fails under require mode", func(t *testing.T) {
		root := newRootCmd()
		var buf bytes.Buffer
		root.SetOut(&buf)
		root.SetErr(new(bytes.Buffer))
		root.SetArgs([]string{"policy", "eval",
			"--mode", "require", "--evidence", writeEvidence(t, verify.Evidence{})})

		err := root.Execute()
		assert.ErrorIs(t, err, verify.ErrUnsigned)

		var result report
		require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
		assert.Equal(t, "fail", result.Outcome)
		assert.NotEmpty(t, result.Errors)
	})

	t.Run("relaxed policy warns but exits clean", func(t *testing.T) {
		noTimestamp := clean
		noTimestamp.TimestampCount = 0

		out := executeCommand(t, nil, "policy", "eval",
			"--mode", "accept", "--evidence", writeEvidence(t, noTimestamp))

		var result report
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, "warn", result.Outcome)
		assert.NotEmpty(t, result.Warnings)
	})
}

func TestPolicyEvalRejectsGarbageEvidence(t *testing.T) {
	path := writeTempFile(t, "evidence.json", "{not json")

	root := newRootCmd()
	root.SetArgs([]string{"policy", "eval", "--evidence", path})
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse evidence file")
}

func executeCommand(t *testing.T, errOut *bytes.Buffer, args ...string) string {
	t.Helper()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	if errOut == nil {
		errOut = new(bytes.Buffer)
	}
	root.SetErr(errOut)
	root.SetArgs(args)

	require.NoError(t, root.Execute())
	return out.String()
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func writeEvidence(t *testing.T, evidence verify.Evidence) string {
	t.Helper()
	data, err := json.Marshal(evidence)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "evidence.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func allowListFor(t *testing.T, fingerprints ...string) *trust.AllowList {
	t.Helper()
	entries := make([]trust.Entry, 0, len(fingerprints))
	for _, fingerprint := range fingerprints {
		entry, err := trust.NewEntry(trust.SHA256, fingerprint)
		require.NoError(t, err)
		entries = append(entries, entry)
	}
	return trust.NewAllowList(entries...)
}
