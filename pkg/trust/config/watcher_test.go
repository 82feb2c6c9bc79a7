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

package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packsig/packsig-go/pkg/policy"
	"github.com/packsig/packsig-go/pkg/trust/config"
)

const watchTimeout = 5 * time.Second

func rewriteConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func receiveUpdate(t *testing.T, ch <-chan *policy.Settings) *policy.Settings {
	t.Helper()
	select {
	case settings := <-ch:
		return settings
	case <-time.After(watchTimeout):
		t.Fatal("timed out waiting for a policy update")
		return nil
	}
}

func TestWatcherDeliversFreshSettingsOnChange(t *testing.T) {
	path := writeConfig(t, "mode: accept\n")

	watcher, err := config.NewWatcher(path, nil)
	require.NoError(t, err)
	defer watcher.Close()

	updates := watcher.Subscribe()

	initial := receiveUpdate(t, updates)
	assert.True(t, initial.Equal(policy.AcceptModeDefault(nil, nil)))

	rewriteConfig(t, path, "mode: require\n")

	reloaded := receiveUpdate(t, updates)
	assert.True(t, reloaded.Equal(policy.RequireModeDefault(nil, nil)))
	assert.NotSame(t, initial, reloaded)

	// The earlier instance is untouched by the reload.
	assert.True(t, initial.AllowsUnsigned())
	assert.Same(t, reloaded, watcher.Current())
}

func TestWatcherKeepsLastGoodOnMalformedWrite(t *testing.T) {
	path := writeConfig(t, "mode: require\n")

	watcher, err := config.NewWatcher(path, nil)
	require.NoError(t, err)
	defer watcher.Close()

	updates := watcher.Subscribe()
	receiveUpdate(t, updates)

	rewriteConfig(t, path, "mode: [broken\n")
	time.Sleep(500 * time.Millisecond)

	// A malformed write never notifies and never replaces the policy.
	select {
	case settings := <-updates:
		t.Fatalf("unexpected update after malformed write: %v", settings)
	default:
	}
	assert.True(t, watcher.Current().Equal(policy.RequireModeDefault(nil, nil)))

	rewriteConfig(t, path, "mode: accept\n")

	recovered := receiveUpdate(t, updates)
	assert.True(t, recovered.Equal(policy.AcceptModeDefault(nil, nil)))
}

func TestWatcherCloseStopsReloads(t *testing.T) {
	path := writeConfig(t, "mode: accept\n")

	watcher, err := config.NewWatcher(path, nil)
	require.NoError(t, err)

	before := watcher.Current()
	require.NoError(t, watcher.Close())

	rewriteConfig(t, path, "mode: require\n")
	time.Sleep(500 * time.Millisecond)

	assert.Same(t, before, watcher.Current())
}

func TestNewWatcherRejectsBrokenConfig(t *testing.T) {
	path := writeConfig(t, "mode: paranoid\n")

	_, err := config.NewWatcher(path, nil)
	assert.ErrorIs(t, err, policy.ErrUnknownMode)
}

func TestNewWatcherRejectsMissingFile(t *testing.T) {
	_, err := config.NewWatcher(t.TempDir()+"/absent.yaml", nil)
	assert.Error(t, err)
}
