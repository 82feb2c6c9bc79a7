// Copyright 2025 The Packsig Authors.
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

package trust_test

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packsig/packsig-go/pkg/trust"
)

func sha256Hex(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}

func sha512Hex(seed string) string {
	sum := sha512.Sum512([]byte(seed))
	return hex.EncodeToString(sum[:])
}

func TestParseHashAlgorithm(t *testing.T) {
	for _, tc := range []struct {
		name string
		want trust.HashAlgorithm
	}{
		{"sha256", trust.SHA256},
		{"SHA256", trust.SHA256},
		{"SHA-256", trust.SHA256},
		{" sha384 ", trust.SHA384},
		{"sha512", trust.SHA512},
	} {
		got, err := trust.ParseHashAlgorithm(tc.name)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := trust.ParseHashAlgorithm("md5")
	assert.ErrorIs(t, err, trust.ErrUnknownHashAlgorithm)
	_, err = trust.ParseHashAlgorithm("")
	assert.ErrorIs(t, err, trust.ErrUnknownHashAlgorithm)
}

func TestHashAlgorithmText(t *testing.T) {
	for _, alg := range []trust.HashAlgorithm{trust.SHA256, trust.SHA384, trust.SHA512} {
		text, err := alg.MarshalText()
		require.NoError(t, err)

		var back trust.HashAlgorithm
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, alg, back)
	}

	_, err := trust.HashAlgorithm(17).MarshalText()
	assert.ErrorIs(t, err, trust.ErrUnknownHashAlgorithm)
}

func TestNewEntry(t *testing.T) {
	fingerprint := sha256Hex("leaf")

	entry, err := trust.NewEntry(trust.SHA256, fingerprint, "contoso", "fabrikam")
	require.NoError(t, err)
	assert.Equal(t, fingerprint, entry.Fingerprint())
	assert.Equal(t, trust.SHA256, entry.Algorithm())
	assert.Equal(t, []string{"contoso", "fabrikam"}, entry.Owners())
}

func TestNewEntryNormalizesCase(t *testing.T) {
	fingerprint := sha256Hex("leaf")

	entry, err := trust.NewEntry(trust.SHA256, "  "+strings.ToUpper(fingerprint)+" ")
	require.NoError(t, err)
	assert.Equal(t, fingerprint, entry.Fingerprint())
	assert.True(t, entry.Matches(fingerprint))
	assert.True(t, entry.Matches(strings.ToUpper(fingerprint)))
	assert.False(t, entry.Matches(sha256Hex("other")))
}

func TestNewEntryRejectsBadInput(t *testing.T) {
	for _, tc := range []struct {
		name        string
		algorithm   trust.HashAlgorithm
		fingerprint string
		want        error
	}{
		{"unknown algorithm", trust.HashAlgorithm(42), sha256Hex("x"), trust.ErrUnknownHashAlgorithm},
		{"negative algorithm", trust.HashAlgorithm(-1), sha256Hex("x"), trust.ErrUnknownHashAlgorithm},
		{"empty fingerprint", trust.SHA256, "", trust.ErrInvalidFingerprint},
		{"wrong length", trust.SHA256, sha512Hex("x"), trust.ErrInvalidFingerprint},
		{"wrong length for sha512", trust.SHA512, sha256Hex("x"), trust.ErrInvalidFingerprint},
		{"not hex", trust.SHA256, strings.Repeat("zz", 32), trust.ErrInvalidFingerprint},
		{"odd characters", trust.SHA256, sha256Hex("x")[:63] + "g", trust.ErrInvalidFingerprint},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := trust.NewEntry(tc.algorithm, tc.fingerprint)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestEntryOwnersAreCopied(t *testing.T) {
	owners := []string{"contoso"}
	entry, err := trust.NewEntry(trust.SHA256, sha256Hex("leaf"), owners...)
	require.NoError(t, err)

	owners[0] = "mallory"
	assert.Equal(t, []string{"contoso"}, entry.Owners())

	got := entry.Owners()
	got[0] = "mallory"
	assert.Equal(t, []string{"contoso"}, entry.Owners())
}

func TestEntryEqual(t *testing.T) {
	a, err := trust.NewEntry(trust.SHA256, sha256Hex("leaf"), "contoso")
	require.NoError(t, err)
	b, err := trust.NewEntry(trust.SHA256, strings.ToUpper(sha256Hex("leaf")), "contoso")
	require.NoError(t, err)
	c, err := trust.NewEntry(trust.SHA256, sha256Hex("leaf"), "fabrikam")
	require.NoError(t, err)
	d, err := trust.NewEntry(trust.SHA256, sha256Hex("other"), "contoso")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.False(t, a.Equal(trust.Entry{}))
}

func TestEntryJSONRoundTrip(t *testing.T) {
	entry, err := trust.NewEntry(trust.SHA384, sha256Hex("a")+sha256Hex("b")[:32], "contoso")
	require.NoError(t, err)

	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"hashAlgorithm":"sha384"`)

	var back trust.Entry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, entry.Equal(back))
}

func TestEntryJSONRejectsInvalid(t *testing.T) {
	var entry trust.Entry

	err := json.Unmarshal([]byte(`{"fingerprint":"abc","hashAlgorithm":"sha256"}`), &entry)
	assert.ErrorIs(t, err, trust.ErrInvalidFingerprint)

	err = json.Unmarshal([]byte(`{"fingerprint":"`+sha256Hex("x")+`","hashAlgorithm":"md5"}`), &entry)
	assert.ErrorIs(t, err, trust.ErrUnknownHashAlgorithm)

	err = json.Unmarshal([]byte(`{`), &entry)
	assert.Error(t, err)
}
