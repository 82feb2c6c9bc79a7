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

// Package trust models the certificate allow lists a verification policy
// carries: opaque trust records identified by certificate fingerprint,
// grouped into immutable ordered lists. The package performs no certificate
// parsing or chain building; it only owns the records a verification engine
// matches signing certificates against.
package trust

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrUnknownHashAlgorithm = errors.New("unknown hash algorithm")
var ErrInvalidFingerprint = errors.New("invalid fingerprint")

// HashAlgorithm identifies the digest algorithm a certificate fingerprint was
// computed with.
type HashAlgorithm int

const (
	SHA256 HashAlgorithm = iota
	SHA384
	SHA512
)

// hexSize returns the length of a hex-encoded digest for the algorithm, or
// zero when the algorithm is out of domain.
func (a HashAlgorithm) hexSize() int {
	switch a {
	case SHA256:
		return 64
	case SHA384:
		return 96
	case SHA512:
		return 128
	default:
		return 0
	}
}

func (a HashAlgorithm) String() string {
	switch a {
	case SHA256:
		return "sha256"
	case SHA384:
		return "sha384"
	case SHA512:
		return "sha512"
	default:
		return fmt.Sprintf("unknown(%d)", int(a))
	}
}

// ParseHashAlgorithm maps a textual algorithm name onto a HashAlgorithm.
// Names are matched case-insensitively and an optional dash is accepted, so
// both "sha256" and "SHA-256" parse.
func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "") {
	case "sha256":
		return SHA256, nil
	case "sha384":
		return SHA384, nil
	case "sha512":
		return SHA512, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownHashAlgorithm, name)
	}
}

func (a HashAlgorithm) MarshalText() ([]byte, error) {
	if a.hexSize() == 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHashAlgorithm, int(a))
	}
	return []byte(a.String()), nil
}

func (a *HashAlgorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseHashAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Entry is a single allow-list record: one certificate, identified by the
// fingerprint of its DER encoding, trusted to sign packages. Owners are
// optional metadata naming the accounts the certificate is trusted for.
// Entries are immutable once constructed.
type Entry struct {
	fingerprint string
	algorithm   HashAlgorithm
	owners      []string
}

// NewEntry builds an allow-list entry from a hex-encoded certificate
// fingerprint. The fingerprint is normalized to lower case and must decode as
// hex with exactly the digest size of the given algorithm. The owners slice
// is copied, so the caller may reuse or mutate its own copy afterwards.
func NewEntry(algorithm HashAlgorithm, fingerprint string, owners ...string) (Entry, error) {
	size := algorithm.hexSize()
	if size == 0 {
		return Entry{}, fmt.Errorf("%w: %d", ErrUnknownHashAlgorithm, int(algorithm))
	}

	normalized := strings.ToLower(strings.TrimSpace(fingerprint))
	if len(normalized) != size {
		return Entry{}, fmt.Errorf("%w: %s fingerprints are %d hex characters, got %d", ErrInvalidFingerprint, algorithm, size, len(normalized))
	}
	if _, err := hex.DecodeString(normalized); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidFingerprint, err)
	}

	entry := Entry{fingerprint: normalized, algorithm: algorithm}
	if len(owners) > 0 {
		entry.owners = slices.Clone(owners)
	}
	return entry, nil
}

// Fingerprint returns the lower-case hex fingerprint the entry was built with.
func (e Entry) Fingerprint() string {
	return e.fingerprint
}

func (e Entry) Algorithm() HashAlgorithm {
	return e.algorithm
}

// Owners returns a copy of the owner metadata; the entry's own copy cannot be
// reached through the return value.
func (e Entry) Owners() []string {
	return slices.Clone(e.owners)
}

// Matches reports whether the given fingerprint identifies this entry.
// Matching is case-insensitive so that fingerprints copied out of certificate
// tooling compare equal regardless of hex case.
func (e Entry) Matches(fingerprint string) bool {
	return e.fingerprint != "" && strings.EqualFold(e.fingerprint, strings.TrimSpace(fingerprint))
}

func (e Entry) Equal(other Entry) bool {
	return e.fingerprint == other.fingerprint &&
		e.algorithm == other.algorithm &&
		slices.Equal(e.owners, other.owners)
}

type entryJSON struct {
	Fingerprint   string        `json:"fingerprint"`
	HashAlgorithm HashAlgorithm `json:"hashAlgorithm"`
	Owners        []string      `json:"owners,omitempty"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		Fingerprint:   e.fingerprint,
		HashAlgorithm: e.algorithm,
		Owners:        e.owners,
	})
}

// UnmarshalJSON rebuilds the entry through NewEntry so that a decoded entry
// passes the same validation as a constructed one.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	entry, err := NewEntry(raw.HashAlgorithm, raw.Fingerprint, raw.Owners...)
	if err != nil {
		return err
	}
	*e = entry
	return nil
}
