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

package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/packsig/packsig-go/pkg/trust"
)

var ErrUnknownMode = errors.New("unknown verification mode")

// Mode is the client-configuration switch selecting between the accept-mode
// and require-mode presets.
type Mode int

const (
	// ModeAccept is best-effort consumption: absence of a valid signature
	// does not block installation.
	ModeAccept Mode = iota
	// ModeRequire is the strict trust gate: signature presence and trust are
	// mandatory.
	ModeRequire
)

func (m Mode) String() string {
	switch m {
	case ModeAccept:
		return "accept"
	case ModeRequire:
		return "require"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ParseMode maps a textual mode name onto a Mode. Names are matched
// case-insensitively.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "accept":
		return ModeAccept, nil
	case "require":
		return ModeRequire, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	switch m {
	case ModeAccept, ModeRequire:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// The named presets below are the policy catalogue. Each is a pure function
// of the two optional allow-lists: relaxations and selectors are fixed per
// preset, lists are caller-supplied.
//
//	preset         unsigned illegal untrusted ignoreTS multiTS noTS unknownRev noRepoList noClientList target placement countersig
//	Default        allow    allow   allow     allow    allow   allow allow      allow      allow        all    any       ifExistsAndIsNecessary
//	AcceptMode     allow    allow   allow     allow    allow   allow allow      allow      allow        all    any       ifExistsAndIsNecessary
//	RequireMode    deny     deny    deny      allow    allow   allow allow      deny       deny         all    any       ifExistsAndIsNecessary
//	VerifyCommand  deny     deny    deny      deny     allow   allow allow      allow      allow        all    any       ifExists

// Default returns the default verification policy. It is documented to be
// identical to AcceptModeDefault and delegates to it; both names are kept as
// independent entry points because callers select them for different reasons
// (implicit default versus explicit accept mode).
func Default(repository, client *trust.AllowList) *Settings {
	return AcceptModeDefault(repository, client)
}

// AcceptModeDefault returns the maximally permissive policy: every relaxation
// allowed. Suitable for best-effort consumption where absence of a valid
// signature should not block installation.
func AcceptModeDefault(repository, client *trust.AllowList) *Settings {
	return &Settings{
		allowUnsigned:            true,
		allowIllegal:             true,
		allowUntrusted:           true,
		allowIgnoreTimestamp:     true,
		allowMultipleTimestamps:  true,
		allowNoTimestamp:         true,
		allowUnknownRevocation:   true,
		allowNoRepositoryList:    true,
		allowNoClientList:        true,
		verificationTarget:       TargetAll,
		signaturePlacement:       PlacementAny,
		countersignatureBehavior: BehaviorIfExistsAndIsNecessary,
		repositoryAllowList:      repository,
		clientAllowList:          client,
	}
}

// RequireModeDefault returns the strict trust-gate policy: unsigned,
// non-conformant, and untrusted packages are refused, and an explicit
// allow-list is required on both sides. Timestamp and revocation relaxations
// stay allowed.
func RequireModeDefault(repository, client *trust.AllowList) *Settings {
	return &Settings{
		allowIgnoreTimestamp:     true,
		allowMultipleTimestamps:  true,
		allowNoTimestamp:         true,
		allowUnknownRevocation:   true,
		verificationTarget:       TargetAll,
		signaturePlacement:       PlacementAny,
		countersignatureBehavior: BehaviorIfExistsAndIsNecessary,
		repositoryAllowList:      repository,
		clientAllowList:          client,
	}
}

// VerifyCommandDefault returns the explicit-audit policy: like require mode
// it refuses unsigned, non-conformant, and untrusted packages, additionally
// refuses to ignore timestamp evidence, and checks a repository
// countersignature whenever one exists. Absent allow-lists are tolerated so
// the command works without an organization trust configuration.
func VerifyCommandDefault(repository, client *trust.AllowList) *Settings {
	return &Settings{
		allowMultipleTimestamps:  true,
		allowNoTimestamp:         true,
		allowUnknownRevocation:   true,
		allowNoRepositoryList:    true,
		allowNoClientList:        true,
		verificationTarget:       TargetAll,
		signaturePlacement:       PlacementAny,
		countersignatureBehavior: BehaviorIfExists,
		repositoryAllowList:      repository,
		clientAllowList:          client,
	}
}
