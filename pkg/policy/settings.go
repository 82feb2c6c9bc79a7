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

// Package policy models the verification policy for package signature
// checking: an immutable Settings value telling a verification engine which
// trust relaxations are permitted and which are mandatory, plus the named
// presets (accept mode, require mode, verify command) that callers select
// between. The package holds no cryptography and performs no I/O; it is the
// decision contract consumed by a verification engine.
package policy

import (
	"fmt"

	"github.com/packsig/packsig-go/pkg/trust"
)

// Settings is an immutable verification policy: nine boolean relaxations,
// three enumerated selectors, and two optional certificate allow-lists.
// Once constructed it is never mutated, so instances may be shared and read
// concurrently without coordination.
//
// A relaxation permits the verification engine to accept a condition that
// would otherwise be a hard failure. The settings object only records intent;
// cross-checking intent against observed evidence is the engine's job, so
// logically inconsistent combinations (for example denying an absent client
// allow-list while supplying none) construct fine and fail at verification
// time instead.
type Settings struct {
	allowUnsigned            bool
	allowIllegal             bool
	allowUntrusted           bool
	allowIgnoreTimestamp     bool
	allowMultipleTimestamps  bool
	allowNoTimestamp         bool
	allowUnknownRevocation   bool
	allowNoRepositoryList    bool
	allowNoClientList        bool
	verificationTarget       VerificationTarget
	signaturePlacement       SignaturePlacement
	countersignatureBehavior SignatureVerificationBehavior
	repositoryAllowList      *trust.AllowList
	clientAllowList          *trust.AllowList
}

// Option configures a Settings under construction.
type Option func(*Settings) error

// New builds a Settings from the given options. The defaults are the
// strictest selector-compatible policy: every relaxation denied, all
// signature kinds examined (TargetAll), any placement permitted
// (PlacementAny), and countersignature verification when it exists and is
// necessary. Construction fails only when an option carries an out-of-domain
// selector value; everything else is stored verbatim.
func New(opts ...Option) (*Settings, error) {
	settings := &Settings{
		verificationTarget:       TargetAll,
		signaturePlacement:       PlacementAny,
		countersignatureBehavior: BehaviorIfExistsAndIsNecessary,
	}

	for _, opt := range opts {
		if err := opt(settings); err != nil {
			return nil, fmt.Errorf("failed to configure policy settings: %w", err)
		}
	}

	return settings, nil
}

// WithUnsignedAllowed accepts packages with no signature at all.
func WithUnsignedAllowed() Option {
	return func(s *Settings) error {
		s.allowUnsigned = true
		return nil
	}
}

// WithIllegalAllowed accepts signatures that are structurally non-conformant
// to the signing specification.
func WithIllegalAllowed() Option {
	return func(s *Settings) error {
		s.allowIllegal = true
		return nil
	}
}

// WithUntrustedAllowed accepts signatures whose signing certificate is not
// present in any allow-list or trust store.
func WithUntrustedAllowed() Option {
	return func(s *Settings) error {
		s.allowUntrusted = true
		return nil
	}
}

// WithIgnoreTimestampAllowed permits verification to proceed while
// disregarding timestamp evidence.
func WithIgnoreTimestampAllowed() Option {
	return func(s *Settings) error {
		s.allowIgnoreTimestamp = true
		return nil
	}
}

// WithMultipleTimestampsAllowed accepts a signature carrying more than one
// timestamp.
func WithMultipleTimestampsAllowed() Option {
	return func(s *Settings) error {
		s.allowMultipleTimestamps = true
		return nil
	}
}

// WithNoTimestampAllowed accepts a signature carrying zero timestamps.
func WithNoTimestampAllowed() Option {
	return func(s *Settings) error {
		s.allowNoTimestamp = true
		return nil
	}
}

// WithUnknownRevocationAllowed downgrades an inconclusive revocation check to
// a warning rather than a hard failure.
func WithUnknownRevocationAllowed() Option {
	return func(s *Settings) error {
		s.allowUnknownRevocation = true
		return nil
	}
}

// WithNoRepositoryAllowListAllowed accepts an absent or empty repository-side
// allow-list.
func WithNoRepositoryAllowListAllowed() Option {
	return func(s *Settings) error {
		s.allowNoRepositoryList = true
		return nil
	}
}

// WithNoClientAllowListAllowed accepts an absent or empty client-side
// allow-list.
func WithNoClientAllowListAllowed() Option {
	return func(s *Settings) error {
		s.allowNoClientList = true
		return nil
	}
}

// WithVerificationTarget selects which signature kinds must be examined.
func WithVerificationTarget(target VerificationTarget) Option {
	return func(s *Settings) error {
		if err := target.Validate(); err != nil {
			return err
		}
		s.verificationTarget = target
		return nil
	}
}

// WithSignaturePlacement selects where a qualifying signature may reside.
func WithSignaturePlacement(placement SignaturePlacement) Option {
	return func(s *Settings) error {
		if err := placement.Validate(); err != nil {
			return err
		}
		s.signaturePlacement = placement
		return nil
	}
}

// WithCountersignatureBehavior selects when a repository countersignature
// must be checked.
func WithCountersignatureBehavior(behavior SignatureVerificationBehavior) Option {
	return func(s *Settings) error {
		if err := behavior.Validate(); err != nil {
			return err
		}
		s.countersignatureBehavior = behavior
		return nil
	}
}

// WithRepositoryAllowList supplies the trusted repository-side signer
// fingerprints. A nil list means absent, which behaves like empty.
func WithRepositoryAllowList(list *trust.AllowList) Option {
	return func(s *Settings) error {
		s.repositoryAllowList = list
		return nil
	}
}

// WithClientAllowList supplies the trusted client-side signer fingerprints.
// A nil list means absent, which behaves like empty.
func WithClientAllowList(list *trust.AllowList) Option {
	return func(s *Settings) error {
		s.clientAllowList = list
		return nil
	}
}

func (s *Settings) AllowsUnsigned() bool { return s.allowUnsigned }

func (s *Settings) AllowsIllegal() bool { return s.allowIllegal }

func (s *Settings) AllowsUntrusted() bool { return s.allowUntrusted }

func (s *Settings) AllowsIgnoreTimestamp() bool { return s.allowIgnoreTimestamp }

func (s *Settings) AllowsMultipleTimestamps() bool { return s.allowMultipleTimestamps }

func (s *Settings) AllowsNoTimestamp() bool { return s.allowNoTimestamp }

func (s *Settings) AllowsUnknownRevocation() bool { return s.allowUnknownRevocation }

func (s *Settings) AllowsNoRepositoryAllowList() bool { return s.allowNoRepositoryList }

func (s *Settings) AllowsNoClientAllowList() bool { return s.allowNoClientList }

func (s *Settings) VerificationTarget() VerificationTarget { return s.verificationTarget }

func (s *Settings) SignaturePlacement() SignaturePlacement { return s.signaturePlacement }

// CountersignatureBehavior returns when a repository countersignature must be
// checked.
func (s *Settings) CountersignatureBehavior() SignatureVerificationBehavior {
	return s.countersignatureBehavior
}

// RepositoryAllowList returns the repository-side allow-list, possibly nil.
// The list itself is immutable, so handing it out does not break the
// settings' value semantics.
func (s *Settings) RepositoryAllowList() *trust.AllowList { return s.repositoryAllowList }

// ClientAllowList returns the client-side allow-list, possibly nil.
func (s *Settings) ClientAllowList() *trust.AllowList { return s.clientAllowList }

// Equal implements value equality over every field. Nil and empty allow-lists
// compare equal, matching their identical behavior everywhere else.
func (s *Settings) Equal(other *Settings) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.allowUnsigned == other.allowUnsigned &&
		s.allowIllegal == other.allowIllegal &&
		s.allowUntrusted == other.allowUntrusted &&
		s.allowIgnoreTimestamp == other.allowIgnoreTimestamp &&
		s.allowMultipleTimestamps == other.allowMultipleTimestamps &&
		s.allowNoTimestamp == other.allowNoTimestamp &&
		s.allowUnknownRevocation == other.allowUnknownRevocation &&
		s.allowNoRepositoryList == other.allowNoRepositoryList &&
		s.allowNoClientList == other.allowNoClientList &&
		s.verificationTarget == other.verificationTarget &&
		s.signaturePlacement == other.signaturePlacement &&
		s.countersignatureBehavior == other.countersignatureBehavior &&
		s.repositoryAllowList.Equal(other.repositoryAllowList) &&
		s.clientAllowList.Equal(other.clientAllowList)
}
