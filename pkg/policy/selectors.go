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
)

var ErrInvalidTarget = errors.New("invalid verification target")
var ErrInvalidPlacement = errors.New("invalid signature placement")
var ErrInvalidBehavior = errors.New("invalid countersignature verification behavior")

// VerificationTarget selects which signature kinds a verification pass must
// examine. It is a bitset: TargetAll is the union of TargetAuthor and
// TargetRepository, and TargetNone selects nothing.
type VerificationTarget int

const (
	TargetNone       VerificationTarget = 0
	TargetAuthor     VerificationTarget = 1 << 0
	TargetRepository VerificationTarget = 1 << 1
	TargetAll                           = TargetAuthor | TargetRepository
)

// Has reports whether every bit of t is selected by the target.
func (v VerificationTarget) Has(t VerificationTarget) bool {
	return v&t == t && t != TargetNone
}

// Validate rejects values outside the closed bitset domain.
func (v VerificationTarget) Validate() error {
	if v < TargetNone || v > TargetAll {
		return fmt.Errorf("%w: %d", ErrInvalidTarget, int(v))
	}
	return nil
}

func (v VerificationTarget) String() string {
	switch v {
	case TargetNone:
		return "none"
	case TargetAuthor:
		return "author"
	case TargetRepository:
		return "repository"
	case TargetAll:
		return "all"
	default:
		return fmt.Sprintf("invalid(%d)", int(v))
	}
}

// ParseVerificationTarget maps a textual target name onto its value. Names
// are matched case-insensitively.
func ParseVerificationTarget(name string) (VerificationTarget, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none":
		return TargetNone, nil
	case "author":
		return TargetAuthor, nil
	case "repository":
		return TargetRepository, nil
	case "all":
		return TargetAll, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidTarget, name)
	}
}

func (v VerificationTarget) MarshalText() ([]byte, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return []byte(v.String()), nil
}

func (v *VerificationTarget) UnmarshalText(text []byte) error {
	parsed, err := ParseVerificationTarget(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// SignaturePlacement selects where a qualifying signature may legally reside
// within a package. It is a bitset over the primary signature slot and the
// countersignature slot; the zero value is out of domain because a policy
// that permits no placement at all is meaningless.
type SignaturePlacement int

const (
	PlacementPrimarySignature SignaturePlacement = 1 << 0
	PlacementCountersignature SignaturePlacement = 1 << 1
	PlacementAny                                 = PlacementPrimarySignature | PlacementCountersignature
)

// Permits reports whether every bit of p is permitted by the placement.
func (s SignaturePlacement) Permits(p SignaturePlacement) bool {
	return s&p == p && p != 0
}

// Validate rejects the zero value and values outside the closed bitset domain.
func (s SignaturePlacement) Validate() error {
	if s <= 0 || s > PlacementAny {
		return fmt.Errorf("%w: %d", ErrInvalidPlacement, int(s))
	}
	return nil
}

func (s SignaturePlacement) String() string {
	switch s {
	case PlacementPrimarySignature:
		return "primary"
	case PlacementCountersignature:
		return "countersignature"
	case PlacementAny:
		return "any"
	default:
		return fmt.Sprintf("invalid(%d)", int(s))
	}
}

// ParseSignaturePlacement maps a textual placement name onto its value.
// Names are matched case-insensitively.
func ParseSignaturePlacement(name string) (SignaturePlacement, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "primary", "primarysignature":
		return PlacementPrimarySignature, nil
	case "countersignature":
		return PlacementCountersignature, nil
	case "any":
		return PlacementAny, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPlacement, name)
	}
}

func (s SignaturePlacement) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

func (s *SignaturePlacement) UnmarshalText(text []byte) error {
	parsed, err := ParseSignaturePlacement(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SignatureVerificationBehavior selects when a repository countersignature
// must be checked. The variants are ordered by strictness:
//
//	BehaviorNever < BehaviorIfExists < BehaviorIfExistsAndIsNecessary < BehaviorAlways
//
// so ordinary integer comparison answers "is a stricter than b".
type SignatureVerificationBehavior int

const (
	BehaviorNever SignatureVerificationBehavior = iota
	BehaviorIfExists
	BehaviorIfExistsAndIsNecessary
	BehaviorAlways
)

// Validate rejects values outside the closed ordered domain.
func (b SignatureVerificationBehavior) Validate() error {
	if b < BehaviorNever || b > BehaviorAlways {
		return fmt.Errorf("%w: %d", ErrInvalidBehavior, int(b))
	}
	return nil
}

func (b SignatureVerificationBehavior) String() string {
	switch b {
	case BehaviorNever:
		return "never"
	case BehaviorIfExists:
		return "ifExists"
	case BehaviorIfExistsAndIsNecessary:
		return "ifExistsAndIsNecessary"
	case BehaviorAlways:
		return "always"
	default:
		return fmt.Sprintf("invalid(%d)", int(b))
	}
}

// ParseSignatureVerificationBehavior maps a textual behavior name onto its
// value. Names are matched case-insensitively.
func ParseSignatureVerificationBehavior(name string) (SignatureVerificationBehavior, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "never":
		return BehaviorNever, nil
	case "ifexists":
		return BehaviorIfExists, nil
	case "ifexistsandisnecessary":
		return BehaviorIfExistsAndIsNecessary, nil
	case "always":
		return BehaviorAlways, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidBehavior, name)
	}
}

func (b SignatureVerificationBehavior) MarshalText() ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func (b *SignatureVerificationBehavior) UnmarshalText(text []byte) error {
	parsed, err := ParseSignatureVerificationBehavior(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
