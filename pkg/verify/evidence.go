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

// Package verify evaluates signature evidence against a verification policy.
// The package is the policy-decision surface only: the facts in an Evidence
// value (is the package signed, is the certificate trusted, did the
// timestamps check out) are computed by external collaborators, and this
// package decides per checkpoint whether the policy hard-fails, soft-warns,
// or accepts them.
package verify

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/packsig/packsig-go/pkg/policy"
)

var ErrInvalidSignatureType = errors.New("invalid signature type")
var ErrInvalidRevocationStatus = errors.New("invalid revocation status")

// SignatureType identifies the kind of signature an Evidence describes.
type SignatureType int

const (
	SignatureTypeUnknown SignatureType = iota
	SignatureTypeAuthor
	SignatureTypeRepository
)

func (t SignatureType) String() string {
	switch t {
	case SignatureTypeUnknown:
		return "unknown"
	case SignatureTypeAuthor:
		return "author"
	case SignatureTypeRepository:
		return "repository"
	default:
		return fmt.Sprintf("invalid(%d)", int(t))
	}
}

// VerificationTarget maps the signature type onto the policy target bit that
// selects it. Unknown signatures map to TargetNone and are selected by no
// policy.
func (t SignatureType) VerificationTarget() policy.VerificationTarget {
	switch t {
	case SignatureTypeAuthor:
		return policy.TargetAuthor
	case SignatureTypeRepository:
		return policy.TargetRepository
	default:
		return policy.TargetNone
	}
}

func ParseSignatureType(name string) (SignatureType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "unknown":
		return SignatureTypeUnknown, nil
	case "author":
		return SignatureTypeAuthor, nil
	case "repository":
		return SignatureTypeRepository, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSignatureType, name)
	}
}

func (t SignatureType) MarshalText() ([]byte, error) {
	switch t {
	case SignatureTypeUnknown, SignatureTypeAuthor, SignatureTypeRepository:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidSignatureType, int(t))
	}
}

func (t *SignatureType) UnmarshalText(text []byte) error {
	parsed, err := ParseSignatureType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// RevocationStatus is the outcome of an external revocation check. The zero
// value is deliberately Unknown: evidence that never mentions revocation must
// not read as a clean result.
type RevocationStatus int

const (
	RevocationStatusUnknown RevocationStatus = iota
	RevocationStatusGood
	RevocationStatusRevoked
)

func (r RevocationStatus) String() string {
	switch r {
	case RevocationStatusUnknown:
		return "unknown"
	case RevocationStatusGood:
		return "good"
	case RevocationStatusRevoked:
		return "revoked"
	default:
		return fmt.Sprintf("invalid(%d)", int(r))
	}
}

func ParseRevocationStatus(name string) (RevocationStatus, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "unknown":
		return RevocationStatusUnknown, nil
	case "good":
		return RevocationStatusGood, nil
	case "revoked":
		return RevocationStatusRevoked, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidRevocationStatus, name)
	}
}

func (r RevocationStatus) MarshalText() ([]byte, error) {
	switch r {
	case RevocationStatusUnknown, RevocationStatusGood, RevocationStatusRevoked:
		return []byte(r.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidRevocationStatus, int(r))
	}
}

func (r *RevocationStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseRevocationStatus(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Evidence is the set of externally observed facts about one signature,
// ready for policy evaluation. Countersignature marks evidence describing a
// repository countersignature rather than the primary signature.
type Evidence struct {
	Signed             bool             `json:"signed"`
	Type               SignatureType    `json:"signatureType"`
	Countersignature   bool             `json:"countersignature"`
	Conformant         bool             `json:"conformant"`
	Trusted            bool             `json:"trusted"`
	TimestampCount     int              `json:"timestampCount"`
	TimestampsVerified bool             `json:"timestampsVerified"`
	Revocation         RevocationStatus `json:"revocationStatus"`
}

// Placement returns the slot the evidence's signature occupies.
func (e Evidence) Placement() policy.SignaturePlacement {
	if e.Countersignature {
		return policy.PlacementCountersignature
	}
	return policy.PlacementPrimarySignature
}

// Outcome is the overall result of an evaluation, ordered by severity:
// OutcomeAccept < OutcomeWarn < OutcomeFail.
type Outcome int

const (
	OutcomeAccept Outcome = iota
	OutcomeWarn
	OutcomeFail
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccept:
		return "accept"
	case OutcomeWarn:
		return "warn"
	case OutcomeFail:
		return "fail"
	default:
		return fmt.Sprintf("invalid(%d)", int(o))
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Checkpoint names the policy decision points of one evaluation.
type Checkpoint int

const (
	CheckpointRepositoryAllowList Checkpoint = iota
	CheckpointClientAllowList
	CheckpointSignaturePresence
	CheckpointSignaturePlacement
	CheckpointSignatureConformance
	CheckpointTrust
	CheckpointTimestamp
	CheckpointRevocation
)

func (c Checkpoint) String() string {
	switch c {
	case CheckpointRepositoryAllowList:
		return "repositoryAllowList"
	case CheckpointClientAllowList:
		return "clientAllowList"
	case CheckpointSignaturePresence:
		return "signaturePresence"
	case CheckpointSignaturePlacement:
		return "signaturePlacement"
	case CheckpointSignatureConformance:
		return "signatureConformance"
	case CheckpointTrust:
		return "trust"
	case CheckpointTimestamp:
		return "timestamp"
	case CheckpointRevocation:
		return "revocation"
	default:
		return fmt.Sprintf("invalid(%d)", int(c))
	}
}

func (c Checkpoint) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Issue is one checkpoint finding: which decision point flagged and why.
type Issue struct {
	Checkpoint Checkpoint
	Err        error
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s: %s", i.Checkpoint, i.Err)
}

func (i Issue) Unwrap() error {
	return i.Err
}

func (i Issue) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Checkpoint Checkpoint `json:"checkpoint"`
		Error      string     `json:"error"`
	}{
		Checkpoint: i.Checkpoint,
		Error:      i.Err.Error(),
	})
}

// Result is the evaluation verdict: the worst outcome across checkpoints plus
// every hard failure and downgraded warning, in checkpoint order.
type Result struct {
	Outcome  Outcome `json:"outcome"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Err returns the hard failures joined into a single verification error, or
// nil when the evaluation produced none. Warnings never surface through Err.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, issue := range r.Errors {
		errs[i] = issue
	}
	return NewVerificationError(errors.Join(errs...))
}
