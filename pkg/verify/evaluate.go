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

package verify

import (
	"fmt"

	"github.com/packsig/packsig-go/pkg/policy"
)

type evaluation struct {
	result Result
}

func (e *evaluation) fail(checkpoint Checkpoint, err error) {
	e.result.Errors = append(e.result.Errors, Issue{Checkpoint: checkpoint, Err: err})
	e.result.Outcome = OutcomeFail
}

func (e *evaluation) warn(checkpoint Checkpoint, err error) {
	e.result.Warnings = append(e.result.Warnings, Issue{Checkpoint: checkpoint, Err: err})
	if e.result.Outcome < OutcomeWarn {
		e.result.Outcome = OutcomeWarn
	}
}

// relaxed routes one violated condition: the relaxation downgrades it to a
// warning, otherwise it is a hard failure.
func (e *evaluation) relaxed(allowed bool, checkpoint Checkpoint, err error) {
	if allowed {
		e.warn(checkpoint, err)
		return
	}
	e.fail(checkpoint, err)
}

// Evaluate checks the evidence for one signature against the policy and
// reports, per checkpoint, whether the policy accepts, downgrades, or refuses
// what was observed. The settings object is the single source of truth: no
// failure category is suppressed or enforced for any other reason.
//
// Checkpoints run in a fixed order: allow-list presence on both sides,
// signature presence, placement, conformance, trust-chain membership,
// timestamps, revocation. An unsigned package short-circuits after the
// presence checkpoint because no later checkpoint has evidence to judge.
func Evaluate(settings *policy.Settings, evidence Evidence) *Result {
	eval := &evaluation{result: Result{Outcome: OutcomeAccept}}

	// Allow-list presence is a property of the policy alone. This is where a
	// policy that denies the no-list relaxation without supplying a list
	// surfaces as unusable.
	if settings.RepositoryAllowList().IsEmpty() && !settings.AllowsNoRepositoryAllowList() {
		eval.fail(CheckpointRepositoryAllowList, ErrNoRepositoryAllowList)
	}
	if settings.ClientAllowList().IsEmpty() && !settings.AllowsNoClientAllowList() {
		eval.fail(CheckpointClientAllowList, ErrNoClientAllowList)
	}

	if !evidence.Signed {
		if !settings.AllowsUnsigned() {
			eval.fail(CheckpointSignaturePresence, ErrUnsigned)
		}
		return &eval.result
	}

	if placement := evidence.Placement(); !settings.SignaturePlacement().Permits(placement) {
		eval.fail(CheckpointSignaturePlacement,
			fmt.Errorf("%w: %s signature under %s policy", ErrSignaturePlacement, placement, settings.SignaturePlacement()))
	}

	if !evidence.Conformant {
		eval.relaxed(settings.AllowsIllegal(), CheckpointSignatureConformance, ErrIllegal)
	}

	// Trust only applies to signature kinds the policy targets; an author
	// policy has no opinion about a repository signature's certificate.
	if settings.VerificationTarget().Has(evidence.Type.VerificationTarget()) && !evidence.Trusted {
		eval.relaxed(settings.AllowsUntrusted(), CheckpointTrust, ErrUntrusted)
	}

	evaluateTimestamps(settings, evidence, eval)

	switch evidence.Revocation {
	case RevocationStatusRevoked:
		// No relaxation covers an affirmatively revoked certificate.
		eval.fail(CheckpointRevocation, ErrRevoked)
	case RevocationStatusGood:
	default:
		// Anything short of an affirmative good result is inconclusive.
		eval.relaxed(settings.AllowsUnknownRevocation(), CheckpointRevocation, ErrUnknownRevocation)
	}

	return &eval.result
}

func evaluateTimestamps(settings *policy.Settings, evidence Evidence, eval *evaluation) {
	switch {
	case evidence.TimestampCount == 0:
		eval.relaxed(settings.AllowsNoTimestamp(), CheckpointTimestamp, ErrNoTimestamp)
		return
	case evidence.TimestampCount > 1 && !settings.AllowsMultipleTimestamps():
		eval.fail(CheckpointTimestamp,
			fmt.Errorf("%w: %d", ErrMultipleTimestamps, evidence.TimestampCount))
	}

	if !evidence.TimestampsVerified {
		eval.relaxed(settings.AllowsIgnoreTimestamp(), CheckpointTimestamp, ErrTimestampNotVerified)
	}
}

// ShouldVerifyCountersignature answers whether a repository countersignature
// must be checked under the given behavior. The exists flag reports whether a
// countersignature is present; necessary reports whether the primary
// signature alone did not satisfy the policy (for example its certificate is
// not in the allow-list but the countersignature's might be).
//
// BehaviorAlways with no countersignature present is the one combination that
// cannot be answered: verification is mandatory but impossible, reported as
// ErrCountersignatureRequired.
func ShouldVerifyCountersignature(behavior policy.SignatureVerificationBehavior, exists, necessary bool) (bool, error) {
	if err := behavior.Validate(); err != nil {
		return false, err
	}

	switch behavior {
	case policy.BehaviorNever:
		return false, nil
	case policy.BehaviorIfExists:
		return exists, nil
	case policy.BehaviorIfExistsAndIsNecessary:
		return exists && necessary, nil
	default: // policy.BehaviorAlways
		if !exists {
			return false, ErrCountersignatureRequired
		}
		return true, nil
	}
}
