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
	"errors"
	"fmt"
)

// Checkpoint sentinels. Evaluate wraps these into the issues it reports, so
// callers can match on them with errors.Is regardless of the surrounding
// detail text.
var ErrUnsigned = errors.New("package is not signed")
var ErrIllegal = errors.New("signature does not conform to the signing specification")
var ErrUntrusted = errors.New("signing certificate is not in any allow-list")
var ErrSignaturePlacement = errors.New("signature placement is not permitted by policy")
var ErrNoTimestamp = errors.New("signature carries no timestamp")
var ErrMultipleTimestamps = errors.New("signature carries multiple timestamps")
var ErrTimestampNotVerified = errors.New("timestamp evidence was not verified")
var ErrRevoked = errors.New("signing certificate is revoked")
var ErrUnknownRevocation = errors.New("revocation status could not be determined")
var ErrNoRepositoryAllowList = errors.New("no repository allow-list configured")
var ErrNoClientAllowList = errors.New("no client allow-list configured")
var ErrCountersignatureRequired = errors.New("repository countersignature required but absent")

var ErrTooManyTimestamps = errors.New("too many timestamp responses")
var ErrDuplicateTimestamps = errors.New("duplicate timestamp responses")

// ErrVerification aggregates the hard failures of one evaluation.
type ErrVerification struct {
	err error
}

func NewVerificationError(e error) ErrVerification {
	return ErrVerification{e}
}

func (e ErrVerification) Unwrap() error {
	return e.err
}

func (e ErrVerification) String() string {
	return fmt.Sprintf("verification error: %s", e.err.Error())
}

func (e ErrVerification) Error() string {
	return e.String()
}
