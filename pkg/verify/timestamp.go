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
	"bytes"
	"fmt"
	"time"

	"github.com/digitorus/timestamp"

	"github.com/packsig/packsig-go/pkg/limits"
)

// TimestampEvidence summarizes the RFC 3161 responses attached to one
// signature: how many there are and the times they attest to. It feeds
// Evidence.TimestampCount; whether the responses verify against a trusted
// authority is an external collaborator's finding.
type TimestampEvidence struct {
	Count int
	Times []time.Time
}

// ParseTimestamps summarizes raw RFC 3161 timestamp responses. It bounds the
// number of responses and rejects byte-identical duplicates, since a
// duplicated response could otherwise masquerade as independent timestamp
// evidence. No signature or certificate checking happens here; responses that
// do not parse are rejected outright.
func ParseTimestamps(responses [][]byte) (TimestampEvidence, error) {
	if len(responses) > limits.MaxAllowedTimestamps {
		return TimestampEvidence{}, fmt.Errorf("%w: %d > %d", ErrTooManyTimestamps, len(responses), limits.MaxAllowedTimestamps)
	}

	for i := 0; i < len(responses); i++ {
		for j := i + 1; j < len(responses); j++ {
			if bytes.Equal(responses[i], responses[j]) {
				return TimestampEvidence{}, ErrDuplicateTimestamps
			}
		}
	}

	evidence := TimestampEvidence{Count: len(responses)}
	for i, response := range responses {
		ts, err := timestamp.ParseResponse(response)
		if err != nil {
			return TimestampEvidence{}, fmt.Errorf("parsing timestamp response %d: %w", i, err)
		}
		evidence.Times = append(evidence.Times, ts.Time)
	}

	return evidence, nil
}
