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

package verify_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packsig/packsig-go/pkg/limits"
	"github.com/packsig/packsig-go/pkg/testing/tsa"
	"github.com/packsig/packsig-go/pkg/verify"
)

func TestParseTimestamps(t *testing.T) {
	authority, err := tsa.New()
	require.NoError(t, err)

	first := time.Now().Add(-time.Hour)
	second := time.Now()

	responses := make([][]byte, 0, 2)
	for i, at := range []time.Time{first, second} {
		response, err := authority.Response([]byte(fmt.Sprintf("signature-%d", i)), at)
		require.NoError(t, err)
		responses = append(responses, response)
	}

	evidence, err := verify.ParseTimestamps(responses)
	require.NoError(t, err)

	assert.Equal(t, 2, evidence.Count)
	require.Len(t, evidence.Times, 2)
	assert.WithinDuration(t, first, evidence.Times[0], time.Second)
	assert.WithinDuration(t, second, evidence.Times[1], time.Second)
}

func TestParseTimestampsEmpty(t *testing.T) {
	evidence, err := verify.ParseTimestamps(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, evidence.Count)
	assert.Empty(t, evidence.Times)
}

func TestParseTimestampsRejectsTooMany(t *testing.T) {
	responses := make([][]byte, limits.MaxAllowedTimestamps+1)
	for i := range responses {
		responses[i] = []byte(fmt.Sprintf("response-%d", i))
	}

	_, err := verify.ParseTimestamps(responses)
	assert.ErrorIs(t, err, verify.ErrTooManyTimestamps)
}

func TestParseTimestampsRejectsDuplicates(t *testing.T) {
	authority, err := tsa.New()
	require.NoError(t, err)
	response, err := authority.Response([]byte("signature"), time.Now())
	require.NoError(t, err)

	_, err = verify.ParseTimestamps([][]byte{response, response})
	assert.ErrorIs(t, err, verify.ErrDuplicateTimestamps)
}

func TestParseTimestampsRejectsGarbage(t *testing.T) {
	_, err := verify.ParseTimestamps([][]byte{[]byte("not a timestamp")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing timestamp response 0")
}
