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

package limits

// MaxAllowedTimestamps bounds the number of RFC 3161 timestamp responses
// summarized for one signature; a guard against resource exhaustion from
// hostile input.
const MaxAllowedTimestamps = 32

// MaxAllowedTrustEntries bounds the number of allow-list entries accepted per
// side when loading a trust configuration; a guard against resource
// exhaustion from hostile input.
const MaxAllowedTrustEntries = 1024
