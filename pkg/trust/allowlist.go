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

package trust

import (
	"encoding/json"
	"slices"
	"strings"
)

// AllowList is an immutable ordered collection of trusted certificate
// entries. A nil *AllowList behaves exactly like an empty one, so callers
// can pass nil to mean "no allow list" without guarding every access.
type AllowList struct {
	entries []Entry
}

// NewAllowList builds an allow list from the given entries. The slice is
// copied; later mutation of the caller's slice does not reach the list.
func NewAllowList(entries ...Entry) *AllowList {
	list := &AllowList{}
	if len(entries) > 0 {
		list.entries = slices.Clone(entries)
	}
	return list
}

func (l *AllowList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

func (l *AllowList) IsEmpty() bool {
	return l.Len() == 0
}

// Entries returns a copy of the list's entries in insertion order, or nil
// when the list is nil or empty.
func (l *AllowList) Entries() []Entry {
	if l.Len() == 0 {
		return nil
	}
	return slices.Clone(l.entries)
}

// Lookup returns the first entry matching the given fingerprint. Matching is
// case-insensitive, same as Entry.Matches.
func (l *AllowList) Lookup(fingerprint string) (Entry, bool) {
	if l == nil {
		return Entry{}, false
	}
	needle := strings.TrimSpace(fingerprint)
	for _, entry := range l.entries {
		if entry.Matches(needle) {
			return entry, true
		}
	}
	return Entry{}, false
}

// Equal reports whether both lists hold the same entries in the same order.
// A nil list equals an empty one.
func (l *AllowList) Equal(other *AllowList) bool {
	if l.Len() != other.Len() {
		return false
	}
	for i := range l.Len() {
		if !l.entries[i].Equal(other.entries[i]) {
			return false
		}
	}
	return true
}

func (l *AllowList) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Entries())
}

func (l *AllowList) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*l = *NewAllowList(entries...)
	return nil
}
