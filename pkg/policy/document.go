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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"golang.org/x/mod/semver"

	"github.com/packsig/packsig-go/pkg/trust"
)

// PolicyMediaType01 is the media type of the serialized policy document.
// The version suffix gates parsing: documents from a newer incompatible
// schema are rejected rather than half-read.
const PolicyMediaType01 = "application/vnd.packsig.policy+json;version=0.1"

const mediaTypeBase = "application/vnd.packsig.policy+json"

var ErrMalformedDocument = errors.New("malformed policy document")
var ErrUnsupportedMediaType = fmt.Errorf("%w: unsupported media type", ErrMalformedDocument)
var ErrUnsupportedVersion = fmt.Errorf("%w: unsupported document version", ErrMalformedDocument)

// document is the wire shape of a Settings. Relaxations are always emitted so
// a reader never has to know the defaults; allow-lists are omitted when
// absent or empty, which parse back as absent.
type document struct {
	MediaType                string                        `json:"mediaType"`
	AllowUnsigned            bool                          `json:"allowUnsigned"`
	AllowIllegal             bool                          `json:"allowIllegal"`
	AllowUntrusted           bool                          `json:"allowUntrusted"`
	AllowIgnoreTimestamp     bool                          `json:"allowIgnoreTimestamp"`
	AllowMultipleTimestamps  bool                          `json:"allowMultipleTimestamps"`
	AllowNoTimestamp         bool                          `json:"allowNoTimestamp"`
	AllowUnknownRevocation   bool                          `json:"allowUnknownRevocation"`
	AllowNoRepositoryList    bool                          `json:"allowNoRepositoryAllowList"`
	AllowNoClientList        bool                          `json:"allowNoClientAllowList"`
	VerificationTarget       VerificationTarget            `json:"verificationTarget"`
	SignaturePlacement       SignaturePlacement            `json:"signaturePlacement"`
	CountersignatureBehavior SignatureVerificationBehavior `json:"countersignatureBehavior"`
	RepositoryAllowList      []trust.Entry                 `json:"repositoryAllowList,omitempty"`
	ClientAllowList          []trust.Entry                 `json:"clientAllowList,omitempty"`
}

// MarshalJSON emits the versioned policy document.
func (s *Settings) MarshalJSON() ([]byte, error) {
	return json.Marshal(document{
		MediaType:                PolicyMediaType01,
		AllowUnsigned:            s.allowUnsigned,
		AllowIllegal:             s.allowIllegal,
		AllowUntrusted:           s.allowUntrusted,
		AllowIgnoreTimestamp:     s.allowIgnoreTimestamp,
		AllowMultipleTimestamps:  s.allowMultipleTimestamps,
		AllowNoTimestamp:         s.allowNoTimestamp,
		AllowUnknownRevocation:   s.allowUnknownRevocation,
		AllowNoRepositoryList:    s.allowNoRepositoryList,
		AllowNoClientList:        s.allowNoClientList,
		VerificationTarget:       s.verificationTarget,
		SignaturePlacement:       s.signaturePlacement,
		CountersignatureBehavior: s.countersignatureBehavior,
		RepositoryAllowList:      s.repositoryAllowList.Entries(),
		ClientAllowList:          s.clientAllowList.Entries(),
	})
}

// ParseSettings decodes a policy document, gates on its media type and
// version, and reconstructs the Settings through the same validation as New.
// The round trip ParseSettings(json.Marshal(s)) yields a Settings equal to s.
func ParseSettings(data []byte) (*Settings, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	if err := checkMediaType(doc.MediaType); err != nil {
		return nil, err
	}

	opts := []Option{
		WithVerificationTarget(doc.VerificationTarget),
		WithSignaturePlacement(doc.SignaturePlacement),
		WithCountersignatureBehavior(doc.CountersignatureBehavior),
	}
	if doc.AllowUnsigned {
		opts = append(opts, WithUnsignedAllowed())
	}
	if doc.AllowIllegal {
		opts = append(opts, WithIllegalAllowed())
	}
	if doc.AllowUntrusted {
		opts = append(opts, WithUntrustedAllowed())
	}
	if doc.AllowIgnoreTimestamp {
		opts = append(opts, WithIgnoreTimestampAllowed())
	}
	if doc.AllowMultipleTimestamps {
		opts = append(opts, WithMultipleTimestampsAllowed())
	}
	if doc.AllowNoTimestamp {
		opts = append(opts, WithNoTimestampAllowed())
	}
	if doc.AllowUnknownRevocation {
		opts = append(opts, WithUnknownRevocationAllowed())
	}
	if doc.AllowNoRepositoryList {
		opts = append(opts, WithNoRepositoryAllowListAllowed())
	}
	if doc.AllowNoClientList {
		opts = append(opts, WithNoClientAllowListAllowed())
	}
	if len(doc.RepositoryAllowList) > 0 {
		opts = append(opts, WithRepositoryAllowList(trust.NewAllowList(doc.RepositoryAllowList...)))
	}
	if len(doc.ClientAllowList) > 0 {
		opts = append(opts, WithClientAllowList(trust.NewAllowList(doc.ClientAllowList...)))
	}

	return New(opts...)
}

// checkMediaType accepts the base media type with any version of the current
// minor line; versions at or above the next minor carry fields this parser
// does not understand.
func checkMediaType(mediaType string) error {
	parts := strings.Split(mediaType, ";version=")
	if len(parts) != 2 || parts[0] != mediaTypeBase {
		return fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mediaType)
	}

	version := "v" + parts[1]
	if !semver.IsValid(version) {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, parts[1])
	}
	if semver.Compare(version, "v0.1") < 0 || semver.Compare(version, "v0.2") >= 0 {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, parts[1])
	}
	return nil
}

// Canonical returns the policy document in RFC 8785 canonical JSON form.
// Canonicalization makes the bytes independent of field order and encoder
// details, so they are a stable input for digesting.
func (s *Settings) Canonical() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return jsoncanonicalizer.Transform(data)
}

// Digest returns the lower-case hex SHA-256 of the canonical document. Two
// settings are Equal exactly when their digests match, so the digest can pin
// a policy in audit logs or change detection.
func (s *Settings) Digest() (string, error) {
	canonical, err := s.Canonical()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
