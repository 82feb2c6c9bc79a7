// Copyright 2026 The Packsig Authors.
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

// Package tsa mints real RFC 3161 timestamp responses from a throwaway
// self-signed authority, for use in tests only.
package tsa

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"time"

	"github.com/digitorus/timestamp"
)

// Authority is a single self-signed timestamping certificate plus its key.
type Authority struct {
	cert *x509.Certificate
	key  *ecdsa.PrivateKey
}

// New generates a fresh timestamping authority. The certificate carries the
// timestamping EKU as a critical extension, as RFC 3161 requires of TSA
// certificates.
func New() (*Authority, error) {
	timestampExt, err := asn1.Marshal([]asn1.ObjectIdentifier{{1, 3, 6, 1, 5, 5, 7, 3, 8}})
	if err != nil {
		return nil, err
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName:   "packsig-test-tsa",
			Organization: []string{"packsig"},
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageTimeStamping},
		BasicConstraintsValid: true,
		ExtraExtensions: []pkix.Extension{
			{
				Id:       asn1.ObjectIdentifier{2, 5, 29, 37},
				Critical: true,
				Value:    timestampExt,
			},
		},
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}

	return &Authority{cert: cert, key: key}, nil
}

func (a *Authority) Certificate() *x509.Certificate {
	return a.cert
}

// Response issues a timestamp response over the given message, attesting to
// the given time.
func (a *Authority) Response(message []byte, at time.Time) ([]byte, error) {
	tsq, err := timestamp.CreateRequest(bytes.NewReader(message), &timestamp.RequestOptions{
		Hash: crypto.SHA256,
	})
	if err != nil {
		return nil, err
	}

	req, err := timestamp.ParseRequest(tsq)
	if err != nil {
		return nil, err
	}

	template := timestamp.Timestamp{
		HashAlgorithm:   req.HashAlgorithm,
		HashedMessage:   req.HashedMessage,
		Time:            at,
		Policy:          asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 99999, 2},
		Ordering:        false,
		Qualified:       false,
		ExtraExtensions: req.Extensions,
	}

	return template.CreateResponse(a.cert, a.key)
}
