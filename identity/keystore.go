// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"crypto/rand"
	"encoding/json"
	"io/ioutil"
	"os"

	"github.com/bitmark-inc/go-argon2"
	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/bitmark-inc/notarysync/fault"
)

const (
	saltLength  = 32
	nonceLength = 24
	keyLength   = 32
)

// Keystore - a private key sealed under a passphrase
type Keystore struct {
	PublicKey []byte `json:"public_key"`
	Salt      []byte `json:"salt"`
	Nonce     []byte `json:"nonce"`
	Sealed    []byte `json:"sealed"`
}

// Seal - encrypt a private key under password
func Seal(privateKey ed25519.PrivateKey, password string) (*Keystore, error) {
	if ed25519.PrivateKeySize != len(privateKey) {
		return nil, fault.ErrInvalidPrivateKey
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); nil != err {
		return nil, err
	}
	nonce := [nonceLength]byte{}
	if _, err := rand.Read(nonce[:]); nil != err {
		return nil, err
	}

	key, err := generateKey(password, salt)
	if nil != err {
		return nil, err
	}

	publicKey := privateKey.Public().(ed25519.PublicKey)

	return &Keystore{
		PublicKey: append([]byte{}, publicKey...),
		Salt:      salt,
		Nonce:     nonce[:],
		Sealed:    secretbox.Seal(nil, privateKey, &nonce, key),
	}, nil
}

// Open - recover the private key
func (k *Keystore) Open(password string) (ed25519.PrivateKey, error) {
	if nonceLength != len(k.Nonce) || saltLength != len(k.Salt) {
		return nil, fault.ErrInvalidPrivateKey
	}
	nonce := [nonceLength]byte{}
	copy(nonce[:], k.Nonce)

	key, err := generateKey(password, k.Salt)
	if nil != err {
		return nil, err
	}

	privateKey, ok := secretbox.Open(nil, k.Sealed, &nonce, key)
	if !ok {
		return nil, fault.ErrWrongPassword
	}
	if ed25519.PrivateKeySize != len(privateKey) {
		return nil, fault.ErrInvalidPrivateKey
	}

	// the sealed key must belong to the recorded public key
	derived := ed25519.PrivateKey(privateKey).Public().(ed25519.PublicKey)
	if !derived.Equal(ed25519.PublicKey(k.PublicKey)) {
		return nil, fault.ErrInvalidPrivateKey
	}
	return privateKey, nil
}

// LoadKeystore - read a keystore file
func LoadKeystore(fileName string) (*Keystore, error) {
	data, err := ioutil.ReadFile(fileName)
	if os.IsNotExist(err) {
		return nil, fault.ErrKeystoreNotFound
	}
	if nil != err {
		return nil, err
	}
	k := &Keystore{}
	err = json.Unmarshal(data, k)
	if nil != err {
		return nil, err
	}
	return k, nil
}

// Save - write a keystore file readable only by the owner
func (k *Keystore) Save(fileName string) error {
	data, err := json.MarshalIndent(k, "", "  ")
	if nil != err {
		return err
	}
	return ioutil.WriteFile(fileName, data, 0600)
}

func generateKey(password string, salt []byte) (*[keyLength]byte, error) {
	ctx := &argon2.Context{
		Iterations:  5,
		Memory:      1 << 16,
		Parallelism: 4,
		HashLen:     keyLength,
		Mode:        argon2.ModeArgon2i,
		Version:     argon2.Version13,
	}

	hash, err := argon2.Hash(ctx, []byte(password), salt)
	if nil != err {
		return nil, err
	}
	key := [keyLength]byte{}
	copy(key[:], hash)
	return &key, nil
}
