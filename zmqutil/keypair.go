// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"strings"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/notarysync/fault"
)

// key files hold one line: a tag followed by the hex encoded raw key
type keyTag struct {
	prefix  string
	private bool
	invalid error
}

var keyTags = []keyTag{
	{prefix: "PUBLIC:", private: false, invalid: fault.ErrInvalidPublicKeyFile},
	{prefix: "PRIVATE:", private: true, invalid: fault.ErrInvalidPrivateKeyFile},
}

func (tag keyTag) encode(key []byte) string {
	return tag.prefix + hex.EncodeToString(key) + "\n"
}

// NewKeyPair - raw 32 byte public and private keys
func NewKeyPair() ([]byte, []byte, error) {
	// zmq generates keys in Z85 (ZeroMQ Base-85 Encoding) see: http://rfc.zeromq.org/spec:32
	publicKey, privateKey, err := zmq.NewCurveKeypair()
	if nil != err {
		return nil, nil, err
	}
	return []byte(zmq.Z85decode(publicKey)), []byte(zmq.Z85decode(privateKey)), nil
}

// MakeKeyPair - create a new CURVE keypair and write them to separate
// files, neither file may already exist
func MakeKeyPair(publicKeyFileName string, privateKeyFileName string) error {
	if fileExists(publicKeyFileName) || fileExists(privateKeyFileName) {
		return fault.ErrKeyFileAlreadyExists
	}

	publicKey, privateKey, err := NewKeyPair()
	if nil != err {
		return err
	}

	err = ioutil.WriteFile(publicKeyFileName, []byte(keyTags[0].encode(publicKey)), 0666)
	if nil != err {
		return err
	}
	err = ioutil.WriteFile(privateKeyFileName, []byte(keyTags[1].encode(privateKey)), 0600)
	if nil != err {
		os.Remove(publicKeyFileName)
		return err
	}
	return nil
}

// ReadKeyFile - the contents of a key file
func ReadKeyFile(fileName string) (string, error) {
	data, err := ioutil.ReadFile(fileName)
	if nil != err {
		return "", err
	}
	return string(data), nil
}

// ReadPublicKey - raw key from the tagged public form
func ReadPublicKey(key string) ([]byte, error) {
	data, private, err := ParseKey(key)
	if nil != err {
		return nil, err
	}
	if private {
		return nil, fault.ErrInvalidPublicKeyFile
	}
	return data, nil
}

// ReadPrivateKey - raw key from the tagged private form
func ReadPrivateKey(key string) ([]byte, error) {
	data, private, err := ParseKey(key)
	if nil != err {
		return nil, err
	}
	if !private {
		return nil, fault.ErrInvalidPrivateKeyFile
	}
	return data, nil
}

// ParseKey - decode either tagged form, true if private
//
// untagged text is reported as an invalid public key
func ParseKey(data string) ([]byte, bool, error) {
	s := strings.TrimSpace(data)
	for _, tag := range keyTags {
		if !strings.HasPrefix(s, tag.prefix) {
			continue
		}
		key, err := hex.DecodeString(s[len(tag.prefix):])
		if nil != err {
			return nil, false, err
		}
		if keySize != len(key) {
			return nil, false, tag.invalid
		}
		return key, tag.private, nil
	}
	return nil, false, fault.ErrInvalidPublicKeyFile
}

func fileExists(name string) bool {
	_, err := os.Stat(name)
	return nil == err
}
