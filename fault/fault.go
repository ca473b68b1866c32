// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type RecordError GenericError

// classes used by the consensus context
type InvariantError GenericError
type SigningError GenericError
type NetworkError GenericError
type SyncError GenericError
type RejectedError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised    = ExistsError("already initialised")
	ErrAvailableNotIssued    = InvariantError("available number is not issued")
	ErrCancelled             = ProcessError("cancelled")
	ErrCommandRequired       = InvalidError("command is required")
	ErrConfigurationNotTable = InvalidError("configuration did not return a table")
	ErrContextNotFound       = NotFoundError("context not found")
	ErrEngineStopped         = ProcessError("delivery engine stopped")
	ErrIdentityLocked        = SigningError("identity is locked")
	ErrInvalidAddress        = InvalidError("invalid address")
	ErrInvalidBackend        = InvalidError("invalid database backend")
	ErrInvalidCount          = InvalidError("invalid count")
	ErrInvalidIdentifier     = InvalidError("invalid identifier")
	ErrInvalidKeyLength      = InvalidError("invalid key length")
	ErrInvalidLoggerChannel  = InvalidError("invalid logger channel")
	ErrInvalidPasswordLength = InvalidError("invalid password length")
	ErrInvalidPrivateKey     = InvalidError("invalid private key")
	ErrInvalidPrivateKeyFile = InvalidError("invalid private key file")
	ErrInvalidPublicKey      = InvalidError("invalid public key")
	ErrInvalidPublicKeyFile  = InvalidError("invalid public key file")
	ErrInvalidRelationship   = InvalidError("invalid relationship")
	ErrInvalidSignature      = InvalidError("invalid signature")
	ErrInvalidStructPointer  = InvalidError("invalid struct pointer")
	ErrIssueFailed           = InvariantError("issued number missing after insertion")
	ErrKeyFileAlreadyExists  = ExistsError("key file already exists")
	ErrKeystoreNotFound      = NotFoundError("keystore not found")
	ErrMismatchedContext     = RecordError("record belongs to a different context")
	ErrMismatchedNotaryKey   = InvalidError("notary key does not match notary ID")
	ErrMissingParameters     = InvalidError("missing parameters")
	ErrNetworkUnavailable    = NetworkError("network unavailable")
	ErrNoAvailableNumbers    = NotFoundError("no available transaction numbers")
	ErrNotClientToNotary     = InvalidError("relationship is not client to notary")
	ErrNotConnected          = NetworkError("not connected")
	ErrNotInitialised        = ProcessError("not initialised")
	ErrNumberAlreadyIssued   = ExistsError("transaction number is already issued")
	ErrNumberNotAvailable    = NotFoundError("transaction number is not available")
	ErrNumberNotIssued       = NotFoundError("transaction number is not issued")
	ErrNumberNotTentative    = NotFoundError("transaction number is not tentative")
	ErrNymboxOutOfSync       = SyncError("nymbox out of sync")
	ErrPasswordMismatch      = InvalidError("password mismatch")
	ErrPasswordRequired      = InvalidError("password is required")
	ErrPayloadTooLong        = LengthError("payload too long")
	ErrQuarantined           = InvariantError("context is quarantined")
	ErrQueueFull             = ProcessError("delivery queue is full")
	ErrReadOnly              = ProcessError("database is read only")
	ErrRejected              = RejectedError("rejected by notary")
	ErrSignatureTooLong      = LengthError("signature too long")
	ErrSigningUnavailable    = SigningError("signing unavailable")
	ErrStaleReply            = SyncError("stale reply")
	ErrStoreFailed           = ProcessError("store failed")
	ErrTentativeIssued       = InvariantError("tentative number is already issued")
	ErrTimeout               = NetworkError("timeout")
	ErrTrailingData          = RecordError("trailing data after record")
	ErrTruncatedRecord       = RecordError("truncated record")
	ErrUnexpectedRecordTag   = RecordError("unexpected record tag")
	ErrUnsortedSet           = RecordError("set is not in ascending order")
	ErrWrongPassword         = InvalidError("wrong password")
	ErrWrongRecordVersion    = RecordError("wrong record version")
	ErrZeroTransactionNumber = InvalidError("zero transaction number")
)

// the error interface methods
func (e GenericError) Error() string   { return string(e) }
func (e ExistsError) Error() string    { return string(e) }
func (e InvalidError) Error() string   { return string(e) }
func (e LengthError) Error() string    { return string(e) }
func (e NotFoundError) Error() string  { return string(e) }
func (e ProcessError) Error() string   { return string(e) }
func (e RecordError) Error() string    { return string(e) }
func (e InvariantError) Error() string { return string(e) }
func (e SigningError) Error() string   { return string(e) }
func (e NetworkError) Error() string   { return string(e) }
func (e SyncError) Error() string      { return string(e) }
func (e RejectedError) Error() string  { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool    { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool   { _, ok := e.(InvalidError); return ok }
func IsErrLength(e error) bool    { _, ok := e.(LengthError); return ok }
func IsErrNotFound(e error) bool  { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool   { _, ok := e.(ProcessError); return ok }
func IsErrRecord(e error) bool    { _, ok := e.(RecordError); return ok }
func IsErrInvariant(e error) bool { _, ok := e.(InvariantError); return ok }
func IsErrSigning(e error) bool   { _, ok := e.(SigningError); return ok }
func IsErrNetwork(e error) bool   { _, ok := e.(NetworkError); return ok }
func IsErrSync(e error) bool      { _, ok := e.(SyncError); return ok }
func IsErrRejected(e error) bool  { _, ok := e.(RejectedError); return ok }

// IsRetryable - true for the classes the delivery engine may retry
// without caller involvement
func IsRetryable(e error) bool {
	return IsErrNetwork(e) || IsErrSync(e)
}
