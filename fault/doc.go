// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches.
//
// The class of an error decides how the delivery engine treats it:
// invariant errors quarantine a context and are never retried,
// signing errors are local and recoverable once the identity is
// unlocked, network and sync errors are retried internally and
// rejected errors are reported to the caller as a normal failed
// result.
package fault
