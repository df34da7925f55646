// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package timeout provides a bounded busy-wait helper for polling
// hardware status bits, adapted from a bare-metal WaitFor-style unbounded
// register spin for the driver's PHY, soft-reset and TX-idle polls.
package timeout

import "time"

// Poll busy-waits on check, sleeping briefly between attempts, until check
// returns true or timeout elapses. It reports whether check succeeded
// before the deadline.
//
// Unlike a bare-metal register spin, this runs under a real OS scheduler,
// so each iteration yields via a short sleep rather than a cooperative
// runtime.Gosched() - there is no single-threaded bare-metal runtime to
// hand control back to here.
func Poll(budget time.Duration, check func() bool) bool {
	deadline := time.Now().Add(budget)

	for {
		if check() {
			return true
		}

		if time.Now().After(deadline) {
			return false
		}

		time.Sleep(50 * time.Microsecond)
	}
}
