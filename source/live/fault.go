// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package live

import (
	"runtime/debug"

	"github.com/Rupas1k/clarity/source"

	"github.com/pkg/errors"
)

// addrError is implemented by the runtime error raised for a memory fault when
// panic-on-fault is enabled.
type addrError interface {
	error
	Addr() uintptr
}

// guardFault runs fn, converting a fault on mapped memory into
// source.ErrFault.
//
// A mapping faults when the file was truncated by its writer after it was
// mapped and before the watcher noticed.
func guardFault(fn func() error) (err error) {
	old := debug.SetPanicOnFault(true)
	defer func() {
		debug.SetPanicOnFault(old)

		if r := recover(); r != nil {
			ae, ok := r.(addrError)
			if !ok {
				panic(r)
			}
			err = errors.Wrapf(source.ErrFault, "address %#x", ae.Addr())
		}
	}()

	return fn()
}
