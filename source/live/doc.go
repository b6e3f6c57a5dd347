// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package live implements a Source that reads a replay file while it is still
// being written by another process.
//
// The file is memory-mapped read-only. A background watcher observes the
// file's directory (with a periodic stat as a fallback, since some platforms
// do not reliably report writes to a file that is being appended to) and
// remaps the file whenever it changes. After each remap, the file is scanned
// for the last complete packet, whose tick becomes the Source's LastTick.
//
// Reads that ask for data beyond the current end of the file block until the
// data is written, the recording is finished, the Source is stopped, or the
// configured timeout expires:
//
//	- Stop aborts the Source permanently; every blocking call returns
//	  source.ErrAborted.
//	- ForceTimeout makes exactly one blocking call return source.ErrTimeout.
//	- StreamFinished, called by a decoder once it reads the recording's
//	  terminal packet, makes reads past the available data return io.EOF
//	  instead of waiting.
//
// A Source supports one logical reader. Its methods are safe for concurrent
// use, but concurrent readers share a single position.
//
// Optional Prometheus monitoring can be enabled by registering on startup
// via RegisterMonitoring.
package live
