// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package demo implements the replay ("demo") container format written by
// Source engine game servers.
//
// A demo file starts with an 8-byte magic that identifies the engine
// generation, followed by a small fixed header:
//
//	- Source 1 ("PBUFDEM\0"): int32 file-info offset.
//	- Source 2 ("PBDEMS2\0"): int32 file-info offset, int32 spawn-groups offset.
//
// The header is followed by a sequence of packets. Each packet is framed as
// three unsigned varints and a payload:
//
//	- command: the packet's Command. If the IsCompressed bit is set, the
//	  payload is snappy-compressed.
//	- tick: the recording tick, a uint32 that is reinterpreted as int32. Packets
//	  written before the match starts carry tick -1.
//	- size: the payload size, in bytes.
//
// A recording ends with a Stop packet. A live recording is a demo file whose
// Stop packet has not been written yet.
//
// Payloads are protobuf messages; decoding them is left to the caller.
package demo
