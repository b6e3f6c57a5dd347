// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package demo

import (
	"fmt"
)

// Command is a demo packet command.
type Command int32

// Demo packet commands.
const (
	CommandStop Command = iota
	CommandFileHeader
	CommandFileInfo
	CommandSyncTick
	CommandSendTables
	CommandClassInfo
	CommandStringTables
	CommandPacket
	CommandSignonPacket
	CommandConsoleCmd
	CommandCustomData
	CommandCustomDataCallbacks
	CommandUserCmd
	CommandFullPacket
	CommandSaveGame
	CommandSpawnGroups
	CommandAnimationData
)

// IsCompressed is the command bit set on packets with a compressed payload.
const IsCompressed Command = 64

var commandNames = map[Command]string{
	CommandStop:                "STOP",
	CommandFileHeader:          "FILE_HEADER",
	CommandFileInfo:            "FILE_INFO",
	CommandSyncTick:            "SYNC_TICK",
	CommandSendTables:          "SEND_TABLES",
	CommandClassInfo:           "CLASS_INFO",
	CommandStringTables:        "STRING_TABLES",
	CommandPacket:              "PACKET",
	CommandSignonPacket:        "SIGNON_PACKET",
	CommandConsoleCmd:          "CONSOLE_CMD",
	CommandCustomData:          "CUSTOM_DATA",
	CommandCustomDataCallbacks: "CUSTOM_DATA_CALLBACKS",
	CommandUserCmd:             "USER_CMD",
	CommandFullPacket:          "FULL_PACKET",
	CommandSaveGame:            "SAVE_GAME",
	CommandSpawnGroups:         "SPAWN_GROUPS",
	CommandAnimationData:       "ANIMATION_DATA",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int32(c))
}
