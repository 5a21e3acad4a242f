package coordinator

import (
	"time"
)

// Log lines keep the wire format the clients already parse:
// "[yyyy-MM-dd-HH-mm-ss] <name> join <room>", "... leave <room>", or
// "... <name> : <body>". Broadcast payloads prefix the room name so one
// event type carries every room's traffic.
const timestampLayout = "2006-01-02-15-04-05"

func Timestamp(t time.Time) string {
	return "[" + t.Format(timestampLayout) + "]"
}

func FormatJoinLine(t time.Time, name, room string) string {
	return Timestamp(t) + " " + name + " join " + room
}

func FormatLeaveLine(t time.Time, name, room string) string {
	return Timestamp(t) + " " + name + " leave " + room
}

func FormatChatLine(t time.Time, name, body string) string {
	return Timestamp(t) + " " + name + " : " + body
}

func RoomPayload(room, line string) string {
	return room + "/" + line
}
