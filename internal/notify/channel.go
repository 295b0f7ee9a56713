package notify

import "fmt"

// KeyspaceChannel returns the pub/sub channel name a K-flagged
// subscriber receives key-centric events on.
func KeyspaceChannel(dbIndex int, key string) string {
	return fmt.Sprintf("__keyspace@%d__:%s", dbIndex, key)
}

// KeyeventChannel returns the pub/sub channel name an E-flagged
// subscriber receives event-centric messages on.
func KeyeventChannel(dbIndex int, event string) string {
	return fmt.Sprintf("__keyevent@%d__:%s", dbIndex, event)
}
