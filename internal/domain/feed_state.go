package domain

// FeedState describes the price feed connection lifecycle.
type FeedState int32

const (
	FeedDisconnected FeedState = iota
	FeedConnecting
	FeedStreaming
)

func (s FeedState) String() string {
	switch s {
	case FeedDisconnected:
		return "DISCONNECTED"
	case FeedConnecting:
		return "CONNECTING"
	case FeedStreaming:
		return "STREAMING"
	default:
		return "UNKNOWN"
	}
}

// Stale reports whether cached valuations reflect a past observation
// because the feed is currently down.
func (s FeedState) Stale() bool {
	return s != FeedStreaming
}
