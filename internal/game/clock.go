package game

import "github.com/jonboulle/clockwork"

// TimeSync answers a client's clock offset probe. ClientTime is echoed back
// untouched so the client can measure the round trip.
type TimeSync struct {
	ClientTime *int64
	ServerTime int64
}

func SyncTime(clock clockwork.Clock, clientTime *int64) TimeSync {
	return TimeSync{
		ClientTime: clientTime,
		ServerTime: NowMillis(clock),
	}
}

func NowMillis(clock clockwork.Clock) int64 {
	return clock.Now().UnixMilli()
}
