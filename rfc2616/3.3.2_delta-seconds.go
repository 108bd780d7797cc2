package rfc2616

import (
	"strconv"
	"time"
)

// §  3.3.2 Delta Seconds
// §
// §     Some HTTP header fields allow a time value to be specified as an
// §     integer number of seconds, represented in decimal, after the time
// §     that the message was received.
// §
// §         delta-seconds  = 1*DIGIT
//
// A leading minus sign is accepted, since senders do use it to mark a
// response as already expired.
func deltaSeconds(secondsStr string) (time.Duration, bool) {
	seconds, err := strconv.ParseInt(secondsStr, 10, 64)
	if err != nil {
		return 0, false
	}
	// clamp instead of overflowing
	const maxSeconds = int64(1<<63-1) / int64(time.Second)
	if seconds > maxSeconds {
		seconds = maxSeconds
	} else if seconds < -maxSeconds {
		seconds = -maxSeconds
	}
	return time.Second * time.Duration(seconds), true
}
