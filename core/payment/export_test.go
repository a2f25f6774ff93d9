package payment

import "time"

// SetNow freezes the clock used for default payment dates until restore is called.
func SetNow(now time.Time) (restore func()) {
	nowFunc = func() time.Time { return now }
	return func() { nowFunc = time.Now }
}
