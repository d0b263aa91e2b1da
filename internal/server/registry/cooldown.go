package registry

import (
	"fmt"

	"github.com/binarybhaskar/branchit/internal/common"
)

const millisPerDay = 24 * 60 * 60 * 1000

// CooldownPolicy decides whether a username change is permitted given the
// time of the previous change. CooldownDays = 0 disables the cooldown
// entirely; lastChangeAt = 0 means the username was never changed and a
// change is always permitted.
type CooldownPolicy struct {
	CooldownDays int64
}

// Permitted reports whether a change is allowed at nowMillis.
func (p CooldownPolicy) Permitted(lastChangeAt, nowMillis int64) bool {
	return p.remainingMillis(lastChangeAt, nowMillis) == 0
}

// RemainingDays is the wait reported to the user: whole days, rounded down,
// never negative.
func (p CooldownPolicy) RemainingDays(lastChangeAt, nowMillis int64) int64 {
	return p.remainingMillis(lastChangeAt, nowMillis) / millisPerDay
}

func (p CooldownPolicy) remainingMillis(lastChangeAt, nowMillis int64) int64 {
	if p.CooldownDays <= 0 || lastChangeAt <= 0 {
		return 0
	}
	remaining := p.CooldownDays*millisPerDay - (nowMillis - lastChangeAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CooldownError reports a change blocked by the cooldown policy, carrying
// the remaining wait for the user-facing message. It matches
// common.ErrorCooldownActive under errors.Is.
type CooldownError struct {
	RemainingDays int64
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("username can be changed in %d days", e.RemainingDays)
}

func (e *CooldownError) Is(target error) bool {
	return target == common.ErrorCooldownActive
}
