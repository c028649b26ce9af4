package gamemath

import (
	"math"
	"time"
)

// AdjustRemaining applies a pickup to the remaining match time. roll is a
// uniform draw in [1, 10]; when it is at most decreaseChance*10 the delta is
// subtracted, otherwise added. The result never drops below zero.
func AdjustRemaining(remaining, delta time.Duration, decreaseChance float64, roll int) (time.Duration, bool) {
	decreased := float64(roll) <= decreaseChance*10+1e-9
	if decreased {
		remaining -= delta
	} else {
		remaining += delta
	}
	if remaining < 0 {
		remaining = 0
	}
	return remaining, decreased
}

// Height is the score for a body at y: metres above floorY, one decimal.
func Height(floorY, y, unitsPerMetre float64) float64 {
	if unitsPerMetre <= 0 {
		unitsPerMetre = 1
	}
	h := (floorY - y) / unitsPerMetre
	if h < 0 {
		return 0
	}
	return math.Round(h*10) / 10
}

// GlideDrain is the share of the glide resource spent per tick.
func GlideDrain(glideDuration time.Duration, tickRate int) float64 {
	ticks := glideDuration.Seconds() * float64(tickRate)
	if ticks <= 0 {
		return 1
	}
	return 1 / ticks
}

// MinutesSeconds splits whole seconds for an mm:ss display.
func MinutesSeconds(seconds int) (int, int) {
	if seconds < 0 {
		seconds = 0
	}
	return seconds / 60, seconds % 60
}
