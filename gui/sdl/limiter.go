package sdl

import (
	"time"
)

type fpsLimiter struct {
	framesPerSecond int
	secondsPerFrame time.Duration

	ticker *time.Ticker
}

func newFPSLimiter(framesPerSecond int) *fpsLimiter {
	lim := new(fpsLimiter)

	lim.framesPerSecond = framesPerSecond
	lim.secondsPerFrame = time.Second / time.Duration(framesPerSecond)
	lim.ticker = time.NewTicker(lim.secondsPerFrame)

	return lim
}

// wait blocks until the next frame is due.
func (lim *fpsLimiter) wait() {
	<-lim.ticker.C
}

func (lim *fpsLimiter) stop() {
	lim.ticker.Stop()
}
