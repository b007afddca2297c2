package jogging

import (
	"context"
	"log"
)

// NotifySignals is unsupported on windows; target never fires
func NotifySignals(ctx context.Context, target *Interruptions, logger *log.Logger) <-chan struct{} {
	logger.Printf("Interruptions: signal source not available on windows")
	done := make(chan struct{})
	close(done)
	return done
}
