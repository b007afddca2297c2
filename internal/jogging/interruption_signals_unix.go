//go:build !windows

package jogging

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/go_func_utils"
)

// NotifySignals feeds target from process signals until ctx is done:
// SIGUSR1 begins an interruption and SIGUSR2 ends it. The returned channel is
// closed once signal handling has been torn down.
func NotifySignals(ctx context.Context, target *Interruptions, logger *log.Logger) <-chan struct{} {
	sigs := make(chan os.Signal, 4)
	signal.Notify(sigs, syscall.SIGUSR1, syscall.SIGUSR2)
	done := make(chan struct{})

	go_func_utils.SafeGo(logger, func() {
		defer close(done)
		defer signal.Stop(sigs)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigs:
				logger.Printf("Interruptions: received %v", sig)
				if sig == syscall.SIGUSR1 {
					target.Began()
				} else {
					target.Ended()
				}
			}
		}
	})
	return done
}
