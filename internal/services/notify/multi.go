package notify

import (
	"context"
	"errors"
	"strings"
	"sync"

	drepo "SignalScan/internal/domain/repository"
)

// Multi fans one digest out to every notifier concurrently.
type Multi []drepo.Notifier

func (m Multi) Name() string {
	names := make([]string, 0, len(m))
	for _, n := range m {
		names = append(names, n.Name())
	}
	return strings.Join(names, "+")
}

// Send returns the joined errors of the notifiers that failed.
func (m Multi) Send(ctx context.Context, text string) error {
	errs := make([]error, len(m))
	var wg sync.WaitGroup
	for i, n := range m {
		wg.Add(1)
		go func(i int, n drepo.Notifier) {
			defer wg.Done()
			errs[i] = n.Send(ctx, text)
		}(i, n)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// SendAsync delivers text in the background; the channel yields the result once.
func SendAsync(ctx context.Context, n drepo.Notifier, text string) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- n.Send(ctx, text)
		close(done)
	}()
	return done
}
