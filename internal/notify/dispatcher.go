package notify

import (
	"context"
	"log"
	"sync"
	"time"
)

// Dispatcher sends notifications on their own goroutine so a slow or failing
// channel never holds up or fails the operation that triggered it.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{sender: sender, timeout: timeout}
}

func (d *Dispatcher) Dispatch(template string, recipients []string, vars map[string]string) {
	if len(recipients) == 0 {
		log.Printf("[NOTIFY] %s skipped: no recipients", template)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[NOTIFY] %s panicked: %v", template, r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, template, recipients, vars); err != nil {
			log.Printf("[NOTIFY] %s to %v failed: %v", template, recipients, err)
		}
	}()
}

// Wait blocks until in-flight notifications finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
