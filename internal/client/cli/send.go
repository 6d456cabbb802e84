package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/dmitrijs2005/seedclassifier/internal/client/submit"
)

// Send delivers the whole queue. Ctrl+C abandons the run; items delivered
// before that are still removed from the queue.
func (a *App) Send(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		return errors.New("login first")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	out, err := a.queue.Submit(ctx)
	for _, r := range out.Rejected {
		fmt.Fprintf(a.out, "Skipped %s: %v\n", r.ID, r.Err)
	}

	switch {
	case submit.IsCanceled(err):
		fmt.Fprintf(a.out, "Sending canceled, %d item(s) delivered\n", len(out.Delivered))
		return nil
	case err != nil:
		return err
	case len(out.Delivered) == 0 && len(out.Rejected) == 0:
		fmt.Fprintln(a.out, "Nothing to send")
	default:
		fmt.Fprintf(a.out, "Sent %d item(s)\n", len(out.Delivered))
	}
	return nil
}

// spinner is the single indeterminate "sending" indication of a run.
type spinner struct {
	w        io.Writer
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func newSpinner(w io.Writer) *spinner {
	return &spinner{w: w, interval: time.Second}
}

func (s *spinner) Started(total int) {
	if total == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprint(s.w, "Sending")
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.tick(s.stop, s.done)
}

func (s *spinner) tick(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.mu.Lock()
			fmt.Fprint(s.w, ".")
			s.mu.Unlock()
		}
	}
}

func (s *spinner) Finished(submit.Outcome, error) {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	fmt.Fprintln(s.w)
}
