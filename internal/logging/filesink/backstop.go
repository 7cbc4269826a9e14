package filesink

import "github.com/robfig/cron"

// Backstop runs Sink.HandleSyncAndClose on a fixed cron schedule, as a
// second caller alongside the supervisor's own tick. The supervisor
// still calls HandleSyncAndClose directly at its own cadence; the
// backstop guarantees the check still happens if the supervisor task
// stalls.
type Backstop struct {
	cron *cron.Cron
	sink *Sink
}

// NewBackstop creates (but does not start) a cron-driven backstop for
// sink, ticking every interval (a duration spec understood by
// robfig/cron's "@every" syntax, e.g. "5s").
func NewBackstop(sink *Sink, everySpec string) (*Backstop, error) {
	c := cron.New()
	if err := c.AddFunc("@every "+everySpec, sink.HandleSyncAndClose); err != nil {
		return nil, err
	}
	return &Backstop{cron: c, sink: sink}, nil
}

// Start begins the cron schedule in its own goroutine.
func (b *Backstop) Start() {
	b.cron.Start()
}

// Stop halts the cron schedule.
func (b *Backstop) Stop() {
	b.cron.Stop()
}
