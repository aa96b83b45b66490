package switchmate

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultPollInterval matches the refresh schedule home-automation
// platforms typically use for polled switch entities.
const DefaultPollInterval = 10 * time.Second

// Poller periodically refreshes a session's state from hardware. Refresh
// failures are logged and absorbed; the session's availability flag is the
// signal that a switch has gone quiet.
type Poller struct {
	session  *Session
	interval time.Duration
	logger   *logrus.Logger

	// OnRefresh, when set, is invoked after every refresh attempt with the
	// session's current state and availability.
	OnRefresh func(on, available bool)
}

// NewPoller creates a poller for the session. A non-positive interval
// falls back to DefaultPollInterval.
func NewPoller(s *Session, interval time.Duration, logger *logrus.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Poller{
		session:  s,
		interval: interval,
		logger:   logger,
	}
}

// Run refreshes the session immediately and then on every tick until ctx
// is cancelled. It returns the context's error.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *Poller) refresh(ctx context.Context) {
	if err := p.session.Update(ctx); err != nil {
		p.logger.WithFields(logrus.Fields{
			"address": p.session.Address(),
			"error":   err,
		}).Warn("State refresh failed")
	}
	if p.OnRefresh != nil {
		p.OnRefresh(p.session.IsOn(), p.session.IsAvailable())
	}
}
