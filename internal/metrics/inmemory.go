package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Signups           uint64
	Signins           uint64
	PasswordResets    uint64
	ResetEmailsSent   uint64
	PortfoliosCreated uint64
	PortfoliosSaved   uint64
	PortfoliosUpdated uint64
	PortfoliosDeleted uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	signups           uint64
	signins           uint64
	passwordResets    uint64
	resetEmailsSent   uint64
	portfoliosCreated uint64
	portfoliosSaved   uint64
	portfoliosUpdated uint64
	portfoliosDeleted uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Signups:           atomic.LoadUint64(&m.signups),
		Signins:           atomic.LoadUint64(&m.signins),
		PasswordResets:    atomic.LoadUint64(&m.passwordResets),
		ResetEmailsSent:   atomic.LoadUint64(&m.resetEmailsSent),
		PortfoliosCreated: atomic.LoadUint64(&m.portfoliosCreated),
		PortfoliosSaved:   atomic.LoadUint64(&m.portfoliosSaved),
		PortfoliosUpdated: atomic.LoadUint64(&m.portfoliosUpdated),
		PortfoliosDeleted: atomic.LoadUint64(&m.portfoliosDeleted),
	}
}

// IncSignup increments the signup counter.
func (m *InMemoryRecorder) IncSignup() {
	atomic.AddUint64(&m.signups, 1)
}

// IncSignin increments the signin counter.
func (m *InMemoryRecorder) IncSignin() {
	atomic.AddUint64(&m.signins, 1)
}

// IncPasswordReset increments the completed-reset counter.
func (m *InMemoryRecorder) IncPasswordReset() {
	atomic.AddUint64(&m.passwordResets, 1)
}

// IncResetEmailSent increments the reset-email counter.
func (m *InMemoryRecorder) IncResetEmailSent() {
	atomic.AddUint64(&m.resetEmailsSent, 1)
}

// IncPortfolioCreated increments the portfolio-created counter.
func (m *InMemoryRecorder) IncPortfolioCreated() {
	atomic.AddUint64(&m.portfoliosCreated, 1)
}

// IncPortfolioSaved increments the portfolio-saved counter.
func (m *InMemoryRecorder) IncPortfolioSaved() {
	atomic.AddUint64(&m.portfoliosSaved, 1)
}

// IncPortfolioUpdated increments the portfolio-updated counter.
func (m *InMemoryRecorder) IncPortfolioUpdated() {
	atomic.AddUint64(&m.portfoliosUpdated, 1)
}

// IncPortfolioDeleted increments the portfolio-deleted counter.
func (m *InMemoryRecorder) IncPortfolioDeleted() {
	atomic.AddUint64(&m.portfoliosDeleted, 1)
}
