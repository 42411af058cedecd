package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncSignup is a no-op.
func (n *NoopRecorder) IncSignup() {}

// IncSignin is a no-op.
func (n *NoopRecorder) IncSignin() {}

// IncPasswordReset is a no-op.
func (n *NoopRecorder) IncPasswordReset() {}

// IncResetEmailSent is a no-op.
func (n *NoopRecorder) IncResetEmailSent() {}

// IncPortfolioCreated is a no-op.
func (n *NoopRecorder) IncPortfolioCreated() {}

// IncPortfolioSaved is a no-op.
func (n *NoopRecorder) IncPortfolioSaved() {}

// IncPortfolioUpdated is a no-op.
func (n *NoopRecorder) IncPortfolioUpdated() {}

// IncPortfolioDeleted is a no-op.
func (n *NoopRecorder) IncPortfolioDeleted() {}
