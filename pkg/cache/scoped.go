package cache

// ScopedKeyer wraps a Keyer with a prefix so several venues can share one
// backend without colliding:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "venue:main-hall:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ReportKey generates a prefixed report key.
func (k *ScopedKeyer) ReportKey(analysis, snapshotHash string) string {
	return k.prefix + k.inner.ReportKey(analysis, snapshotHash)
}

// DiagramKey generates a prefixed diagram key.
func (k *ScopedKeyer) DiagramKey(snapshotHash string, opts DiagramKeyOpts) string {
	return k.prefix + k.inner.DiagramKey(snapshotHash, opts)
}
