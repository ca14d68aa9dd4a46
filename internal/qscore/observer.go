package qscore

// Observer receives progress messages from a run. It is injected at the
// entry point only; internal stages never take a logger parameter.
type Observer interface {
	Logf(format string, args ...any)
}

type nopObserver struct{}

func (nopObserver) Logf(string, ...any) {}

// ObserverFunc adapts a printf-style function to the Observer interface,
// e.g. qscore.ObserverFunc(log.Printf).
type ObserverFunc func(format string, args ...any)

// Logf implements Observer.
func (f ObserverFunc) Logf(format string, args ...any) { f(format, args...) }

// Option customises a Calculate call.
type Option func(*runOptions)

type runOptions struct {
	observer Observer
}

// WithObserver routes run progress to obs. The default discards it.
func WithObserver(obs Observer) Option {
	return func(o *runOptions) { o.observer = obs }
}
