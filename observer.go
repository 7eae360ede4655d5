package qtm

// Snapshot is the state of a run right after one step.
type Snapshot struct {
	RunID         string
	Step          int
	Halting       bool
	Superposition Superposition
}

/*
Observer is notified after every step of Execute. It cannot influence the
run; it only sees it.
*/
type Observer interface {
	OnStep(Snapshot)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) OnStep(s Snapshot) {
	f(s)
}
