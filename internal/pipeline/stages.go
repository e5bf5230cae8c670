package pipeline

// StageResult carries a stage's output together with its quality. A degraded
// stage produced a usable default rather than real output; later stages run
// regardless.
type StageResult[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

func ok[T any](v T) StageResult[T] {
	return StageResult[T]{Value: v}
}

func degraded[T any](v T, reason string) StageResult[T] {
	return StageResult[T]{Value: v, Degraded: true, Reason: reason}
}
