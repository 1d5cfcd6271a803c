package ports

// EventEmitter pushes named events to the presentation layer.
type EventEmitter interface {
	Emit(name string, payload any)
}

type NopEmitter struct{}

func (NopEmitter) Emit(string, any) {}
