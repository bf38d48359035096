package metrics

import "github.com/kilianp07/bessopt/core/factory"

var recorderRegistry = factory.NewRegistry[Recorder]()

// RegisterRecorder adds a recorder factory identified by name.
func RegisterRecorder(name string, f factory.Factory[Recorder]) error {
	return recorderRegistry.Register(name, f)
}

// NewRecorder creates a Recorder from the provided configuration.
func NewRecorder(cfgs []factory.ModuleConfig) (Recorder, error) {
	if len(cfgs) == 0 {
		return NopRecorder{}, nil
	}
	if len(cfgs) == 1 {
		return recorderRegistry.Create(cfgs[0])
	}
	recorders := make([]Recorder, len(cfgs))
	for i, c := range cfgs {
		r, err := recorderRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		recorders[i] = r
	}
	return NewMultiRecorder(recorders...), nil
}
