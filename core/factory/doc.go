// Package factory provides a small generic registry used to instantiate
// modules from configuration. Modules are selected by a type string and
// configured from a map of raw settings which factories decode into typed
// structs.
//
// Example usage:
//
//	reg := factory.NewRegistry[metrics.Recorder]()
//	reg.Register("influx", func(conf map[string]any) (metrics.Recorder, error) {
//	    var c struct {
//	        URL string `json:"url"`
//	    }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return metrics.NewInfluxSink(c.URL, "", "", "")
//	})
//	r, err := reg.Create(factory.ModuleConfig{Type: "influx", Conf: map[string]any{"url": "http://localhost:8086"}})
package factory
