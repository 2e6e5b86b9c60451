// Package factory provides a small generic registry used to instantiate modules
// from configuration. Modules are defined by a type string and a map of raw
// settings. Factories decode the settings into typed structs and return the
// concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[prediction.Provider]()
//	reg.Register("http", func(conf map[string]any) (prediction.Provider, error) {
//	    var c forecast.HTTPConfig
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return forecast.NewHTTPProvider(c)
//	})
//	p, err := reg.Create(factory.ModuleConfig{Type: "http", Conf: map[string]any{"url": "http://forecaster"}})
package factory
