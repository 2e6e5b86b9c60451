package prediction

import "github.com/kilianp07/smartpark/core/factory"

var providerRegistry = factory.NewRegistry[Provider]()

// RegisterProvider adds a forecast provider factory identified by name.
func RegisterProvider(name string, f factory.Factory[Provider]) error {
	return providerRegistry.Register(name, f)
}

// NewProvider creates the provider described by cfg.
func NewProvider(cfg factory.ModuleConfig) (Provider, error) {
	return providerRegistry.Create(cfg)
}
