package converter

import (
	"fmt"

	"pdfdigest/internal/config"
	"pdfdigest/internal/domain"
	"pdfdigest/internal/port"
)

// Factory is a function that creates a Converter from the converter config.
type Factory func(cfg *config.ConverterConfig) (port.Converter, error)

// registry of converter factories, populated explicitly via Register in main.
var factories = map[domain.Processor]Factory{}

// Register registers a converter factory for a processor selector.
func Register(p domain.Processor, factory Factory) {
	factories[p] = factory
}

// New creates a Converter for the given processor using the registered factory.
func New(p domain.Processor, cfg *config.ConverterConfig) (port.Converter, error) {
	factory, ok := factories[p]
	if !ok {
		return nil, fmt.Errorf("converter %q: %w", p, domain.ErrUnknownProcessor)
	}
	return factory(cfg)
}

// Registered reports whether a factory exists for the processor.
func Registered(p domain.Processor) bool {
	_, ok := factories[p]
	return ok
}
