package model

import (
	"context"
	"fmt"

	"github.com/searchlift/searchlift/registry"
)

// Trainer produces a trained config from a base config and a dataset
// reference. Implementations live outside the registry; the facade only
// needs the trained result.
type Trainer interface {
	Train(ctx context.Context, base Config, dataset string) (Config, error)
}

// TrainAndRegister trains base against dataset and registers the result as a
// new draft version. Training failures are returned without touching the
// registry.
func (f *Facade) TrainAndRegister(ctx context.Context, trainer Trainer, base Config, dataset string, tags, dependencies []string) (registry.Entry[Config], error) {
	trained, err := trainer.Train(ctx, base, dataset)
	if err != nil {
		return registry.Entry[Config]{}, fmt.Errorf("train %s: %w", base.ID, err)
	}
	return f.RegisterModel(ctx, trained, tags, dependencies)
}
