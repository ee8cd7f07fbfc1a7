package app

import (
	"github.com/vk/planweave/internal/registry"
	"github.com/vk/planweave/modules/arithmetic"
	"github.com/vk/planweave/modules/scoring"
)

// coreModules is the definitive list of all modules that are compiled into
// the planweave binary.
var coreModules = []registry.Module{
	&arithmetic.Module{},
	&scoring.Module{},
}
