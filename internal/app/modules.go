package app

import (
	"github.com/nodedge/nodedge/internal/registry"
	"github.com/nodedge/nodedge/modules/dynamic"
	"github.com/nodedge/nodedge/modules/expression"
	"github.com/nodedge/nodedge/modules/operator"
	"github.com/nodedge/nodedge/modules/sink"
	"github.com/nodedge/nodedge/modules/source"
)

// coreModules is the definitive list of all block modules that are compiled
// into the nodedge binary.
var coreModules = []registry.Module{
	&source.Module{},
	&sink.Module{},
	&operator.Module{},
	&expression.Module{},
	&dynamic.Module{},
}
