package app

import (
	"io"

	"github.com/vk/fishgrid/internal/registry"
	"github.com/vk/fishgrid/modules/http_client"
	"github.com/vk/fishgrid/modules/json_file"
	"github.com/vk/fishgrid/modules/print"
	"github.com/vk/fishgrid/modules/s3"
	"github.com/vk/fishgrid/modules/socketio"
)

// coreModules returns every sink module compiled into the fishgrid binary.
// The print sink writes to out.
func coreModules(out io.Writer) []registry.Module {
	return []registry.Module{
		&print.Module{Out: out},
		&json_file.Module{},
		&http_client.Module{},
		&s3.Module{},
		&socketio.Module{},
	}
}
