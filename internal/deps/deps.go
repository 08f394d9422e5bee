// Package deps pulls in every dependency tool plugin. Each plugin
// registers itself into deptool.DefaultRegistry from its init function,
// so a single blank import of this package wires up all known scanners
// and managers.
package deps

import (
	// Unused-dependency scanners
	_ "github.com/wexinc/shears/internal/deptool/deptry"

	// Dependency managers
	_ "github.com/wexinc/shears/internal/deptool/uv"
)
