// Package defaults provides the embedded default configuration.
package defaults

import _ "embed"

//go:embed default_config.json
var DefaultConfigJSON []byte
