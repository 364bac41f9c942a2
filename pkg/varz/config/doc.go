/*
Package config provides typed access to registry configuration loaded
from YAML, JSON, or TOML.

# Overview

Config wraps a map[string]any and provides typed accessor methods that
return a default value when a key is missing or holds the wrong type.
Files commonly nest registry settings under their own table, which
Section extracts:

	# varz.yaml
	varz:
	  name: api
	  metrics: true
	  log_level: debug

	cfg, err := config.FromFile("varz.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	reg := cfg.Section("varz")
	name := reg.String("name", "default") // "api"
	metrics := reg.Bool("metrics", false) // true

# Type Coercion

Numeric accessors accept the integer types the supported decoders
produce (int from YAML, int64 from TOML, float64 from JSON). A float64
is only accepted as an int when it has no fractional part.

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
