package main

import "github.com/xyproto/env/v2"

// Config holds every resolved driver setting: CLI flags layered over
// environment-derived defaults. go.mod lists xyproto/env/v2; this is
// where ozc gives it a home.
type Config struct {
	BaseEnv bool
	Linker bool

	Output string
	Headers []string
	Modules []string
	Base string
	Defines []string

	Verbose bool

	Inputs []string
}

// defaultConfig resolves environment-derived defaults, layered under
// flag parsing so flags always win.
func defaultConfig() Config {
	return Config{
		Output: env.Str("OZC_OUTPUT", "a.cpp"),
		Base: env.Str("OZC_BASE_DECLARATIONS", ""),
		Verbose: env.Bool("OZC_VERBOSE"),
	}
}
