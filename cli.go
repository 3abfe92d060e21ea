// cli.go: コマンドライン引数。
package main

import "flag"

// CLIOpts はコマンドライン引数。
type CLIOpts struct {
	configPath string
	debug      bool
}

func parseCLIOpts() CLIOpts {
	var opt CLIOpts
	flag.StringVar(&opt.configPath, "config", defaultConfigPath(), "Path to the TOML config file")
	flag.BoolVar(&opt.debug, "debug", false, "Print debugging output (per-tick traces)")
	flag.Parse()
	return opt
}
