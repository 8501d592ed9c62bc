package main

import (
	"os"

	"pica/emu"
)

func main() {
	cli, err := parseArgs(os.Args[1:])
	checkf(err, "failed to parse command line")

	switch cli.mode {
	case runMode:
		cfg, err := cli.loadConfig()
		checkf(err, "failed to load configuration")
		checkf(runMain(cli.Run, cfg), "run failed")
	case infoMode:
		cfg, err := cli.loadConfig()
		checkf(err, "failed to load configuration")
		cfgPath := cli.Config
		if cfgPath == "" {
			cfgPath = emu.ConfigPath()
		}
		checkf(infoMain(os.Stdout, cfg, cfgPath), "info failed")
	case versionMode:
		versionMain(os.Stdout)
	}
}
