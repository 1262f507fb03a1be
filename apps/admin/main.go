package main

import (
	"context"
	"fmt"
	"os"

	"github.com/trezcool/rollcall/apps/container"
	"github.com/trezcool/rollcall/core"
	logsvc "github.com/trezcool/rollcall/services/logger"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(logsvc.NewZap(conf.Debug, "admin"), conf)
	logger.Enable(!conf.Debug)

	// set up DB & services
	c, err := container.New(context.Background(), conf, logger, false /* migrate */)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up services: %v", err), err)
	}

	// start CLI
	cli := newCommandLine(c, os.Stdout)
	err = cli.run(os.Args)

	_ = c.Close()
	logger.Close()
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
