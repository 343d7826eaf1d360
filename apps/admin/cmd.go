package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/trezcool/shule/core"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db    core.DB
	sqlDB *sql.DB
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate <up|up-by-one|down|redo|status|version> - run database migrations")
	fmt.Println("  seed - load a demo roster, subjects, assignments and scheduled slots")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seed":
		return cli.seed()
	default:
		cli.printUsage()
		return errHelp
	}
}
