package main

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/gradebook"
	logsvc "github.com/trezcool/gradebook/services/logger"
	inmemdb "github.com/trezcool/gradebook/storage/database/inmem"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "CONSOLE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	// set up store & gradebook
	db, err := inmemdb.Open()
	if err != nil {
		logger.Fatal("opening in-memory store", err)
	}
	validate, translator := gradebook.NewValidator()
	gb := gradebook.New(gradebook.Deps{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		UserRepo:   inmemdb.NewUserRepository(db),
		RosterRepo: inmemdb.NewRosterRepository(db),
		AcadRepo:   inmemdb.NewAcademicRepository(db),
	})
	if err := gb.Seed(); err != nil {
		logger.Fatal("seeding gradebook", err)
	}

	// start CLI
	cli := commandLine{session: gb.NewSession(), out: os.Stdout}
	fmt.Printf("%s console. Type \"help\" for commands.\n", conf.AppName)
	cli.loop(bufio.NewScanner(os.Stdin))
}

// loop runs commands read from in until quit or EOF.
func (cli *commandLine) loop(in *bufio.Scanner) {
	for {
		cli.printf("> ")
		if !in.Scan() {
			cli.println()
			return
		}
		err := cli.run(splitArgs(in.Text()))
		switch err {
		case nil, errHelp:
		case errQuit:
			return
		default:
			cli.report(err)
		}
	}
}
