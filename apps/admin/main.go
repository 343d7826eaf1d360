package main

import (
	"log"
	"os"

	"github.com/trezcool/shule/storage/database"
)

var logger *log.Logger // todo: logger service

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	errAndDie(database.CreateIfNotExist())
	db, err := database.Open()
	errAndDie(err)
	defer db.Close()

	sqlDB, err := database.Std(db)
	errAndDie(err)

	// start CLI
	cli := commandLine{
		db:    db,
		sqlDB: sqlDB,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
