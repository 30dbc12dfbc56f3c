package main

import (
	"context"
	"log"

	"github.com/nsqlite/sqlitehandle/internal/sqlexec"
)

func main() {
	if err := sqlexec.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
