package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/crmkeeper/internal/ctl"
)

func main() {
	app := ctl.NewApp(os.Stdout, os.Stderr)
	os.Exit(app.Run(context.Background(), os.Args[1:]))
}
