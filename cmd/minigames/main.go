package main

import (
	"minigames_backend/internal/app"
	"os"

	_ "go.uber.org/automaxprocs"
)

func main() {
	if err := app.NewApp().Run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
