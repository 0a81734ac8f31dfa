// FilePath: cmd/main.go
package main

import (
	"fmt"

	tm "github.com/buger/goterm"
	nuts "github.com/vaudience/go-nuts"
)

// @title Senser API
// @description Sensor telemetry fanned out over relational, document, wide-column, time-series, cache and search stores.
// @BasePath /
func main() {
	// Initialize version info
	nuts.InitVersion()
	Execute()
}

// ClearConsole clears the console screen and draws the logo.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"   _____                           ",
		"  / ___/___  ____  ________  _____ ",
		"  \\__ \\/ _ \\/ __ \\/ ___/ _ \\/ ___/ ",
		" ___/ /  __/ / / (__  )  __/ /     ",
		"/____/\\___/_/ /_/____/\\___/_/      ",
		"....................................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
