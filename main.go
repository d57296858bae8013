package main

import (
	"fmt"
	"os"

	configcmd "fjacquet/pdf-txt/cmd/config"
	"fjacquet/pdf-txt/cmd/convert"
	"fjacquet/pdf-txt/cmd/extract"
	"fjacquet/pdf-txt/cmd/inspect"
	"fjacquet/pdf-txt/cmd/root"
	"fjacquet/pdf-txt/internal/config"
)

func init() {
	// .env values must be visible before flags and config are resolved
	config.LoadEnv()

	root.Init()

	root.Cmd.AddCommand(extract.Cmd)
	root.Cmd.AddCommand(convert.Cmd)
	root.Cmd.AddCommand(inspect.Cmd)
	root.Cmd.AddCommand(configcmd.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
