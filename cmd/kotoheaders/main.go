// Command kotoheaders is the CLI entry point; all flag and subcommand
// wiring lives in the cmd package.
package main

import "github.com/koto-project/kotochain/cmd"

func main() {
	cmd.Execute()
}
