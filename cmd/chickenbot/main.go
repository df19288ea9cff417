// chickenbot is a resource-threshold watchdog for Path of Exile 2.
package main

import (
	"os"

	"github.com/3picF4iL/poe2-chicken-bot/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
