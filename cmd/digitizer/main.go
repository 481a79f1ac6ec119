// cmd/digitizer/main.go
package main

import "github.com/tamzrod/bench-digitizer/cmd/digitizer/cmd"

func main() {
	cmd.Execute()
}
