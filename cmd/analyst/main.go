// Command analyst is an interactive data analyst over a CSV file.
package main

import (
	"os"
)

func main() {
	os.Exit(Execute())
}
