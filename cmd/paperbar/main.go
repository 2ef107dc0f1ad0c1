// Command paperbar tracks research paper deadlines and breaks milestones
// down into daily tasks.
package main

import "os"

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
