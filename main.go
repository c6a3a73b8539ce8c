// Command fixxer serves the A.I. Fixxer marketing site and scan demo.
package main

import "fixxer/cmd"

func main() {
	cmd.Execute()
}
