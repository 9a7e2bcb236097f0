package main

import "github.com/syahmiabbas/scangate/cmd"

func main() {
	cmd.Execute()
}
