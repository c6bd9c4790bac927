// Copyright © 2018 The ELPS authors

package main

import "github.com/luthersystems/luaulsp/cmd"

func main() {
	cmd.Execute()
}
