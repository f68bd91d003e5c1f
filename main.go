package main

import (
	"github.com/ValentinKolb/pDict/cmd"
)

func main() {
	cmd.Execute()
}
