package main

import "github.com/owidviz/covidscope/cmd"

func main() {
	cmd.Execute()
}
