/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/nathanchica/life-event-logger/cmd"

func main() {
	cmd.Execute()
}
