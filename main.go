/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/gmaffy/ont-assembly/cmd"

func main() {
	cmd.Execute()
}
