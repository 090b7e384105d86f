package main

import "github.com/fatih/color"

var (
	okColor     = color.New(color.FgGreen, color.Bold)
	failColor   = color.New(color.FgRed, color.Bold)
	dryRunColor = color.New(color.FgYellow, color.Bold)
	headColor   = color.New(color.FgCyan, color.Bold)
)

func okTag() string     { return okColor.Sprint("[OK]") }
func failTag() string   { return failColor.Sprint("[!]") }
func dryRunTag() string { return dryRunColor.Sprint("[DRY]") }
