package main

import (
	"prtrack/internal/command"
)

func main() {
	command.Execute()
}
