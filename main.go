package main

import "github.com/Artemis43/telegram-support-bot/cmd"

func main() {
	cmd.Execute()
}
