package main

import "github.com/partyfinder/scraper/internal/cli"

func main() {
	cli.Execute()
}
