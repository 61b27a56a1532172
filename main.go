package main

import "github.com/govtwool/govtwool-backend/cmd"

func main() {
	cmd.Execute()
}
