// Command coasync is a cobra CLI with a `serve` subcommand (HTTP/CGI
// server on 127.0.0.1:8080) and a `pipedemo` subcommand (process/pipe
// wrapper demonstration).
package main

import (
	"github.com/co-async-go/co-async/cmd"
	_ "github.com/co-async-go/co-async/cmd/pipedemo"
	_ "github.com/co-async-go/co-async/cmd/serve"
)

func main() {
	cmd.Execute()
}
