// Command siteauditor is the CLI entry point: "audit" runs one report
// to stdout, "serve" starts the HTTP API.
package main

import "github.com/marcosalmeida/siteauditor/internal/cli"

func main() {
	cli.Execute()
}
