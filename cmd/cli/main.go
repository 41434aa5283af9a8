// haplog - HAProxy access log analysis tool
//
// haplog ingests HAProxy HTTP-format access logs, restores chronological
// order, and runs a fixed catalogue of analytics commands over them.
package main

import (
	"os"

	"github.com/bogdangi/haproxy-log-analysis/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
