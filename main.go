package main

import "github.com/its-dedsec/urlsentry/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
