// Command ssg pre-renders the demo application.
//
// SSG_DEMO_KIND selects the router flavour: remix (default), tanstack or
// single-page. Applications embed the same command by calling
// (*ssg.App).Main from their own main package with their route tree.
package main

import (
	"os"

	"github.com/vango-dev/ssg"
	"github.com/vango-dev/ssg/internal/demo"
)

func main() {
	kind := ssg.Kind(os.Getenv("SSG_DEMO_KIND"))
	if kind == "" {
		kind = ssg.KindRemix
	}
	demo.New(kind).Main()
}
