// listenosc prints the console's OSC broadcast stream. Useful for tuning
// settle waits and discovering addresses: point TotalMix's outgoing port
// at this tool and watch what a page or bank change rebroadcasts.
package main

import (
	"fmt"
	"log"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/hypebeast/go-osc/osc"

	"github.com/kr0mka/totalmix-osc-bridge/devices"
)

type CLI struct {
	Port    int    `arg:"" help:"UDP port to listen on"`
	Pattern string `help:"Only print addresses matching this pattern (@ captures a segment, trailing * matches any suffix)" default:"*"`
}

func main() {
	cli := &CLI{}
	kong.Parse(cli,
		kong.Name("listenosc"),
		kong.Description("Print OSC messages arriving on a UDP port"),
		kong.UsageOnError(),
	)

	dispatcher := devices.NewDispatcher()
	dispatcher.AddMsgHandler(cli.Pattern, func(msg *osc.Message) {
		fmt.Printf("%s %v\n", msg.Address, msg.Arguments)
	})

	addr := "0.0.0.0:" + strconv.Itoa(cli.Port)
	server := &osc.Server{
		Addr:       addr,
		Dispatcher: dispatcher,
	}

	fmt.Printf("Listening for OSC messages on %s (UDP)...\n", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start OSC server: %v", err)
	}
}
