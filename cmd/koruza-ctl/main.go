// Command koruza-ctl is an interactive terminal controller: it maps
// keystrokes to koruza-control commands and prints the returned envelope.
// It is an ordinary client of the broker's unix-socket wire protocol
// and never touches the broker's internals.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	agnoio "github.com/irnas/koruza-control"
	"github.com/irnas/koruza-control/internal/protocol"

	"github.com/alecthomas/kingpin"
)

var (
	app    = kingpin.New("koruza-ctl", "Interactive terminal controller for koruza-control")
	socket = app.Arg("socket", "Path to the broker's unix socket").Default("/run/koruza-control.sock").String()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	arb, err := agnoio.NewArbiter(context.Background(), 2*time.Second, "unix://"+*socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, "koruza-ctl:", err)
		os.Exit(2)
	}
	defer arb.Close()

	fmt.Println("koruza-ctl: w/a/s/d move the mirror, p pings, : lists commands, q quits")

	in := bufio.NewReader(os.Stdin)
	for {
		key, _, err := in.ReadRune()
		if err != nil {
			return
		}

		var cmd agnoio.Command
		switch key {
		case 'q':
			return
		case ':':
			fmt.Print(protocol.Commands.String())
			continue
		case 'w':
			cmd = protocol.Commands["move-up"]
		case 's':
			cmd = protocol.Commands["move-down"]
		case 'a':
			cmd = protocol.Commands["move-left"]
		case 'd':
			cmd = protocol.Commands["move-right"]
		case 'p':
			cmd = protocol.Commands["ping"]
		default:
			continue
		}

		rsp := arb.Control(cmd)
		fmt.Println(rsp.String())
	}
}
