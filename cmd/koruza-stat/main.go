// Command koruza-stat periodically polls the broker for link status and
// appends the result to a state file and a rolling log file. It is an
// ordinary client of the broker's unix-socket wire protocol.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	agnoio "github.com/irnas/koruza-control"
	"github.com/irnas/koruza-control/internal/protocol"

	"github.com/alecthomas/kingpin"
)

var (
	app      = kingpin.New("koruza-stat", "Periodic link status collector for koruza-control")
	socket   = app.Flag("socket", "Path to the broker's unix socket").Short('s').Default("/run/koruza-control.sock").String()
	stateOut = app.Flag("state", "Path to the state file, overwritten on every poll").Short('o').Default("/var/lib/koruza-control/status").String()
	logOut   = app.Flag("log", "Path to the rolling log file, appended on every poll").Short('l').Default("/var/log/koruza-control/status.log").String()
	interval = app.Flag("interval", "Polling interval").Short('i').Default("30s").Duration()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	arb, err := agnoio.NewArbiter(context.Background(), 2*time.Second, "unix://"+*socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, "koruza-stat:", err)
		os.Exit(2)
	}
	defer arb.Close()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	poll(arb)
	for range ticker.C {
		poll(arb)
	}
}

func poll(arb agnoio.Arbiter) {
	rsp := arb.Control(protocol.Commands["status"])

	stamp := time.Now().Format(time.RFC3339)
	line := fmt.Sprintf("%s\t%s\n", stamp, rsp.String())

	if err := appendLine(*logOut, line); err != nil {
		fmt.Fprintln(os.Stderr, "koruza-stat: writing log:", err)
	}
	if err := os.WriteFile(*stateOut, []byte(line), 0644); err != nil {
		fmt.Fprintln(os.Stderr, "koruza-stat: writing state:", err)
	}
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line)
	return err
}
