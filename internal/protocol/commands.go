// Package protocol holds the device-facing command set shared by the
// broker's auxiliary clients. The commands and their regexes are treated as
// opaque payload by the broker itself; this package only exists so
// koruza-ctl and koruza-stat don't each redefine the same table of
// agnoio.Command values.
package protocol

import (
	"regexp"
	"time"

	agnoio "github.com/irnas/koruza-control"
)

var (
	startOK  = regexp.MustCompile(`#START`)
	errReply = regexp.MustCompile(`#ERROR`)
)

// Commands is the koruza controller's command set, keyed by name. Every
// entry's Response/Error regexes match on the envelope header the broker
// forwards verbatim or synthesizes, rather than on any device-specific
// payload.
var Commands = agnoio.Commands{
	"ping": {
		Name:        "Ping",
		Prototype:   "PING\n",
		Timeout:     2 * time.Second,
		Response:    startOK,
		Error:       errReply,
		Description: "Check that the link controller is responding",
	},
	"status": {
		Name:        "Status",
		Prototype:   "STATUS\n",
		Timeout:     2 * time.Second,
		Response:    startOK,
		Error:       errReply,
		Description: "Read back link alignment and signal status",
	},
	"move-up": {
		Name:        "Move Up",
		Prototype:   "MOVE U\n",
		Timeout:     2 * time.Second,
		Response:    startOK,
		Error:       errReply,
		Description: "Step the pointing mirror up",
	},
	"move-down": {
		Name:        "Move Down",
		Prototype:   "MOVE D\n",
		Timeout:     2 * time.Second,
		Response:    startOK,
		Error:       errReply,
		Description: "Step the pointing mirror down",
	},
	"move-left": {
		Name:        "Move Left",
		Prototype:   "MOVE L\n",
		Timeout:     2 * time.Second,
		Response:    startOK,
		Error:       errReply,
		Description: "Step the pointing mirror left",
	},
	"move-right": {
		Name:        "Move Right",
		Prototype:   "MOVE R\n",
		Timeout:     2 * time.Second,
		Response:    startOK,
		Error:       errReply,
		Description: "Step the pointing mirror right",
	},
	"calibrate": {
		Name:        "Calibrate",
		Prototype:   "CALIB %s\n",
		Timeout:     5 * time.Second,
		Response:    startOK,
		Error:       errReply,
		Description: "Apply a calibration curve value pulled from the calibration service",
	},
}
