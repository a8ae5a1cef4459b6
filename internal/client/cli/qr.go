package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mdp/qrterminal/v3"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/qr"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/common"
)

// QRSession runs the rotating QR display for admins. "qr" ensures an
// active session exists; "qr resume" re-attaches to the current one after
// a restart without creating anything.
//
// While displayed, the code rotates automatically each time its countdown
// reaches zero. The admin types "stop" to end the session server-side, or
// presses Enter to leave the display with the session still running.
func (a *App) QRSession(ctx context.Context, args []string) error {
	current := a.session.Current()
	if current == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return common.ErrNotAuthenticated
	}
	if !current.Identity.Role.CanAdminister() {
		fmt.Fprintln(a.out, "Only admins can manage QR sessions.")
		return common.ErrUnauthorized
	}

	render := newQRRenderer(a.out)
	ctl := a.newController(render.update)

	var err error
	if len(args) > 0 && args[0] == "resume" {
		err = ctl.Resume(ctx)
	} else {
		err = ctl.Start(ctx)
	}
	if err != nil {
		fmt.Fprintf(a.out, "Could not load the QR session: %v\n", err)
		// Fall through: the controller stays interactive for retry/stop.
	}

	for {
		line, rerr := getSimpleText(a.reader, "\n[Enter] leave display · 'stop' end session · 'retry' after an error", a.out)
		if rerr != nil {
			ctl.Close()
			return rerr
		}
		switch line {
		case "":
			ctl.Close()
			fmt.Fprintln(a.out, "Display closed; the session keeps running until stopped.")
			return nil
		case "stop":
			if serr := ctl.Stop(ctx); serr != nil {
				fmt.Fprintf(a.out, "Failed to stop session: %v\n", serr)
				return serr
			}
			fmt.Fprintln(a.out, "QR session stopped.")
			return nil
		case "retry":
			if rerr := ctl.Retry(ctx); rerr != nil {
				fmt.Fprintf(a.out, "Still failing: %v\n", rerr)
			}
		default:
			fmt.Fprintln(a.out, "Unknown input:", line)
		}
	}
}

// qrRenderer writes controller snapshots to the terminal: the full code
// block when a new session arrives, a single countdown line per tick.
type qrRenderer struct {
	w        io.Writer
	lastCode string
}

func newQRRenderer(w io.Writer) *qrRenderer {
	return &qrRenderer{w: w}
}

func (r *qrRenderer) update(snap qr.Snapshot) {
	switch snap.State {
	case qr.StateLoading:
		fmt.Fprintln(r.w, "Loading QR session...")
	case qr.StateActive:
		if snap.Session.Code != r.lastCode {
			r.lastCode = snap.Session.Code
			r.renderCode(snap)
		}
		fmt.Fprintf(r.w, "\rNew code in: %s   scans: %d   radius: %dm ",
			formatCountdown(snap.Remaining), snap.Session.ScanCount, snap.Session.RadiusMeters)
	case qr.StateRefreshing:
		fmt.Fprint(r.w, "\rRefreshing...                                ")
	case qr.StateError:
		fmt.Fprintf(r.w, "\nCould not refresh the QR session: %v\n", snap.Err)
	case qr.StateStopped:
		fmt.Fprintln(r.w, "")
	}
}

func (r *qrRenderer) renderCode(snap qr.Snapshot) {
	fmt.Fprintln(r.w, "\nScan to mark attendance:")
	qrterminal.GenerateWithConfig(snap.Session.Code, qrterminal.Config{
		Level:     qrterminal.L,
		Writer:    r.w,
		BlackChar: qrterminal.BLACK,
		WhiteChar: qrterminal.WHITE,
		QuietZone: 1,
	})
}

func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
