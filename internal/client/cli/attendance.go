package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/models"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/scanner"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/common"
)

// CheckIn scans one code and submits it with the device position.
func (a *App) CheckIn(ctx context.Context) error {
	if a.session.Current() == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return common.ErrNotAuthenticated
	}

	code, err := a.scanCode(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Scan failed: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Code scanned: %s\n", code)
	fmt.Fprintln(a.out, "Submitting check-in with your current location...")

	message, err := a.attendance.CheckInQR(ctx, code)
	if err != nil {
		fmt.Fprintf(a.out, "Check-in failed: %v\n", err)
		return err
	}
	if message == "" {
		message = "You're all set for today!"
	}
	fmt.Fprintf(a.out, "Check-in successful: %s\n", message)
	return nil
}

// scanCode reads one decoded code: from the configured scanner device if
// set, otherwise from one line of terminal input (a wedge-mode scanner
// types into the terminal like a keyboard anyway).
func (a *App) scanCode(ctx context.Context) (string, error) {
	if a.config.ScannerDevice != "" {
		f, err := os.Open(a.config.ScannerDevice)
		if err != nil {
			return "", fmt.Errorf("opening scanner device: %w", err)
		}
		defer f.Close()
		fmt.Fprintln(a.out, "Waiting for scan...")
		return scanner.ScanOne(ctx, scanner.NewLineScanner(f))
	}

	fmt.Fprint(a.out, "Scan or paste the QR code\n> ")
	pr, pw := io.Pipe()
	go func() {
		line, err := a.reader.ReadString('\n')
		if err != nil && line == "" {
			pw.CloseWithError(err)
			return
		}
		pw.Write([]byte(line))
		pw.Close()
	}()
	defer pr.Close()
	return scanner.ScanOne(ctx, scanner.NewLineScanner(pr))
}

// CheckOut asks for the typed confirmation phrase and closes today's
// record. Without the exact phrase nothing is sent.
func (a *App) CheckOut(ctx context.Context) error {
	if a.session.Current() == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return common.ErrNotAuthenticated
	}

	phrase, err := getSimpleText(a.reader,
		fmt.Sprintf("Check-out cannot be undone. Type '%s' to proceed", common.CheckOutConfirmationPhrase), a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}

	message, err := a.attendance.CheckOut(ctx, phrase)
	if err != nil {
		if errors.Is(err, common.ErrConfirmationMismatch) {
			fmt.Fprintf(a.out, "Check-out cancelled: please type '%s' to proceed.\n", common.CheckOutConfirmationPhrase)
		} else {
			fmt.Fprintf(a.out, "Check-out failed: %v\n", err)
		}
		return err
	}
	if message == "" {
		message = "Checked out. See you tomorrow!"
	}
	fmt.Fprintf(a.out, "Check-out successful: %s\n", message)
	return nil
}

// Today prints today's attendance record.
func (a *App) Today(ctx context.Context) error {
	if a.session.Current() == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return common.ErrNotAuthenticated
	}

	record, err := a.attendance.Today(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	printRecord(a.out, record)
	return nil
}

func printRecord(w io.Writer, record *models.AttendanceRecord) {
	if record == nil || record.CheckInTime == nil {
		fmt.Fprintln(w, "Not checked in today.")
		return
	}
	fmt.Fprintf(w, "Checked in at %s (%s)\n", record.CheckInTime.Local().Format("15:04:05"), record.CheckInMethod)
	if record.CheckOutTime != nil {
		fmt.Fprintf(w, "Checked out at %s (%s)\n", record.CheckOutTime.Local().Format("15:04:05"), record.CheckOutMethod)
	} else {
		fmt.Fprintln(w, "Not checked out yet.")
	}
}
