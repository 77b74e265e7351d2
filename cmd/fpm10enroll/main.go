// Command fpm10enroll captures two scans through an interactive console
// session and stores the resulting template at a library slot.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ics-upjs/FPM10FingerprintSensor/sensor"
	"github.com/ics-upjs/FPM10FingerprintSensor/workflow"
)

// consoleListener drives the operator through a HumanActionListener
// conversation over stdin/stdout.
type consoleListener struct {
	in *bufio.Reader
}

func (l *consoleListener) PutFinger() {
	fmt.Println("Place your finger on the sensor, then press Enter.")
	l.in.ReadString('\n')
}

func (l *consoleListener) RemoveFinger() {
	fmt.Println("Remove your finger.")
}

func (l *consoleListener) WaitWhileDataTransferring() {
	fmt.Println("Transferring scan data...")
}

func main() {
	var (
		port     string
		baud     int
		slot     int
		password uint32
	)

	root := &cobra.Command{
		Use:   "fpm10enroll",
		Short: "Enroll a fingerprint into an FPM10 module's library",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			s := sensor.New(port,
				sensor.WithBaud(baud),
				sensor.WithPassword(password),
				sensor.WithLogger(logger),
			)
			if err := s.Open(); err != nil {
				return fmt.Errorf("open sensor: %w", err)
			}
			defer s.Close()

			engine := workflow.NewEngine(s)
			listener := &consoleListener{in: bufio.NewReader(os.Stdin)}

			if err := engine.Enroll(slot, listener); err != nil {
				return fmt.Errorf("enroll: %w", err)
			}

			fmt.Printf("Enrolled fingerprint at slot %d.\n", slot)
			return nil
		},
	}

	root.Flags().StringVar(&port, "port", "/dev/ttyUSB0", "serial port the module is attached to")
	root.Flags().IntVar(&baud, "baud", 57600, "serial link speed")
	root.Flags().IntVar(&slot, "slot", 0, "library slot to store the template at")
	root.Flags().Uint32Var(&password, "password", 0, "module handshake password")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
