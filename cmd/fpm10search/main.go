// Command fpm10search captures a scan through an interactive console
// session and searches the module's library for a matching template.
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

func (l *consoleListener) WaitWhileDataTransferring() {}

func main() {
	var (
		port     string
		baud     int
		password uint32
	)

	root := &cobra.Command{
		Use:   "fpm10search",
		Short: "Search an FPM10 module's library for a scanned fingerprint",
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

			result, err := engine.Search(listener)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			if match, ok := result.Get(); ok {
				fmt.Printf("Match found: slot %d, score %d.\n", match.ID, match.MatchScore)
			} else {
				fmt.Println("No match found in the library.")
			}
			return nil
		},
	}

	root.Flags().StringVar(&port, "port", "/dev/ttyUSB0", "serial port the module is attached to")
	root.Flags().IntVar(&baud, "baud", 57600, "serial link speed")
	root.Flags().Uint32Var(&password, "password", 0, "module handshake password")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
