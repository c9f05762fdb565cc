// sensorctl is a bench diagnostic tool for the sensor cable: it issues single
// protocol commands and prints the decoded result or raw response hex.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"vent-monitor/internal/protocol"
	"vent-monitor/internal/utils"
)

var (
	serialPort string
	baudRate   int
	busAddress uint8
	timeout    time.Duration
)

func main() {
	root := &cobra.Command{
		Use:           "sensorctl",
		Short:         "Diagnostic commands for the ventilator sensor cable",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serialPort, "port", "/dev/ttyUSB0", "serial port of the sensor cable")
	root.PersistentFlags().IntVar(&baudRate, "baud", 115200, "baud rate")
	root.PersistentFlags().Uint8Var(&busAddress, "address", 0x01, "bus address")
	root.PersistentFlags().DurationVar(&timeout, "timeout", time.Second, "read timeout")

	root.AddCommand(
		versionCmd(),
		testCmd(),
		pressureCmd(),
		flowCmd(),
		hexCmd("raw-flow", "Read the uncorrected flow count", (*protocol.Codec).RawFlow),
		hexCmd("flow-scale", "Read the flow calibration scale", (*protocol.Codec).FlowScale),
		hexCmd("flow-offset", "Read the flow calibration offset", (*protocol.Codec).FlowOffset),
		tempCmd(),
		hexCmd("temp-scale", "Read the temperature scale register", (*protocol.Codec).TemperatureScale),
		hexCmd("temp-offset", "Read the temperature offset register", (*protocol.Codec).TemperatureOffset),
		tempForceCmd(),
		heaterCmd(),
		resetCmd(),
		initCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withCodec opens the serial port, runs fn against a codec and closes it.
func withCodec(fn func(*protocol.Codec) error) error {
	port, err := utils.OpenSerial(utils.SerialParams{
		Address:  serialPort,
		BaudRate: baudRate,
		Timeout:  timeout,
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", serialPort, err)
	}
	defer func(c io.Closer) { _ = c.Close() }(port)
	return fn(protocol.NewCodec(port, busAddress))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Read software and hardware versions of the cable",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCodec(func(c *protocol.Codec) error {
				sw, err := c.SoftwareVersion()
				if err != nil {
					return err
				}
				hw, err := c.HardwareVersion()
				if err != nil {
					return err
				}
				fmt.Printf("software: %s\nhardware: %s\n", sw, hw)
				return nil
			})
		},
	}
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Issue the link test command",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCodec(func(c *protocol.Codec) error {
				resp, err := c.Test()
				if err != nil {
					return err
				}
				fmt.Println(resp)
				return nil
			})
		},
	}
}

func pressureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pressure",
		Short: "Read the airway pressure in cmH2O",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCodec(func(c *protocol.Codec) error {
				p, err := c.Pressure()
				if err != nil {
					return err
				}
				fmt.Printf("%.2f cmH2O\n", p)
				return nil
			})
		},
	}
}

func flowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flow",
		Short: "Read the flow in L/min",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCodec(func(c *protocol.Codec) error {
				f, err := c.Flow()
				if err != nil {
					return err
				}
				fmt.Printf("%.3f L/min\n", f)
				return nil
			})
		},
	}
}

func tempCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "temp",
		Short: "Read the raw temperature count",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCodec(func(c *protocol.Codec) error {
				raw, err := c.Temperature()
				if err != nil {
					return err
				}
				fmt.Printf("raw count: %d\n", raw)
				return nil
			})
		},
	}
}

func tempForceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "temp-force",
		Short: "Force an on-board temperature recalculation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCodec(func(c *protocol.Codec) error {
				raw, err := c.ForceTemperatureUpdate()
				if err != nil {
					return err
				}
				fmt.Printf("raw count: %d\n", raw)
				return nil
			})
		},
	}
}

func heaterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heater [get|on|off|power]",
		Short: "Read or switch the flow sensor heater",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCodec(func(c *protocol.Codec) error {
				var (
					resp string
					err  error
				)
				switch args[0] {
				case "get":
					resp, err = c.HeaterState()
				case "on":
					resp, err = c.SetHeaterState(true)
				case "off":
					resp, err = c.SetHeaterState(false)
				case "power":
					resp, err = c.HeaterPower()
				default:
					return fmt.Errorf("unknown heater action %q", args[0])
				}
				if err != nil {
					return err
				}
				fmt.Println(resp)
				return nil
			})
		},
	}
	return cmd
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [board|sensor|soft]",
		Short: "Reset the comm board or the attached sensors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCodec(func(c *protocol.Codec) error {
				var (
					resp string
					err  error
				)
				switch args[0] {
				case "board":
					resp, err = c.HardResetBoard()
				case "sensor":
					resp, err = c.HardResetSensor()
				case "soft":
					resp, err = c.SoftResetSensor()
				default:
					return fmt.Errorf("unknown reset target %q", args[0])
				}
				if err != nil {
					return err
				}
				fmt.Println(resp)
				return nil
			})
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the flow sensor and verify the command echo",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCodec(func(c *protocol.Codec) error {
				ok, err := c.InitFlowSensor()
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("flow sensor: %w", protocol.ErrProtocolMismatch)
				}
				fmt.Println("flow sensor initialized")
				return nil
			})
		},
	}
}

// hexCmd builds a subcommand for operations that only print raw response hex.
func hexCmd(use, short string, op func(*protocol.Codec) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCodec(func(c *protocol.Codec) error {
				resp, err := op(c)
				if err != nil {
					return err
				}
				fmt.Println(resp)
				return nil
			})
		},
	}
}
