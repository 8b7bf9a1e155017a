// Command sessiondemo exercises the Dispatcher and Connection Pool
// against a YAML device inventory, the way morganhein-gondi's
// cmd/gondi/main.go drove its CSV inventory — flags instead of a fixed
// file path, and a device-type tag per row instead of a single switch.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/netauto/sessioncore/channelio"
	"github.com/netauto/sessioncore/dispatcher"
	"github.com/netauto/sessioncore/logger"
	"github.com/netauto/sessioncore/schema"
)

type inventoryDevice struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	DeviceType     string `yaml:"deviceType"`
	EnablePassword string `yaml:"enablePassword"`
	Command        string `yaml:"command"`
}

type inventory struct {
	Devices []inventoryDevice `yaml:"devices"`
}

func main() {
	inventoryPath := flag.String("inventory", "inventory.yaml", "YAML file listing devices to exercise")
	host := flag.String("host", "", "single device host (overrides -inventory)")
	port := flag.Int("port", 22, "single device port")
	username := flag.String("username", "", "single device username")
	password := flag.String("password", "", "single device password")
	deviceType := flag.String("device-type", "", "single device type tag")
	command := flag.String("command", "show version", "command to send")
	pooled := flag.Bool("pool", false, "use connection pooling")
	interactive := flag.Bool("interactive", false, "attach the local terminal directly to the device shell instead of sending one command")
	flag.Parse()

	if *interactive {
		if *host == "" {
			logger.Log.Error("-interactive requires -host (a single device, not an inventory file)")
			os.Exit(1)
		}
		d := inventoryDevice{Host: *host, Port: *port, Username: *username, Password: *password, DeviceType: *deviceType}
		if err := runInteractive(d); err != nil {
			logger.Log.Errorf("%s: %s", d.Host, err)
			os.Exit(1)
		}
		return
	}

	var devices []inventoryDevice
	if *host != "" {
		devices = []inventoryDevice{{
			Host: *host, Port: *port, Username: *username,
			Password: *password, DeviceType: *deviceType, Command: *command,
		}}
	} else {
		loaded, err := loadInventory(*inventoryPath)
		if err != nil {
			logger.Log.Errorf("loading inventory: %s", err)
			os.Exit(1)
		}
		devices = loaded
	}

	exit := 0
	for _, d := range devices {
		if err := runOne(d, *pooled); err != nil {
			logger.Log.Errorf("%s: %s", d.Host, err)
			exit = 1
		}
	}
	os.Exit(exit)
}

func loadInventory(path string) ([]inventoryDevice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening inventory file: %w", err)
	}
	defer f.Close()

	var inv inventory
	if err := yaml.NewDecoder(f).Decode(&inv); err != nil {
		return nil, fmt.Errorf("parsing inventory yaml: %w", err)
	}
	return inv.Devices, nil
}

func runOne(d inventoryDevice, pooled bool) error {
	creds := schema.Credentials{
		Host:           d.Host,
		Port:           d.Port,
		Username:       d.Username,
		Auth:           schema.AuthPassword,
		Password:       d.Password,
		DeviceType:     schema.DeviceType(d.DeviceType),
		EnablePassword: d.EnablePassword,
		ConnectTimeout: 15 * time.Second,
	}
	advanced := schema.AdvancedOptions{}
	if pooled {
		t := true
		advanced.ConnectionPooling = &t
	}

	sess, err := dispatcher.Open(creds, advanced)
	if err != nil {
		return fmt.Errorf("dispatching: %w", err)
	}
	defer func() {
		if pooled {
			dispatcher.Release(creds)
			return
		}
		_ = sess.Disconnect()
	}()

	result := sess.SendCommand(d.Command)
	if !result.Success {
		return fmt.Errorf("command failed: %s", result.Error)
	}
	fmt.Printf("=== %s (%s) ===\n%s\n", d.Host, sess.DeviceType(), result.Output)
	return nil
}

// rawTerminal is satisfied by *transport.Session and, through embedding,
// by *jumphost.Wrapper — whatever the Dispatcher handed back, this is
// enough to drive it as an interactive pass-through terminal.
type rawTerminal interface {
	Channel() *channelio.Channel
	Newline() string
}

// runInteractive attaches the local controlling terminal directly to the
// device's shell channel, sized to the local window, in the manner of
// DevOps2100-lwshell's internal/ssh/client.go Connect: put the local fd in
// raw mode, read its size with golang.org/x/term, and pump bytes both
// ways until stdin closes. Unlike that teacher, which forwards straight
// through an *ssh.Session's own Stdin/Stdout, this repo's Session already
// owns its channel via the Channel I/O layer (§4.2), so the pass-through
// here drives that same primitive instead of a second, parallel pipe.
func runInteractive(d inventoryDevice) error {
	creds := schema.Credentials{
		Host:           d.Host,
		Port:           d.Port,
		Username:       d.Username,
		Auth:           schema.AuthPassword,
		Password:       d.Password,
		DeviceType:     schema.DeviceType(d.DeviceType),
		ConnectTimeout: 15 * time.Second,
	}
	sess, err := dispatcher.Create(creds, schema.AdvancedOptions{})
	if err != nil {
		return fmt.Errorf("dispatching: %w", err)
	}
	if err := sess.Connect(); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer sess.Disconnect()

	rt, ok := sess.(rawTerminal)
	if !ok {
		return fmt.Errorf("device type %s does not expose a raw channel for interactive mode", sess.DeviceType())
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("stdin is not a terminal, cannot enter interactive mode")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("putting local terminal in raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	w, h, err := term.GetSize(fd)
	if err != nil {
		w, h = 80, 24
	}
	logger.Log.Debugf("interactive session to %s, local terminal %dx%d", d.Host, w, h)

	ch := rt.Channel()
	nl := rt.Newline()

	stdinClosed := make(chan struct{})
	go func() {
		defer close(stdinClosed)
		buf := make([]byte, 512)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				line := string(buf[:n])
				if line == "\r" || line == "\n" {
					line = nl
				}
				if werr := ch.Write(line); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-stdinClosed:
			return nil
		default:
		}
		chunk := ch.Read(150 * time.Millisecond)
		if chunk != "" {
			fmt.Fprint(os.Stdout, chunk)
		}
	}
}
