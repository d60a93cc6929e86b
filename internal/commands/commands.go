// Package commands holds the built-in AT command references for the module
// families commonly wired to a serial adapter.
package commands

import "strings"

// Command is one reference entry
type Command struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// Category groups related commands
type Category struct {
	Name     string    `json:"name"`
	Commands []Command `json:"commands"`
}

// Set is a complete command reference for one device family
type Set struct {
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
}

// Sets returns all built-in references
func Sets() []Set {
	return []Set{ESP8266(), BluetoothHC()}
}

// Find looks up a set by name, case-insensitively
func Find(name string) (Set, bool) {
	for _, s := range Sets() {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Set{}, false
}

// ESP8266 returns the AT reference for ESP8266/ESP-01 WiFi modules
func ESP8266() Set {
	return Set{
		Name: "esp8266",
		Categories: []Category{
			{
				Name: "Basic",
				Commands: []Command{
					{"AT", "Liveness test. Replies 'OK' when the module is working."},
					{"AT+RST", "Restarts the module."},
					{"AT+GMR", "Prints the firmware version."},
					{"AT+GSLP=<time>", "Enters deep sleep for <time> milliseconds."},
					{"ATE0", "Disables command echo."},
					{"ATE1", "Enables command echo."},
				},
			},
			{
				Name: "WiFi",
				Commands: []Command{
					{"AT+CWMODE=<mode>", "Sets the WiFi mode: 1=station, 2=AP, 3=station+AP."},
					{"AT+CWMODE?", "Prints the current WiFi mode."},
					{"AT+CWJAP=\"<ssid>\",\"<password>\"", "Joins a WiFi network."},
					{"AT+CWJAP?", "Prints the currently joined network."},
					{"AT+CWLAP", "Lists visible access points."},
					{"AT+CWQAP", "Leaves the current WiFi network."},
					{"AT+CWSAP=\"<ssid>\",\"<pwd>\",<chl>,<ecn>", "Configures access point mode."},
					{"AT+CWSAP?", "Prints the access point configuration."},
				},
			},
			{
				Name: "TCP/IP",
				Commands: []Command{
					{"AT+CIPSTATUS", "Prints the connection status."},
					{"AT+CIPSTART=\"<type>\",\"<addr>\",<port>", "Opens a TCP or UDP connection."},
					{"AT+CIPSEND=<length>", "Sends data of the given length."},
					{"AT+CIPCLOSE", "Closes the TCP/UDP connection."},
					{"AT+CIFSR", "Prints the local IP address."},
					{"AT+CIPMUX=<mode>", "Enables (1) or disables (0) multiple connections."},
					{"AT+CIPSERVER=<mode>[,<port>]", "Runs the module as a TCP server."},
				},
			},
			{
				Name: "Advanced",
				Commands: []Command{
					{"AT+UART_DEF=<baud>,<databits>,<stopbits>,<parity>,<flow control>", "Sets the persistent UART parameters."},
					{"AT+UART_CUR=<baud>,<databits>,<stopbits>,<parity>,<flow control>", "Sets the UART parameters until the next reset."},
					{"AT+SLEEP=<mode>", "Sets the sleep mode: 0=disabled, 1=light, 2=modem."},
					{"AT+RFPOWER=<power>", "Sets the RF transmit power (0-82, max=82)."},
					{"AT+CWDHCP=<mode>,<en>", "Enables/disables DHCP: mode=0/1/2 (STA/AP/both), en=0/1."},
					{"AT+RESTORE", "Restores factory settings."},
				},
			},
		},
	}
}

// BluetoothHC returns the AT reference for HC-05 and HC-06 Bluetooth modules
func BluetoothHC() Set {
	return Set{
		Name: "hc-05/06",
		Categories: []Category{
			{
				Name: "Basic",
				Commands: []Command{
					{"AT", "Liveness test. Replies 'OK' when the module is working."},
					{"AT+VERSION", "Prints the firmware version."},
					{"AT+NAME", "Prints the current module name."},
					{"AT+NAME=<name>", "Changes the Bluetooth module name."},
					{"AT+RESET", "Restarts the module."},
				},
			},
			{
				Name: "Bluetooth",
				Commands: []Command{
					{"AT+ADDR", "Prints the module's MAC address."},
					{"AT+ROLE=0", "Puts the module in slave mode (HC-05 only)."},
					{"AT+ROLE=1", "Puts the module in master mode (HC-05 only)."},
					{"AT+PSWD=<code>", "Sets the pairing PIN (usually 1234)."},
					{"AT+PIN<code>", "Sets the pairing PIN (HC-06 format)."},
					{"AT+POLAR=<0/1>,<0/1>", "Configures the state pin polarity (HC-05 only)."},
				},
			},
			{
				Name: "UART",
				Commands: []Command{
					{"AT+UART=<baud>,<stop>,<parity>", "Configures the UART (HC-05). Example: AT+UART=9600,0,0"},
					{"AT+BAUD<n>", "Sets the baud rate (HC-06). n=1:1200, 2:2400, 3:4800, 4:9600, 5:19200, 6:38400, 7:57600, 8:115200"},
					{"AT+ORGL", "Restores factory settings (HC-05 only)."},
					{"AT+RMAAD", "Clears all paired devices (HC-05 only)."},
				},
			},
			{
				Name: "Connection (HC-05 only)",
				Commands: []Command{
					{"AT+STATE", "Prints the current connection state."},
					{"AT+INIT", "Initializes the SPP profile."},
					{"AT+INQ", "Scans for nearby Bluetooth devices."},
					{"AT+LINK=<addr>", "Connects to the given MAC address."},
					{"AT+DISC", "Drops the current connection."},
					{"AT+CMODE=0", "Connects only to the configured address."},
					{"AT+CMODE=1", "Connects to any available device."},
				},
			},
		},
	}
}
