// Package ports enumerates the serial ports present on the host.
package ports

import (
	"fmt"
	"sort"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Info describes one serial port. USB metadata is only populated for ports
// backed by a USB adapter; built-in UARTs report IsUSB false.
type Info struct {
	Name         string `json:"name"`
	Product      string `json:"product,omitempty"`
	IsUSB        bool   `json:"is_usb"`
	VID          string `json:"vid,omitempty"`
	PID          string `json:"pid,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
}

// String returns a one-line summary suitable for listings
func (i Info) String() string {
	if !i.IsUSB {
		return i.Name
	}
	s := fmt.Sprintf("%s [USB %s:%s]", i.Name, i.VID, i.PID)
	if i.Product != "" {
		s += " " + i.Product
	}
	return s
}

// List returns the names of all serial ports, sorted
func List() ([]string, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Details returns the full description of every serial port, sorted by name
func Details() ([]Info, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	infos := make([]Info, 0, len(details))
	for _, d := range details {
		infos = append(infos, Info{
			Name:         d.Name,
			Product:      d.Product,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
		})
	}
	sort.Slice(infos, func(a, b int) bool { return infos[a].Name < infos[b].Name })
	return infos, nil
}

// Lookup returns the description of a single port by name
func Lookup(name string) (Info, error) {
	infos, err := Details()
	if err != nil {
		return Info{}, err
	}
	for _, info := range infos {
		if info.Name == name {
			return info, nil
		}
	}
	return Info{}, fmt.Errorf("port %q not found", name)
}
