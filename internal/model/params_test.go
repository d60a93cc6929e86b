package model

import "testing"

func baseParams() ConnectionParameters {
	return ConnectionParameters{
		Port:        "/dev/ttyUSB0",
		BaudRate:    115200,
		DataBits:    8,
		Parity:      ParityNone,
		StopBits:    StopBitsOne,
		FlowControl: FlowControlNone,
	}
}

func TestConnectionParametersValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConnectionParameters)
		wantErr bool
	}{
		{"defaults", func(p *ConnectionParameters) {}, false},
		{"empty port", func(p *ConnectionParameters) { p.Port = "" }, true},
		{"zero baud", func(p *ConnectionParameters) { p.BaudRate = 0 }, true},
		{"negative baud", func(p *ConnectionParameters) { p.BaudRate = -9600 }, true},
		{"nonstandard baud accepted", func(p *ConnectionParameters) { p.BaudRate = 31250 }, false},
		{"data bits too low", func(p *ConnectionParameters) { p.DataBits = 4 }, true},
		{"data bits too high", func(p *ConnectionParameters) { p.DataBits = 9 }, true},
		{"seven data bits", func(p *ConnectionParameters) { p.DataBits = 7 }, false},
		{"mark parity", func(p *ConnectionParameters) { p.Parity = ParityMark }, false},
		{"bogus parity", func(p *ConnectionParameters) { p.Parity = "weird" }, true},
		{"two stop bits", func(p *ConnectionParameters) { p.StopBits = StopBitsTwo }, false},
		{"bogus stop bits", func(p *ConnectionParameters) { p.StopBits = "3" }, true},
		{"rts/cts", func(p *ConnectionParameters) { p.FlowControl = FlowControlRTSCTS }, false},
		{"bogus flow control", func(p *ConnectionParameters) { p.FlowControl = "magic" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseParams()
			tt.mutate(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConnectionParametersString(t *testing.T) {
	p := baseParams()
	if got := p.String(); got != "/dev/ttyUSB0 (115200 8N1)" {
		t.Errorf("String() = %q", got)
	}

	p.Parity = ParityEven
	p.DataBits = 7
	p.StopBits = StopBitsTwo
	if got := p.String(); got != "/dev/ttyUSB0 (115200 7E2)" {
		t.Errorf("String() = %q", got)
	}
}
