package commands

import "testing"

func TestFind(t *testing.T) {
	tests := []struct {
		name  string
		query string
		found bool
	}{
		{"esp lowercase", "esp8266", true},
		{"esp mixed case", "ESP8266", true},
		{"bluetooth", "hc-05/06", true},
		{"unknown", "sim800", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, found := Find(tt.query)
			if found != tt.found {
				t.Fatalf("Find(%q) found = %v, want %v", tt.query, found, tt.found)
			}
			if found && len(set.Categories) == 0 {
				t.Errorf("set %q has no categories", set.Name)
			}
		})
	}
}

func TestSetsAreWellFormed(t *testing.T) {
	for _, set := range Sets() {
		if set.Name == "" {
			t.Fatal("set with empty name")
		}
		for _, cat := range set.Categories {
			if len(cat.Commands) == 0 {
				t.Errorf("%s/%s has no commands", set.Name, cat.Name)
			}
			for _, cmd := range cat.Commands {
				if cmd.Command == "" || cmd.Description == "" {
					t.Errorf("%s/%s has an incomplete entry: %+v", set.Name, cat.Name, cmd)
				}
			}
		}
	}
}
