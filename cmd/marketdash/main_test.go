package main

import "testing"

func TestConfigDirFromArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"absent", []string{"marketdash", "serve"}, ""},
		{"space form", []string{"marketdash", "--config", "/tmp/cfg", "serve"}, "/tmp/cfg"},
		{"equals form", []string{"marketdash", "--config=/tmp/cfg", "serve"}, "/tmp/cfg"},
		{"trailing flag without value", []string{"marketdash", "serve", "--config"}, ""},
		{"last occurrence wins", []string{"marketdash", "--config=/a", "--config", "/b"}, "/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := configDirFromArgs(tt.args); got != tt.want {
				t.Errorf("configDirFromArgs(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}
