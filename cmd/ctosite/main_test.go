package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/ctosite/internal/config"
)

func boolPtr(v bool) *bool { return &v }

func TestApplyBuildFlagsOfflinePrecedence(t *testing.T) {
	cases := []struct {
		name string
		cfg  bool // value after file + env overlay
		flag *bool
		want bool
	}{
		{"flag absent keeps config", true, nil, true},
		{"flag absent keeps config off", false, nil, false},
		{"flag enables", false, boolPtr(true), true},
		{"explicit flag off overrides env", true, boolPtr(false), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prev := CLI.Build.Offline
			defer func() { CLI.Build.Offline = prev }()
			CLI.Build.Offline = tc.flag

			cfg := config.Default()
			cfg.Offline = tc.cfg
			applyBuildFlags(cfg)
			assert.Equal(t, tc.want, cfg.Offline)
		})
	}
}

func TestApplyBuildFlagsOverridePaths(t *testing.T) {
	prevSrc, prevOut := CLI.Build.Src, CLI.Build.Out
	defer func() { CLI.Build.Src, CLI.Build.Out = prevSrc, prevOut }()
	CLI.Build.Src = "models"
	CLI.Build.Out = "public"

	cfg := config.Default()
	applyBuildFlags(cfg)
	assert.Equal(t, "models", cfg.Source)
	assert.Equal(t, "public", cfg.Output)
}
