package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memwalk/offsets"
	"memwalk/scan"
)

func parseTargetFlags(t *testing.T, args ...string) (*TargetFlags, *pflag.FlagSet) {
	t.Helper()
	var f TargetFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.AddFlags(fs)
	require.NoError(t, fs.Parse(args))
	return &f, fs
}

func TestResolveDefaultTarget(t *testing.T) {
	f, fs := parseTargetFlags(t)

	target, err := f.Resolve(fs)
	require.NoError(t, err)
	assert.Equal(t, "roblox", target.Name)
	assert.Equal(t, "RenderJob(EarlyRendering;", target.Signature)
	assert.Equal(t, "0x1E8,0x118,0x1A8", target.Offsets().String())
}

func TestResolveOverrides(t *testing.T) {
	f, fs := parseTargetFlags(t,
		"--process", "game.exe",
		"--module", "engine.dll",
		"--hex", "48 8B ?? 10",
		"--chain", "0x10,-0x8",
		"--all", "--cap", "5",
	)

	target, err := f.Resolve(fs)
	require.NoError(t, err)
	assert.Equal(t, "game.exe", target.Process)
	assert.Equal(t, "engine.dll", target.Module)
	assert.Empty(t, target.Signature)
	assert.Equal(t, "48 8B ?? 10", target.HexSignature)
	assert.Equal(t, []offsets.Offset{0x10, -0x8}, target.Chain)
	assert.Equal(t, "Step 1", target.Label(0))
	assert.Equal(t, 5, target.Cap)

	mode, err := target.ScanMode()
	require.NoError(t, err)
	assert.Equal(t, scan.AllMatches, mode)
}

func TestResolveEmptyChain(t *testing.T) {
	f, fs := parseTargetFlags(t, "--chain", "")

	target, err := f.Resolve(fs)
	require.NoError(t, err)
	assert.Empty(t, target.Chain)
}

func TestResolveErrors(t *testing.T) {
	for name, args := range map[string][]string{
		"exclusive signatures": {"--signature", "abc", "--hex", "61"},
		"bad chain":            {"--chain", "0x1E8,zz"},
		"bad hex":              {"--hex", "4G"},
		"unknown target":       {"--target", "missing"},
		"missing config":       {"--config", filepath.Join(t.TempDir(), "none.yaml")},
	} {
		t.Run(name, func(t *testing.T) {
			f, fs := parseTargetFlags(t, args...)
			_, err := f.Resolve(fs)
			assert.Error(t, err)
		})
	}
}

func TestOptions(t *testing.T) {
	f, _ := parseTargetFlags(t, "--strategy", "Concurrent", "--maxdop", "3", "--from-zero")

	opts, err := f.Options()
	require.NoError(t, err)
	assert.Equal(t, scan.Concurrent, opts.Strategy)
	assert.Equal(t, 3, opts.MaxDOP)
	assert.True(t, opts.FromZero)

	f, _ = parseTargetFlags(t, "--strategy", "random")
	_, err = f.Options()
	assert.Error(t, err)
}

func TestScanCommand(t *testing.T) {
	data := make([]byte, 0x2000)
	copy(data[0x500:], "XRenderJob(EarlyRendering;Y")
	path := filepath.Join(t.TempDir(), "dump.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	rootCmd.SetArgs([]string{"scan", "--no-color", "--file", path, "--base", "0x1000", "--context", "16"})
	assert.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"scan", "--file", path, "--strategy", "bogus"})
	assert.Error(t, rootCmd.Execute())
}
