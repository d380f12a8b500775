package locator

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memwalk/offsets"
	"memwalk/process"
	"memwalk/process/memory_map"
	"memwalk/process_blob"
	"memwalk/scan"
)

type fakeFinder struct {
	procs []process.ProcessInfo
	err   error
}

func (f fakeFinder) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	return f.procs, f.err
}

type fakeOpener struct {
	proc process.Process
	err  error
}

func (o fakeOpener) OpenProcess(pid process.ProcessID) (process.Process, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.proc, o.proc.Open(pid)
}

type fakeModules struct {
	module process.ModuleInfo
	err    error
}

func (m fakeModules) FindModule(pid process.ProcessID, name string) (process.ModuleInfo, error) {
	return m.module, m.err
}

type recorder struct {
	events []scan.Event
}

func (r *recorder) Emit(e scan.Event) {
	r.events = append(r.events, e)
}

func (r *recorder) phases() []scan.Phase {
	var out []scan.Phase
	for _, e := range r.events {
		out = append(out, e.Phase)
	}
	return out
}

func testTarget() offsets.Target {
	return offsets.Target{
		Name:      "roblox",
		Process:   "RobloxPlayerBeta.exe",
		Module:    "RobloxPlayerBeta.exe",
		Signature: "RenderJob(EarlyRendering;",
		Chain:     []offsets.Offset{0x1E8, 0x118, 0x1A8},
		Labels:    []string{"RenderView", "FakeDataModel", "RealDataModel"},
	}
}

// testDump maps [0x1000, 0x3000) with the signature at 0x1501 and a chain
// 0x1501 -> 0x2100 -> 0x2400 -> 0xDEAD0000
func testDump() *process_blob.ProcessDump {
	data := make([]byte, 0x2000)
	copy(data[0x500:], "XRenderJob(EarlyRendering;Y")
	binary.LittleEndian.PutUint64(data[0x1501+0x1E8-0x1000:], 0x2100)
	binary.LittleEndian.PutUint64(data[0x2100+0x118-0x1000:], 0x2400)
	binary.LittleEndian.PutUint64(data[0x2400+0x1A8-0x1000:], 0xDEAD0000)
	return process_blob.NewProcessDump().Map(0x1000, data, memory_map.PageReadWrite)
}

func newLocator(rec *recorder, finder process.ProcessFinder, opener process.ProcessOpener, modules process.ModuleFinder) *Locator {
	return New(finder, opener, modules, WithEvents(rec))
}

func TestLocate(t *testing.T) {
	rec := &recorder{}
	dump := testDump()
	l := newLocator(rec,
		fakeFinder{procs: []process.ProcessInfo{{PID: 4242, Name: "RobloxPlayerBeta.exe"}}},
		fakeOpener{proc: dump},
		fakeModules{module: process.ModuleInfo{Name: "RobloxPlayerBeta.exe", Base: 0x1000, Size: 0x2000}},
	)

	var inspected bool
	report, err := l.Locate(testTarget(), Options{
		Inspect: func(mem process.RemoteMemory, r Report) {
			inspected = true
			assert.Equal(t, process.ProcessMemoryAddress(0x1501), r.Match)
		},
	})
	require.NoError(t, err)

	assert.True(t, inspected)
	assert.True(t, report.Found)
	assert.Equal(t, process.ProcessID(4242), report.PID)
	assert.Equal(t, process.ProcessMemoryAddress(0x1000), report.Module.Base)
	assert.Equal(t, []process.ProcessMemoryAddress{0x1501}, report.Result.Addresses)
	require.Len(t, report.Steps, 3)
	assert.Equal(t, process.ProcessMemoryAddress(0x2100), report.Steps[0].Value)
	assert.Equal(t, process.ProcessMemoryAddress(0x2400), report.Steps[1].Value)
	assert.Equal(t, process.ProcessMemoryAddress(0xDEAD0000), report.Final)

	assert.Equal(t, []scan.Phase{
		scan.PhaseInit, scan.PhaseSuccess,
		scan.PhaseInit, scan.PhaseSuccess,
		scan.PhaseInit, scan.PhaseSuccess,
		scan.PhaseScan, scan.PhaseTime,
		scan.PhaseFound,
		scan.PhaseRead, scan.PhaseRead, scan.PhaseRead,
		scan.PhaseSuccess, scan.PhaseTime,
	}, rec.phases())

	found := rec.events[8]
	assert.True(t, found.HasAddress)
	assert.Equal(t, process.ProcessMemoryAddress(0x1501), found.Address)
	assert.Equal(t, "RealDataModel address", rec.events[11].Message)
}

func TestLocateSetupFailures(t *testing.T) {
	module := fakeModules{module: process.ModuleInfo{Base: 0x1000}}
	one := fakeFinder{procs: []process.ProcessInfo{{PID: 1}}}

	tests := []struct {
		name     string
		finder   process.ProcessFinder
		opener   process.ProcessOpener
		modules  process.ModuleFinder
		sentinel error
	}{
		{"process error", fakeFinder{err: process.ErrProcessNotFound}, fakeOpener{proc: testDump()}, module, process.ErrProcessNotFound},
		{"no processes", fakeFinder{}, fakeOpener{proc: testDump()}, module, process.ErrProcessNotFound},
		{"open", one, fakeOpener{err: errors.New("access denied")}, module, process.ErrProcessOpenFailed},
		{"module", one, fakeOpener{proc: testDump()}, fakeModules{err: errors.New("no such module")}, process.ErrModuleNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			_, err := newLocator(rec, tt.finder, tt.opener, tt.modules).Locate(testTarget(), Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			last := rec.events[len(rec.events)-1]
			assert.Equal(t, scan.PhaseError, last.Phase)
			assert.Equal(t, scan.SeverityError, last.Severity)

			for _, e := range rec.events {
				assert.NotEqual(t, scan.PhaseScan, e.Phase, "no scan after a setup failure")
			}
		})
	}
}

func TestRunNotFound(t *testing.T) {
	rec := &recorder{}
	l := newLocator(rec, fakeFinder{}, fakeOpener{}, fakeModules{})

	target := testTarget()
	target.Signature = "NotInMemory"
	report, err := l.Run(testDump(), 0, target, Options{})
	require.NoError(t, err)

	assert.False(t, report.Found)
	assert.Empty(t, report.Result.Addresses)
	assert.Empty(t, report.Steps)
	last := rec.events[len(rec.events)-1]
	assert.Equal(t, scan.PhaseError, last.Phase)
}

func TestRunBrokenChain(t *testing.T) {
	rec := &recorder{}
	l := newLocator(rec, fakeFinder{}, fakeOpener{}, fakeModules{})

	target := testTarget()
	target.Chain = []offsets.Offset{0x10000, 0x8}
	report, err := l.Run(testDump(), 0, target, Options{Strategy: scan.Concurrent, MaxDOP: 2})
	require.NoError(t, err)

	require.True(t, report.Found)
	require.Len(t, report.Steps, 2)
	assert.Error(t, report.Steps[0].Err)
	assert.Equal(t, process.ProcessMemoryAddress(0x8), report.Steps[1].Address)
	assert.Equal(t, process.ProcessMemoryAddress(0), report.Final)

	var warnings int
	for _, e := range rec.events {
		if e.Phase == scan.PhaseRead && e.Severity == scan.SeverityWarning {
			warnings++
		}
	}
	assert.Equal(t, 2, warnings)
}

func TestRunInvalidSignature(t *testing.T) {
	l := newLocator(&recorder{}, fakeFinder{}, fakeOpener{}, fakeModules{})

	target := testTarget()
	target.HexSignature = "4G"
	_, err := l.Run(testDump(), 0, target, Options{})
	assert.Error(t, err)
}
