package main

import (
	"memwalk/console"
	"memwalk/hexdump"
	"memwalk/locator"
	"memwalk/process"
)

// printContext dumps the bytes around every match of report
func printContext(out *console.Renderer, mem process.RemoteMemory, report locator.Report, radius int) {
	pat, err := report.Target.Pattern()
	if err != nil {
		return
	}

	options := hexdump.DefaultOptions()
	options.Color = out.Color()
	if mapper, ok := mem.(process.MemoryMapper); ok {
		if regions, err := mapper.GetMemoryMap(); err == nil {
			options.Regions = regions
		}
	}

	for _, addr := range report.Result.Addresses {
		data, start, err := hexdump.MatchContext(mem, addr, pat.Len(), radius)
		if err != nil {
			out.Println("context for", addr.ToString(), "unavailable:", err)
			continue
		}
		options.StartAddress = uint64(start)
		options.Match = &hexdump.Match{Offset: int(addr - start), Pattern: pat}
		out.Println(hexdump.Dump(data, options))
	}
}
