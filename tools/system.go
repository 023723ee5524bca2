package tools

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/taskpilot/taskpilot/tool"
)

// NewSystemInfo builds the system resource query capability backed by
// gopsutil. Results are plain maps so callers can render them directly.
func NewSystemInfo() tool.Tool {
	return tool.NewFunctionTool("system_info", "Query host, CPU, memory and uptime information").
		WithAction("overview", nil, overview).
		WithAction("cpu", nil, cpuInfo).
		WithAction("memory", nil, memoryInfo).
		WithAction("uptime", nil, uptimeInfo)
}

func overview(ctx context.Context, _ map[string]any) (map[string]any, error) {
	out := map[string]any{}
	if info, err := host.InfoWithContext(ctx); err == nil {
		out["hostname"] = info.Hostname
		out["os"] = info.OS
		out["platform"] = info.Platform
		out["uptime_seconds"] = info.Uptime
	}
	if counts, err := cpu.CountsWithContext(ctx, true); err == nil {
		out["cpu_count"] = counts
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		out["memory_total"] = vm.Total
		out["memory_used_percent"] = vm.UsedPercent
	}
	return out, nil
}

func cpuInfo(ctx context.Context, _ map[string]any) (map[string]any, error) {
	counts, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return nil, err
	}
	// A zero interval reports utilization since the previous call; good
	// enough for an advisory answer without blocking the pipeline.
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return nil, err
	}
	out := map[string]any{"logical_cores": counts}
	if len(percents) > 0 {
		out["used_percent"] = percents[0]
	}
	return out, nil
}

func memoryInfo(ctx context.Context, _ map[string]any) (map[string]any, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"total":        vm.Total,
		"available":    vm.Available,
		"used":         vm.Used,
		"used_percent": vm.UsedPercent,
	}, nil
}

func uptimeInfo(ctx context.Context, _ map[string]any) (map[string]any, error) {
	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"uptime_seconds": uptime,
		"uptime":         (time.Duration(uptime) * time.Second).String(),
	}, nil
}
