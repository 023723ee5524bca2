package tools

import (
	"context"
	"time"

	"github.com/taskpilot/taskpilot/tool"
)

// NewDateTime builds the current time/date capability.
func NewDateTime() tool.Tool {
	return tool.NewFunctionTool("datetime", "Report the current time and date").
		WithAction("current_time", nil, currentTime).
		WithAction("current_date", nil, currentDate)
}

func currentTime(_ context.Context, _ map[string]any) (map[string]any, error) {
	now := time.Now()
	return map[string]any{
		"time":     now.Format("15:04:05"),
		"timezone": now.Format("MST"),
		"unix":     now.Unix(),
	}, nil
}

func currentDate(_ context.Context, _ map[string]any) (map[string]any, error) {
	now := time.Now()
	return map[string]any{
		"date":    now.Format("2006-01-02"),
		"weekday": now.Weekday().String(),
	}, nil
}
