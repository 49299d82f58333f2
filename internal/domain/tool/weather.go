package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"chat-server/internal/domain/llm"
)

// WeatherService fetches current conditions for a coordinate. The production
// implementation lives in internal/infrastructure/weather.
type WeatherService interface {
	CurrentWeather(ctx context.Context, latitude, longitude float64) (json.RawMessage, error)
}

// WeatherTool exposes live weather lookups to the model.
type WeatherTool struct {
	service WeatherService
}

// NewWeatherTool wires the weather backend.
func NewWeatherTool(service WeatherService) *WeatherTool {
	return &WeatherTool{service: service}
}

func (t *WeatherTool) Name() string { return "getWeather" }

func (t *WeatherTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Type: "function",
		Function: llm.ToolFunctionSchema{
			Name:        t.Name(),
			Description: "Get the current weather at a location",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"latitude":  map[string]interface{}{"type": "number"},
					"longitude": map[string]interface{}{"type": "number"},
				},
				"required": []string{"latitude", "longitude"},
			},
		},
	}
}

type weatherArgs struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (t *WeatherTool) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	var args weatherArgs
	if err := json.Unmarshal(inv.Arguments, &args); err != nil {
		return &Result{IsError: true, Error: fmt.Sprintf("invalid arguments: %v", err)}, nil
	}

	conditions, err := t.service.CurrentWeather(ctx, args.Latitude, args.Longitude)
	if err != nil {
		return &Result{IsError: true, Error: fmt.Sprintf("weather lookup failed: %v", err)}, nil
	}
	return &Result{Content: conditions}, nil
}

var _ Handler = (*WeatherTool)(nil)
