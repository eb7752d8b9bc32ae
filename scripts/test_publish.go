//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RawRouteGeometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

type RawRouteProperties struct {
	Name   *string `json:"name,omitempty"`
	Source string  `json:"source,omitempty"`
}

type RawRouteFeature struct {
	RouteVersion string             `json:"route_version"`
	Type         string             `json:"type"`
	Geometry     RawRouteGeometry   `json:"geometry"`
	Properties   RawRouteProperties `json:"properties"`
}

type RouteSubmitEvent struct {
	SubmissionID uuid.UUID       `json:"submission_id"`
	Raw          RawRouteFeature `json:"raw"`
	SpacingM     *float64        `json:"spacing_m,omitempty"`
}

func ptr[T any](v T) *T {
	return &v
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	stream := flag.String("stream", "stream:route:submit", "Stream to publish to")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Тестовый маршрут (Savannah riverfront)
	event := RouteSubmitEvent{
		SubmissionID: uuid.New(),
		Raw: RawRouteFeature{
			RouteVersion: "1.0",
			Type:         "Feature",
			Geometry: RawRouteGeometry{
				Type: "LineString",
				Coordinates: [][]float64{
					{-81.0942, 31.9871},
					{-81.0901, 31.9893},
					{-81.0837, 31.9929},
				},
			},
			Properties: RawRouteProperties{
				Name:   ptr("Savannah riverfront"),
				Source: "mobile",
			},
		},
		SpacingM: ptr(250.0),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	id, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: *stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Published submit event %s to %s (message %s)\n",
		event.SubmissionID, *stream, id)

	// Ждем результат из стрима нормализованных маршрутов
	fmt.Println("Waiting for normalized result (10s)...")
	deadline := time.Now().Add(10 * time.Second)
	lastID := "$"

	for time.Now().Before(deadline) {
		res, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{"stream:route:normalized", lastID},
			Count:   1,
			Block:   time.Second,
		}).Result()
		if err != nil {
			continue
		}
		for _, s := range res {
			for _, msg := range s.Messages {
				fmt.Printf("Result %s: %v\n", msg.ID, msg.Values["data"])
				return
			}
		}
	}
	fmt.Println("No result received, check the worker logs")
}
