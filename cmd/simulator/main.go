// Command simulator drives the locator API with a pool of wandering clients,
// each posting nearest-school queries from its current position.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/umahmood/haversine"
	"github.com/ukydev/school-locator/internal/models"
)

// Query is the request body posted to the nearest-schools endpoint.
type Query struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Length    int     `json:"length"`
}

// Cities clients start from
var cities = []models.Location{
	{Lat: 37.7749, Lon: -122.4194}, // San Francisco
	{Lat: 37.8044, Lon: -122.2712}, // Oakland
	{Lat: 37.4419, Lon: -122.1430}, // Palo Alto
	{Lat: 40.7128, Lon: -74.0060},  // New York
	{Lat: 38.9072, Lon: -77.0369},  // Washington
}

// maxWanderKm bounds how far a client drifts from its home city.
const maxWanderKm = 15.0

func jitterLocation(base models.Location, meters float64) models.Location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rand.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return models.Location{Lat: base.Lat + dLat, Lon: base.Lon + dLon}
}

func randomLocation() models.Location {
	return jitterLocation(cities[rand.Intn(len(cities))], 500)
}

func distanceKm(a, b models.Location) float64 {
	_, km := haversine.Distance(haversine.Coord{Lat: a.Lat, Lon: a.Lon}, haversine.Coord{Lat: b.Lat, Lon: b.Lon})
	return km
}

// ClientState is one simulated API consumer.
type ClientState struct {
	ID       string
	Home     models.Location
	Position models.Location
}

// step moves the client up to stepMeters, pulling it back home once it
// strays past maxWanderKm.
func (s *ClientState) step(stepMeters float64) {
	next := jitterLocation(s.Position, stepMeters)
	if distanceKm(s.Home, next) > maxWanderKm {
		next = jitterLocation(s.Home, stepMeters)
	}
	s.Position = next
}

func (s *ClientState) query() Query {
	return Query{
		Latitude:  s.Position.Lat,
		Longitude: s.Position.Lon,
		Length:    1 + rand.Intn(10),
	}
}

var authToken string

func authorizedPost(url string, body *bytes.Buffer) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

// sendQuery posts q and returns the number of schools in the response.
func sendQuery(apiURL string, q Query) (int, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal query: %w", err)
	}
	resp, err := authorizedPost(apiURL+"/schools/nearest", bytes.NewBuffer(data))
	if err != nil {
		return 0, fmt.Errorf("failed to send query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("query failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Schools []json.RawMessage `json:"schools"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return len(result.Schools), nil
}

func simulateClient(ctx context.Context, apiURL string, s *ClientState, interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}

		s.step(250)
		q := s.query()
		n, err := sendQuery(apiURL, q)
		if err != nil {
			log.WithError(err).WithField("client_id", s.ID).Error("Query failed")
			continue
		}
		log.WithFields(log.Fields{
			"client_id": s.ID,
			"lat":       q.Latitude,
			"lon":       q.Longitude,
			"requested": q.Length,
			"returned":  n,
		}).Info("Received nearest schools")
	}
}

func envInt(key string, def, min int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= min {
			return n
		}
	}
	return def
}

func main() {
	authToken = os.Getenv("SIM_AUTH_TOKEN")

	clients := envInt("SIM_CLIENTS", 5, 1)
	interval := time.Duration(envInt("SIM_TICK_SECONDS", 2, 1)) * time.Second

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	log.WithFields(log.Fields{
		"clients":  clients,
		"api_url":  apiURL,
		"interval": interval,
	}).Info("Starting query simulation")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		home := randomLocation()
		s := &ClientState{ID: fmt.Sprintf("client-%d", i+1), Home: home, Position: home}
		wg.Add(1)
		go func() {
			defer wg.Done()
			simulateClient(ctx, apiURL, s, interval)
		}()
	}
	wg.Wait()
}
