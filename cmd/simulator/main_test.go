package main

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/school-locator/internal/models"
)

func TestRandomLocation(t *testing.T) {
	for i := 0; i < 50; i++ {
		loc := randomLocation()
		nearest := math.MaxFloat64
		for _, c := range cities {
			if d := distanceKm(c, loc); d < nearest {
				nearest = d
			}
		}
		assert.Less(t, nearest, 1.0)
	}
}

func TestClientState_StepStaysNearHome(t *testing.T) {
	home := models.Location{Lat: 37.7749, Lon: -122.4194}
	s := &ClientState{ID: "c", Home: home, Position: home}
	for i := 0; i < 500; i++ {
		s.step(2000)
		assert.LessOrEqual(t, distanceKm(home, s.Position), maxWanderKm+2.0)
	}
}

func TestClientState_Query(t *testing.T) {
	s := &ClientState{Position: models.Location{Lat: 1, Lon: 2}}
	for i := 0; i < 20; i++ {
		q := s.query()
		assert.Equal(t, 1.0, q.Latitude)
		assert.Equal(t, 2.0, q.Longitude)
		assert.GreaterOrEqual(t, q.Length, 1)
		assert.LessOrEqual(t, q.Length, 10)
	}
}

func TestSendQuery_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/schools/nearest", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var q Query
		require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		assert.Equal(t, 3, q.Length)
		w.Write([]byte(`{"schools":[{"name":"a"},{"name":"b"}]}`))
	}))
	defer server.Close()

	n, err := sendQuery(server.URL+"/api", Query{Latitude: 1, Longitude: 2, Length: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSendQuery_AuthHeader(t *testing.T) {
	authToken = "tok"
	defer func() { authToken = "" }()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"schools":[]}`))
	}))
	defer server.Close()

	_, err := sendQuery(server.URL+"/api", Query{Latitude: 1, Longitude: 2, Length: 1})
	assert.NoError(t, err)
}

func TestSendQuery_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Please provide latitude and longitude", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := sendQuery(server.URL+"/api", Query{})
	assert.ErrorContains(t, err, "status: 400")
}

func TestSendQuery_NetworkError(t *testing.T) {
	_, err := sendQuery("http://127.0.0.1:1/api", Query{Latitude: 1, Longitude: 1})
	assert.Error(t, err)
}

func TestSimulateClient_StopsOnCancel(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"schools":[]}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	home := models.Location{Lat: 40.7128, Lon: -74.0060}
	done := make(chan struct{})
	go func() {
		simulateClient(ctx, server.URL+"/api", &ClientState{ID: "c", Home: home, Position: home}, 20*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("simulateClient did not stop")
	}
	assert.Greater(t, atomic.LoadInt32(&hits), int32(0))
}

func TestEnvInt(t *testing.T) {
	t.Setenv("SIM_CLIENTS", "7")
	assert.Equal(t, 7, envInt("SIM_CLIENTS", 5, 1))
	t.Setenv("SIM_CLIENTS", "0")
	assert.Equal(t, 5, envInt("SIM_CLIENTS", 5, 1))
	t.Setenv("SIM_CLIENTS", "many")
	assert.Equal(t, 5, envInt("SIM_CLIENTS", 5, 1))
}
