// Package main provides a CI-friendly HTTP smoke test for the fooddecider API.
//
// It validates:
//   - health check
//   - register + login with a fresh account
//   - profile behind the bearer gate
//   - preference create and merge
//   - authenticated suggestion generation
//   - meal history save + list
//   - JSON 404 for unknown routes
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

type smoke struct {
	base    string
	client  *http.Client
	timeout time.Duration
	verbose bool
}

func main() {
	var (
		baseURL = flag.String("url", "http://127.0.0.1:3000", "Server base URL")
		prefix  = flag.String("prefix", "/api", "API route prefix")
		timeout = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
		verbose = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	s := &smoke{
		base:    strings.TrimRight(*baseURL, "/"),
		client:  &http.Client{},
		timeout: *timeout,
		verbose: *verbose,
	}
	api := strings.TrimRight(*prefix, "/")

	s.mustStatus("GET", "/health", "", nil, http.StatusOK)

	email := "smoke-" + uuid.NewString()[:8] + "@example.com"
	s.mustStatus("POST", api+"/auth/register", "", map[string]any{
		"email": email, "password": "smoke-pass-1", "name": "Smoke",
	}, http.StatusCreated)

	env := s.mustStatus("POST", api+"/auth/login", "", map[string]any{
		"email": email, "password": "smoke-pass-1",
	}, http.StatusOK)
	var session struct {
		User  struct{ ID string } `json:"user"`
		Token string              `json:"token"`
	}
	mustDecode(env.Data, &session)
	if session.Token == "" {
		fail("login returned no token")
	}
	tok := session.Token

	s.mustStatus("GET", api+"/auth/profile", "", nil, http.StatusUnauthorized)
	s.mustStatus("GET", api+"/auth/profile", tok, nil, http.StatusOK)

	s.mustStatus("PUT", api+"/preferences", tok, map[string]any{
		"dietaryRestrictions": []string{"vegetarian"}, "spiceLevel": 3,
	}, http.StatusOK)
	env = s.mustStatus("PUT", api+"/preferences", tok, map[string]any{
		"allergies": []string{"nuts"},
	}, http.StatusOK)
	var pref struct {
		DietaryRestrictions []string `json:"dietaryRestrictions"`
		SpiceLevel          int      `json:"spiceLevel"`
	}
	mustDecode(env.Data, &pref)
	if len(pref.DietaryRestrictions) != 1 || pref.SpiceLevel != 3 {
		fail("preference merge lost fields: %+v", pref)
	}

	env = s.mustStatus("POST", api+"/suggestions/generate", tok, map[string]any{
		"wantToCook": true, "timeAvailable": 45, "budget": "low", "mealTime": "dinner",
	}, http.StatusOK)
	var result struct {
		Suggestions []json.RawMessage `json:"suggestions"`
	}
	mustDecode(env.Data, &result)

	s.mustStatus("POST", api+"/suggestions/history", tok, map[string]any{
		"mealType": "cook", "mealId": "2", "mealName": "Caesar Salad", "budget": "low",
	}, http.StatusCreated)
	env = s.mustStatus("GET", api+"/suggestions/history", tok, nil, http.StatusOK)
	var history []json.RawMessage
	mustDecode(env.Data, &history)
	if len(history) != 1 {
		fail("history: want 1 entry, got %d", len(history))
	}

	s.mustStatus("GET", api+"/definitely-not-a-route", "", nil, http.StatusNotFound)

	fmt.Printf("OK: account=%s suggestions=%d history=%d\n", session.User.ID, len(result.Suggestions), len(history))
}

func (s *smoke) mustStatus(method, path, bearer string, body any, want int) envelope {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			fail("%s %s: encode: %v", method, path, err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.base+path, rdr)
	if err != nil {
		fail("%s %s: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		fail("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		fail("%s %s: read body: %v", method, path, err)
	}
	if s.verbose {
		fmt.Printf("%s %s -> %d %s\n", method, path, resp.StatusCode, raw)
	}
	if resp.StatusCode != want {
		fail("%s %s: status %d, want %d: %s", method, path, resp.StatusCode, want, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		fail("%s %s: decode envelope: %v", method, path, err)
	}
	return env
}

func mustDecode(raw json.RawMessage, dst any) {
	if err := json.Unmarshal(raw, dst); err != nil {
		fail("decode data: %v", err)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
