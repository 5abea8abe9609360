// Package main records real task service responses for the replay contract tests.
// Usage:
//
//	go run ./cmd/recordapi -base-url=https://todo.pixegami.io -output-dir=tests/contract/testdata
//
// One task is created, read, updated, listed and deleted; each response body is written to
// <output-dir>/<endpoint>.json.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"todocontract/config"
	"todocontract/internal/payload"
	"todocontract/internal/todoclient"
)

// recordOrder lists the endpoints in the order they are recorded
var recordOrder = []string{
	"root",
	"create_task",
	"get_task",
	"update_task",
	"get_task_updated",
	"list_tasks",
	"delete_task",
	"get_task_missing",
}

func main() {
	baseURL := flag.String("base-url", "", "Task service base URL (default: TODO_API_BASE_URL or "+config.DefaultBaseURL+")")
	outputDir := flag.String("output-dir", "tests/contract/testdata", "Directory the fixtures are written to")
	only := flag.String("endpoint", "", "Record only this endpoint (root, create_task, get_task, update_task, get_task_updated, list_tasks, delete_task, get_task_missing)")
	flag.Parse()

	if *baseURL == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		*baseURL = cfg.API.BaseURL
	}

	if *only != "" && !knownEndpoint(*only) {
		fmt.Fprintf(os.Stderr, "Error: unknown endpoint %q\n", *only)
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := todoclient.New(*baseURL, todoclient.Hooks{})
	fmt.Printf("Recording against %s...\n", client.BaseURL())

	responses, err := record(ctx, client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, name := range recordOrder {
		if *only != "" && name != *only {
			continue
		}
		resp := responses[name]
		path := filepath.Join(*outputDir, name+".json")
		if err := writeOutput(path, prettyJSON(resp.Body)); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%-18s %d -> %s\n", name, resp.StatusCode, path)
	}
}

// record walks one task through its lifecycle and returns every response by endpoint name
func record(ctx context.Context, client *todoclient.Client) (map[string]*todoclient.Response, error) {
	out := make(map[string]*todoclient.Response, len(recordOrder))

	resp, err := client.Root(ctx)
	if err != nil {
		return nil, err
	}
	out["root"] = resp

	p := payload.NewTaskPayload()
	resp, err = client.CreateTask(ctx, p)
	if err != nil {
		return nil, err
	}
	out["create_task"] = resp

	taskID := resp.Field("task.task_id").String()
	if taskID == "" {
		return nil, fmt.Errorf("create response has no task.task_id: %s", resp)
	}

	steps := []struct {
		name string
		call func() (*todoclient.Response, error)
	}{
		{"get_task", func() (*todoclient.Response, error) { return client.GetTask(ctx, taskID) }},
		{"update_task", func() (*todoclient.Response, error) {
			return client.UpdateTask(ctx, payload.NewUpdatePayload(p.UserID, taskID))
		}},
		{"get_task_updated", func() (*todoclient.Response, error) { return client.GetTask(ctx, taskID) }},
		{"list_tasks", func() (*todoclient.Response, error) { return client.ListTasks(ctx, p.UserID) }},
		{"delete_task", func() (*todoclient.Response, error) { return client.DeleteTask(ctx, taskID) }},
		{"get_task_missing", func() (*todoclient.Response, error) { return client.GetTask(ctx, taskID) }},
	}
	for _, step := range steps {
		resp, err := step.call()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.name, err)
		}
		out[step.name] = resp
	}
	return out, nil
}

func knownEndpoint(name string) bool {
	for _, n := range recordOrder {
		if n == name {
			return true
		}
	}
	return false
}

// prettyJSON indents body, or returns it unchanged when it is not JSON
func prettyJSON(body []byte) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return body
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

// writeOutput writes data to the output file, creating directories as needed.
func writeOutput(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
