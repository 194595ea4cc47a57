package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCLIGraphSimilarityJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	seedSample(t, env)

	out, stderr, err := runCLI(t, []string{
		"graph", "--mode", "similarity", "--format", "json",
	}, env.configPath)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}

	var doc struct {
		Nodes []struct {
			ID   string `json:"id"`
			Kind string `json:"kind"`
		} `json:"nodes"`
		Edges []struct {
			Weight int `json:"weight"`
		} `json:"edges"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if len(doc.Nodes) != 2 {
		t.Errorf("expected 2 movie nodes, got %d", len(doc.Nodes))
	}
	// Both movies share Al Pacino and the Crime genre, but only actors
	// contribute by default.
	if len(doc.Edges) != 1 || doc.Edges[0].Weight != 1 {
		t.Errorf("expected one edge of weight 1, got %+v", doc.Edges)
	}
	requireContains(t, stderr, "2 movies")
}

func TestCLIGraphDOTToFile(t *testing.T) {
	env := setupCLITestEnv(t)
	seedSample(t, env)

	target := filepath.Join(env.baseDir, "graph.dot")
	_, _, err := runCLI(t, []string{
		"graph", "--mode", "bipartite", "--relationships", "2", "-o", target,
	}, env.configPath)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "graph movies {") {
		t.Errorf("missing DOT header:\n%s", content)
	}
	// Al Pacino is in both movies, De Niro only in one.
	if !strings.Contains(content, "Al Pacino") {
		t.Errorf("expected shared actor in graph:\n%s", content)
	}
	if strings.Contains(content, "Robert De Niro") {
		t.Errorf("single-movie actor should be filtered:\n%s", content)
	}
}

func TestCLIGraphEmptyCache(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"graph", "--format", "json"}, env.configPath)
	if err != nil {
		t.Fatalf("graph on empty cache: %v", err)
	}
	requireContains(t, out, `"nodes": []`)
	requireContains(t, out, `"edges": []`)
}

func TestCLIGraphRejectsUnknownFormat(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"graph", "--format", "gexf"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestCLIGraphUnknownFormatLeavesNoOutputFile(t *testing.T) {
	env := setupCLITestEnv(t)
	seedSample(t, env)

	target := filepath.Join(env.baseDir, "graph.gexf")
	_, _, err := runCLI(t, []string{"graph", "--format", "gexf", "-o", target}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Errorf("bad format should not create the output file, stat: %v", statErr)
	}
}

func TestCLIGraphAcceptsPluralAttr(t *testing.T) {
	env := setupCLITestEnv(t)
	seedSample(t, env)

	out, _, err := runCLI(t, []string{
		"graph", "--mode", "similarity", "--attr", "Actors", "--format", "json",
	}, env.configPath)
	if err != nil {
		t.Fatalf("graph --attr Actors: %v", err)
	}

	var doc struct {
		Edges []struct {
			Weight int `json:"weight"`
		} `json:"edges"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if len(doc.Edges) != 1 {
		t.Errorf("expected one edge through the shared actor, got %d", len(doc.Edges))
	}
}

func TestCLIGraphRejectsUnknownAttr(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"graph", "--attr", "studio"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown attribute")
	}
	if !strings.Contains(err.Error(), "studio") {
		t.Errorf("error should name the bad attribute, got %v", err)
	}
}
