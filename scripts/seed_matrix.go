// seed_matrix.go parses a markdown decision table and seeds it as a session via the Verdict API.
//
// The first column holds choices; every other header is a criterion with an
// optional weight in parentheses. Empty cells stay unrated.
//
//	| Choice | taste (4) | color (7) |
//	|--------|-----------|-----------|
//	| apple  | 6         | 5         |
//	| orange | 9         | 3         |
//
// Usage:
//
//	go run scripts/seed_matrix.go -table fruit.md -api http://localhost:8700 -name fruit
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
)

type snapshot struct {
	Choices  []string                      `json:"choices"`
	Criteria []string                      `json:"criteria"`
	Weights  map[string]float64            `json:"weights,omitempty"`
	Ratings  map[string]map[string]float64 `json:"ratings,omitempty"`
}

type createRequest struct {
	Name     string    `json:"name,omitempty"`
	Snapshot *snapshot `json:"snapshot"`
}

type createResponse struct {
	SessionID string `json:"session_id"`
	Results   struct {
		Percentages map[string]float64 `json:"percentages"`
	} `json:"results"`
}

func main() {
	tablePath := flag.String("table", "matrix.md", "path to a markdown decision table")
	apiURL := flag.String("api", "http://localhost:8700", "Verdict API base URL")
	name := flag.String("name", "", "session name")
	clientID := flag.String("client", "seed", "X-Client-ID header value")
	dryRun := flag.Bool("dry-run", false, "print the parsed matrix without posting")
	flag.Parse()

	f, err := os.Open(*tablePath)
	if err != nil {
		log.Fatalf("open table: %v", err)
	}
	defer f.Close()

	snap := &snapshot{
		Weights: make(map[string]float64),
		Ratings: make(map[string]map[string]float64),
	}
	var header []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		cells := splitRow(scanner.Text())
		if cells == nil || isDivider(cells) {
			continue
		}
		if header == nil {
			header = cells
			for _, h := range header[1:] {
				criterion, weight, ok := parseHeader(h)
				snap.Criteria = append(snap.Criteria, criterion)
				if ok {
					snap.Weights[criterion] = weight
				}
			}
			continue
		}

		choice := cells[0]
		snap.Choices = append(snap.Choices, choice)
		for i, cell := range cells[1:] {
			if i >= len(snap.Criteria) || cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				log.Fatalf("rating %s/%s: %v", choice, snap.Criteria[i], err)
			}
			if snap.Ratings[choice] == nil {
				snap.Ratings[choice] = make(map[string]float64)
			}
			snap.Ratings[choice][snap.Criteria[i]] = v
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("scan table: %v", err)
	}

	log.Printf("parsed %d choices and %d criteria from %s", len(snap.Choices), len(snap.Criteria), *tablePath)

	if *dryRun {
		for _, c := range snap.Criteria {
			weight := "unset"
			if w, ok := snap.Weights[c]; ok {
				weight = fmt.Sprintf("%.2f", w)
			}
			fmt.Printf("criterion %s (weight=%s)\n", c, weight)
		}
		for _, choice := range snap.Choices {
			fmt.Printf("choice %s %v\n", choice, snap.Ratings[choice])
		}
		return
	}

	body, _ := json.Marshal(createRequest{Name: *name, Snapshot: snap})
	req, err := http.NewRequest("POST", *apiURL+"/api/v1/sessions", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", *clientID)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("create session: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var e map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&e)
		log.Fatalf("create session: status %d: %s", resp.StatusCode, e["error"])
	}
	var created createResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		log.Fatalf("decode response: %v", err)
	}

	log.Printf("created session %s", created.SessionID)
	for _, choice := range snap.Choices {
		fmt.Printf("%s\t%.2f%%\n", choice, created.Results.Percentages[choice])
	}
}

// splitRow returns the trimmed cells of a markdown table row, or nil for
// any other line.
func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "|") {
		return nil
	}
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func isDivider(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}

// parseHeader splits "taste (4)" into its criterion and weight.
func parseHeader(h string) (string, float64, bool) {
	open := strings.LastIndex(h, "(")
	if open < 0 || !strings.HasSuffix(h, ")") {
		return h, 0, false
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(h[open+1:len(h)-1]), 64)
	if err != nil {
		return h, 0, false
	}
	return strings.TrimSpace(h[:open]), w, true
}
