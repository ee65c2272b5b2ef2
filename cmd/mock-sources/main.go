package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"
)

// Serves both upstream wire formats from a local JSON file so the
// ingestion pipeline can be exercised without network access or an auth
// key. The file holds a flat array of entries:
//
//	[{"code": "111001", "name": "...", "address": "...", "tel": "...",
//	  "homepage": "...", "lat": 37.56, "lon": 126.97}, ...]
func main() {
	var (
		addr     = flag.String("addr", ":9000", "listen address")
		dataPath = flag.String("data", "data/libraries.json", "JSON file with library entries")
	)
	flag.Parse()

	entries, err := loadEntries(*dataPath)
	if err != nil {
		log.Fatalf("load %s: %v", *dataPath, err)
	}
	log.Printf("serving %d entries from %s", len(entries), *dataPath)

	http.HandleFunc("/libinfo", func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "page", 1)
		size := queryInt(r, "size", 100)

		list := make([]map[string]any, 0, size)
		for _, e := range pageOf(entries, page, size) {
			code, _ := strconv.Atoi(e.Code)
			list = append(list, map[string]any{
				"libCode": code,
				"libName": e.Name,
				"addr":    e.Address,
				"phone":   e.Tel,
				"libUrl":  e.Homepage,
				"geoX":    e.Lon,
				"geoY":    e.Lat,
			})
		}
		writeJSON(w, map[string]any{"result": map[string]any{"list": list}})
	})

	http.HandleFunc("/libSrch", func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "pageNo", 1)
		size := queryInt(r, "pageSize", 100)

		libs := make([]map[string]any, 0, size)
		for _, e := range pageOf(entries, page, size) {
			code, _ := strconv.Atoi(e.Code)
			libs = append(libs, map[string]any{
				"lib": map[string]any{
					"libCode":   code,
					"libName":   e.Name,
					"address":   e.Address,
					"tel":       e.Tel,
					"homepage":  e.Homepage,
					"latitude":  strconv.FormatFloat(e.Lat, 'f', -1, 64),
					"longitude": strconv.FormatFloat(e.Lon, 'f', -1, 64),
				},
			})
		}
		writeJSON(w, map[string]any{"response": map[string]any{"libs": libs}})
	})

	http.HandleFunc("/bookExist", func(w http.ResponseWriter, r *http.Request) {
		// every library "has" every book; good enough for local testing
		writeJSON(w, map[string]any{
			"response": map[string]any{
				"result": map[string]any{"hasBook": "Y", "loanAvailable": "Y"},
			},
		})
	})

	log.Printf("mock sources listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}

type entry struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Tel      string  `json:"tel"`
	Homepage string  `json:"homepage"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

func loadEntries(path string) ([]entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func pageOf(entries []entry, page, size int) []entry {
	if page < 1 || size < 1 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(entries) {
		return nil
	}
	end := start + size
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end]
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
