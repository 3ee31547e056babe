package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/arbor/internal/attr"
	"github.com/san-kum/arbor/internal/fragment"
)

type ExportGeneration struct {
	Generation int                  `json:"generation"`
	Cause      string               `json:"cause"`
	Root       int                  `json:"root"`
	State      string               `json:"state"`
	Trees      []map[string]float64 `json:"trees"`
}

type ExportData struct {
	Run         RunMetadata        `json:"run"`
	Generations []ExportGeneration `json:"generations"`
}

// ExportJSON writes a run's metadata and every generation as indented JSON.
func ExportJSON(w io.Writer, meta RunMetadata, records []Record) error {
	data := ExportData{Run: meta, Generations: make([]ExportGeneration, len(records))}
	for i, rec := range records {
		g := ExportGeneration{
			Generation: rec.Generation,
			Cause:      rec.Cause,
			Root:       rec.Root,
			State:      fragment.Encode(rec.Trees),
			Trees:      make([]map[string]float64, len(rec.Trees)),
		}
		for j, v := range rec.Trees {
			g.Trees[j] = v.Map()
		}
		data.Generations[i] = g
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV writes the root tree of every generation, one row each.
func ExportCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	header := []string{"generation", "cause", "root"}
	for _, n := range attr.Names() {
		header = append(header, n.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		if rec.Root < 0 || rec.Root >= len(rec.Trees) {
			continue
		}
		row := []string{strconv.Itoa(rec.Generation), rec.Cause, strconv.Itoa(rec.Root)}
		for _, x := range rec.Trees[rec.Root] {
			row = append(row, fragment.FormatValue(x))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
