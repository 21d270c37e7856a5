package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run  RunMetadata `json:"run"`
	Rows []Row       `json:"rows"`
}

func ExportJSON(path string, meta RunMetadata, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, rows)
}

func WriteJSON(w io.Writer, meta RunMetadata, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: meta, Rows: rows})
}
